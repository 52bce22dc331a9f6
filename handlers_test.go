package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"stagewise/pkg/blob"
	"stagewise/pkg/feedback"
	"stagewise/pkg/uploader"
)

// newTestApp wires an app with no database. The paths under test here are
// exactly the ones that must not reach the backend (validation, gate denial,
// uploads, feedback); touching the nil DB would panic and fail the test.
func newTestApp() *app {
	return &app{
		store:    newTransformationStore(nil),
		uploads:  uploader.New(blob.NewMemory()),
		feedback: feedback.NewCenter(),
	}
}

func perform(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateWithMissingTitleNeverReachesBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp()
	r := gin.New()
	r.POST("/transformations", a.createTransformationHandler)

	body, _ := json.Marshal(map[string]any{
		"title":            "",
		"room_type":        "Kitchen",
		"before_image_url": "https://img/before.jpg",
		"after_image_url":  "https://img/after.jpg",
	})
	resp := perform(r, http.MethodPost, "/transformations", bytes.NewReader(body), "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body=%s", resp.Code, resp.Body.String())
	}

	toasts := a.feedback.Toasts()
	if len(toasts) != 1 {
		t.Fatalf("expected exactly one toast, got %d", len(toasts))
	}
	if toasts[0].Kind != feedback.Warning {
		t.Fatalf("toast kind = %q, want warning", toasts[0].Kind)
	}
}

func TestCreateValidatesEveryRequiredField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp()
	r := gin.New()
	r.POST("/transformations", a.createTransformationHandler)

	missing := []map[string]any{
		{"room_type": "Kitchen", "before_image_url": "u", "after_image_url": "u"},
		{"title": "T", "before_image_url": "u", "after_image_url": "u"},
		{"title": "T", "room_type": "Kitchen", "after_image_url": "u"},
		{"title": "T", "room_type": "Kitchen", "before_image_url": "u"},
	}
	for i, m := range missing {
		body, _ := json.Marshal(m)
		resp := perform(r, http.MethodPost, "/transformations", bytes.NewReader(body), "application/json")
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("case %d: status = %d, want 400", i, resp.Code)
		}
	}
	if got := len(a.feedback.Toasts()); got != len(missing) {
		t.Fatalf("expected one warning toast per rejection, got %d", got)
	}
}

func TestCancelledDeleteLeavesStoreUntouched(t *testing.T) {
	a := newTestApp()
	before := a.store.Snapshot()

	// Stage the destructive action the way stageDeleteHandler does; the
	// closure would panic on the nil DB if it ever ran.
	a.feedback.Request("Delete Transformation", "Are you sure?", func() {
		_ = a.store.Delete(1)
	})
	if !a.feedback.Cancel() {
		t.Fatal("cancel should clear the staged request")
	}
	after := a.store.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("store changed across a cancelled delete: %+v vs %+v", before, after)
	}
	if a.feedback.Confirm() {
		t.Fatal("nothing should remain to confirm after cancel")
	}
}

func TestOperatorGateDeniesWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	a := newTestApp()
	r := gin.New()
	admin := r.Group("/api/admin")
	admin.Use(a.operatorGate())
	admin.GET("/session", a.sessionHandler)

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req, _ := http.NewRequest(http.MethodGet, "/api/admin/session", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["state"] != "denied" {
			t.Fatalf("header %q: state = %v, want denied", header, body["state"])
		}
	}
}

func TestLogoutAlwaysDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp()
	r := gin.New()
	r.POST("/logout", a.logoutHandler)

	resp := perform(r, http.MethodPost, "/logout", bytes.NewReader([]byte(`{}`)), "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["state"] != "denied" {
		t.Fatalf("state = %v, want denied", body["state"])
	}
}

func multipartUpload(t *testing.T, slot, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	_ = mw.WriteField("slot", slot)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	w, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write(data)
	_ = mw.Close()
	return buf, mw.FormDataContentType()
}

func TestUploadHandlerStoresImageAndReturnsURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp()
	r := gin.New()
	r.POST("/uploads", a.uploadHandler)

	buf, ct := multipartUpload(t, "before", "before.jpg", "image/jpeg", []byte("jpegbytes"))
	resp := perform(r, http.MethodPost, "/uploads", buf, ct)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", resp.Code, resp.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["url"] == "" || body["slot"] != "before" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUploadHandlerRejectsNonImages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp()
	r := gin.New()
	r.POST("/uploads", a.uploadHandler)

	buf, ct := multipartUpload(t, "before", "report.pdf", "application/pdf", []byte("%PDF"))
	resp := perform(r, http.MethodPost, "/uploads", buf, ct)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}

	buf, ct = multipartUpload(t, "sideways", "x.jpg", "image/jpeg", []byte("x"))
	resp = perform(r, http.MethodPost, "/uploads", buf, ct)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad slot: status = %d, want 400", resp.Code)
	}
}

func TestUploadFailureSurfacesErrorToast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp()
	store := blob.NewMemory()
	store.PutErr = errTest
	a.uploads = uploader.New(store)
	r := gin.New()
	r.POST("/uploads", a.uploadHandler)

	buf, ct := multipartUpload(t, "after", "after.jpg", "image/jpeg", []byte("x"))
	resp := perform(r, http.MethodPost, "/uploads", buf, ct)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.Code)
	}
	toasts := a.feedback.Toasts()
	if len(toasts) != 1 || toasts[0].Kind != feedback.Error {
		t.Fatalf("expected one error toast, got %+v", toasts)
	}
}

var errTest = io.ErrUnexpectedEOF
