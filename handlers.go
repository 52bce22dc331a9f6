package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stagewise/models"
	"stagewise/pkg/feedback"
	"stagewise/pkg/gate"
	"stagewise/pkg/triage"
	"stagewise/pkg/uploader"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const maxUploadBytes = 5 * 1024 * 1024

// app bundles the dashboard's collaborators for the handlers.
type app struct {
	cfg       Config
	store     *TransformationStore
	uploads   *uploader.Uploader
	feedback  *feedback.Center
	leadGuard triage.Guard
}

func setupRoutes(r *gin.Engine, a *app) {
	r.POST("/login", a.loginHandler)
	r.POST("/refresh", a.refreshHandler)
	// Logout sits outside the gate: it must deny the session even when the
	// token or the revoke call has already gone bad.
	r.POST("/logout", a.logoutHandler)

	api := r.Group("/api")
	api.GET("/transformations", a.publicTransformationsHandler)
	api.POST("/leads", a.createLeadHandler)

	admin := api.Group("/admin")
	admin.Use(a.operatorGate())
	admin.GET("/session", a.sessionHandler)
	admin.GET("/transformations", a.adminTransformationsHandler)
	admin.POST("/transformations", a.createTransformationHandler)
	admin.PUT("/transformations/:id", a.updateTransformationHandler)
	admin.POST("/transformations/:id/toggle", a.toggleTransformationHandler)
	admin.POST("/transformations/:id/delete", a.stageDeleteHandler)
	admin.POST("/confirm", a.confirmHandler)
	admin.POST("/confirm/cancel", a.cancelConfirmHandler)
	admin.GET("/leads", a.adminLeadsHandler)
	admin.POST("/leads/:id/toggle", a.toggleLeadHandler)
	admin.POST("/uploads", a.uploadHandler)
	admin.GET("/toasts", a.toastsHandler)
	admin.DELETE("/toasts/:id", a.dismissToastHandler)
}

// operatorGate re-derives the access state on every request: a valid token
// alone is a session, not privilege. The operator registry is consulted
// fresh each time so a revoked row takes effect immediately, and lookup
// errors fail closed.
func (a *app) operatorGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, email, hasSession := parseBearerToken(c.GetHeader("Authorization"))
		var listed bool
		var lookupErr error
		if hasSession {
			listed, lookupErr = isOperator(userID)
		}
		state := gate.Resolve(hasSession, listed, lookupErr)
		if lookupErr != nil {
			log.Printf("operator lookup failed for user %d: %v", userID, lookupErr)
		}
		if state != gate.Granted {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "operator access required", "state": state.String()})
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Set("email", email)
		c.Next()
	}
}

// parseBearerToken validates the access token; a valid token is "a session
// exists". It never implies privilege.
func parseBearerToken(authHeader string) (uint, string, bool) {
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return 0, "", false
	}
	tokenString := authHeader[7:]
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	email, _ := claims["email"].(string)
	return uint(id), email, true
}

func (a *app) sessionHandler(c *gin.Context) {
	email, _ := c.Get("email")
	c.JSON(http.StatusOK, gin.H{"state": gate.Granted.String(), "email": email})
}

func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	// Credentials alone are not enough; the principal must be a listed
	// operator. A valid login without the registry row gets no token at all.
	listed, lookupErr := isOperator(user.ID)
	if state := gate.Resolve(true, listed, lookupErr); state != gate.Granted {
		if lookupErr != nil {
			log.Printf("operator lookup failed during login for user %d: %v", user.ID, lookupErr)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Not an admin user", "state": state.String()})
		return
	}
	tokenString, err := issueAccessToken(user, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "login successful",
		"token":         tokenString,
		"refresh_token": refreshToken,
		"state":         gate.Granted.String(),
	})
}

// refreshHandler exchanges a refresh token for a new access token and
// rotates the refresh token. Operator status is rechecked so revoked
// privilege cannot ride an old refresh token back in.
func (a *app) refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	listed, lookupErr := isOperator(user.ID)
	if state := gate.Resolve(true, listed, lookupErr); state != gate.Granted {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator access required", "state": state.String()})
		return
	}
	tokenString, err := issueAccessToken(user, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke the old token, hand out a new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// logoutHandler revokes the refresh token when one is supplied. The response
// is Denied no matter what: a failed revoke call never keeps a session alive
// on the client.
func (a *app) logoutHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)
	var revokeErr error
	if req.RefreshToken != "" {
		revokeErr = revokeRefreshToken(req.RefreshToken)
		if revokeErr != nil {
			log.Printf("refresh token revoke failed during logout: %v", revokeErr)
		}
	}
	c.JSON(http.StatusOK, gin.H{"state": gate.AfterLogout(revokeErr).String()})
}

func (a *app) publicTransformationsHandler(c *gin.Context) {
	items, err := a.store.List(false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *app) adminTransformationsHandler(c *gin.Context) {
	items, err := a.store.List(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *app) createTransformationHandler(c *gin.Context) {
	var f TransformationFields
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.store.Create(f); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			a.feedback.Push(feedback.Warning, ve.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return
		}
		log.Printf("create transformation failed: %v", err)
		a.feedback.Push(feedback.Error, "Failed to add transformation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	a.feedback.Push(feedback.Success, "Transformation added")
	c.JSON(http.StatusOK, gin.H{"message": "transformation added"})
}

func (a *app) updateTransformationHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var f TransformationFields
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.store.Update(id, f); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			a.feedback.Push(feedback.Warning, ve.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return
		}
		log.Printf("update transformation %d failed: %v", id, err)
		a.feedback.Push(feedback.Error, "Failed to update transformation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	a.feedback.Push(feedback.Success, "Transformation updated")
	c.JSON(http.StatusOK, gin.H{"message": "transformation updated"})
}

func (a *app) toggleTransformationHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	active, err := a.store.ToggleActive(id)
	if err != nil {
		log.Printf("toggle transformation %d failed: %v", id, err)
		a.feedback.Push(feedback.Error, "Failed to update status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle failed"})
		return
	}
	msg := "Transformation is now hidden from the gallery"
	if active {
		msg = "Transformation is now shown in the gallery"
	}
	a.feedback.Push(feedback.Success, msg)
	c.JSON(http.StatusOK, gin.H{"is_active": active, "message": msg})
}

// stageDeleteHandler never deletes directly; it stages a confirmation whose
// action performs the delete. Cancelling leaves the store untouched.
func (a *app) stageDeleteHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := a.store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	message := fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", t.Title)
	a.feedback.Request("Delete Transformation", message, func() {
		if err := a.store.Delete(id); err != nil {
			log.Printf("delete transformation %d failed: %v", id, err)
			a.feedback.Push(feedback.Error, "Failed to delete transformation")
			return
		}
		a.feedback.Push(feedback.Success, "Transformation deleted")
	})
	c.JSON(http.StatusOK, gin.H{"pending": true, "title": "Delete Transformation", "message": message})
}

func (a *app) confirmHandler(c *gin.Context) {
	if !a.feedback.Confirm() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending confirmation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "confirmed"})
}

func (a *app) cancelConfirmHandler(c *gin.Context) {
	if !a.feedback.Cancel() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending confirmation"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cancelled"})
}

func (a *app) createLeadHandler(c *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required"`
		MobileNumber string `json:"mobile_number" binding:"required"`
		City         string `json:"city" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lead := models.Lead{Name: req.Name, MobileNumber: req.MobileNumber, City: req.City, Status: "new"}
	if err := db.Create(&lead).Error; err != nil {
		log.Printf("lead submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": lead.ID})
}

func (a *app) adminLeadsHandler(c *gin.Context) {
	var leads []models.Lead
	if err := db.Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	sorted := triage.Sort(triage.Search(leads, c.Query("q")))
	c.JSON(http.StatusOK, gin.H{"leads": sorted, "shown": len(sorted), "total": len(leads)})
}

// toggleLeadHandler flips a lead between completed and new. Failure responds
// with a blocking alert payload, distinct from the toast stream, and the
// stored status stays unchanged.
func (a *app) toggleLeadHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if !a.leadGuard.Begin(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "update already in flight"})
		return
	}
	defer a.leadGuard.End(id)

	var lead models.Lead
	if err := db.First(&lead, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	next := triage.NextStatus(lead.Status)
	if err := db.Model(&models.Lead{}).Where("id = ?", id).Update("status", next).Error; err != nil {
		log.Printf("lead %d status update failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"alert": "Failed to update lead status. Please try again."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": next})
}

// uploadHandler streams one slot's image into object storage and returns the
// public URL the form will store on the transformation.
func (a *app) uploadHandler(c *gin.Context) {
	slot := uploader.Slot(strings.ToLower(c.PostForm("slot")))
	if !slot.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot must be before or after"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !uploader.IsImage(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image uploads are accepted"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "open upload failed"})
		return
	}
	defer src.Close()
	url, err := a.uploads.Upload(c.Request.Context(), slot, file.Filename, contentType, src)
	if err != nil {
		log.Printf("upload failed (%s slot): %v", slot, err)
		a.feedback.Push(feedback.Error, "Image upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot, "url": url})
}

func (a *app) toastsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.feedback.Toasts())
}

func (a *app) dismissToastHandler(c *gin.Context) {
	if !a.feedback.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "toast not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dismissed"})
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
