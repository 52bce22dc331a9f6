// Package uploader turns a selected image file into a durably stored,
// publicly addressable URL, and models the per-slot form state around it
// (local preview, drag flag, in-flight flag).
package uploader

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"stagewise/pkg/blob"
)

// Slot is one of the two image positions in the add/edit form.
type Slot string

const (
	SlotBefore Slot = "before"
	SlotAfter  Slot = "after"
)

// Valid reports whether s names a known slot.
func (s Slot) Valid() bool { return s == SlotBefore || s == SlotAfter }

// KeyPrefix is where gallery images live inside the bucket.
const KeyPrefix = "transformations"

// ObjectKey builds a collision-resistant key from the current time, the slot
// name, and a random suffix, preserving the original file extension.
func ObjectKey(slot Slot, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s-%s%s", KeyPrefix, time.Now().UnixMilli(), slot, suffix, ext)
}

// IsImage reports whether a MIME type is acceptable for a slot.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Uploader streams files into a blob store.
type Uploader struct {
	Blobs blob.Store
}

func New(store blob.Store) *Uploader { return &Uploader{Blobs: store} }

// Upload stores the file under a fresh key and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, slot Slot, filename, contentType string, r io.Reader) (string, error) {
	if !slot.Valid() {
		return "", fmt.Errorf("unknown slot %q", slot)
	}
	key := ObjectKey(slot, filename)
	if err := u.Blobs.Put(ctx, key, r, contentType); err != nil {
		return "", fmt.Errorf("upload %s image: %w", slot, err)
	}
	return u.Blobs.PublicURL(key), nil
}
