package uploader

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Previews tracks live local preview handles. Each selected file gets a
// transient preview URL; replacing or resetting a slot must release the old
// handle or repeated add/cancel cycles grow without bound.
type Previews struct {
	mu   sync.Mutex
	live map[string]struct{}
}

func NewPreviews() *Previews {
	return &Previews{live: make(map[string]struct{})}
}

func (p *Previews) create(filename string) string {
	url := fmt.Sprintf("preview://%s/%s", uuid.NewString(), filename)
	p.mu.Lock()
	p.live[url] = struct{}{}
	p.mu.Unlock()
	return url
}

func (p *Previews) release(url string) {
	p.mu.Lock()
	delete(p.live, url)
	p.mu.Unlock()
}

// Live reports how many preview handles are currently held.
func (p *Previews) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// SlotState is the ephemeral state of one image slot in the add form. It is
// driven from a single event loop; fields are read directly.
type SlotState struct {
	Slot        Slot
	FileName    string
	ContentType string
	PreviewURL  string
	DragActive  bool
	Uploading   bool

	previews *Previews
}

// Form is the pair of slots in the add/edit form.
type Form struct {
	Before SlotState
	After  SlotState
}

func NewForm(previews *Previews) *Form {
	return &Form{
		Before: SlotState{Slot: SlotBefore, previews: previews},
		After:  SlotState{Slot: SlotAfter, previews: previews},
	}
}

// SlotState returns the state for slot.
func (f *Form) SlotState(slot Slot) *SlotState {
	if slot == SlotAfter {
		return &f.After
	}
	return &f.Before
}

// Busy reports whether either slot has an upload in flight; the form may not
// be submitted while it does.
func (f *Form) Busy() bool { return f.Before.Uploading || f.After.Uploading }

// Reset releases both previews and clears the form.
func (f *Form) Reset() {
	f.Before.Reset()
	f.After.Reset()
}

// Select records a chosen file and swaps in a fresh preview, releasing any
// prior preview for this slot.
func (s *SlotState) Select(filename, contentType string) {
	if s.PreviewURL != "" {
		s.previews.release(s.PreviewURL)
	}
	s.FileName = filename
	s.ContentType = contentType
	s.PreviewURL = s.previews.create(filename)
}

// DragEnter and DragLeave toggle the visual flag independent of file state.
func (s *SlotState) DragEnter() { s.DragActive = true }
func (s *SlotState) DragLeave() { s.DragActive = false }

// Drop handles a dropped file. Non-image drops are silently ignored; the
// drag flag clears either way. It reports whether the file was accepted.
func (s *SlotState) Drop(filename, contentType string) bool {
	s.DragActive = false
	if !IsImage(contentType) {
		return false
	}
	s.Select(filename, contentType)
	return true
}

// Reset releases the preview and clears the slot.
func (s *SlotState) Reset() {
	if s.PreviewURL != "" {
		s.previews.release(s.PreviewURL)
		s.PreviewURL = ""
	}
	s.FileName = ""
	s.ContentType = ""
	s.DragActive = false
}

// Upload runs the slot's selected file through the pipeline. The in-flight
// flag clears on every path, success or failure, so the slot can never be
// left permanently uploading.
func (s *SlotState) Upload(ctx context.Context, u *Uploader, r io.Reader) (url string, err error) {
	if s.Uploading {
		return "", fmt.Errorf("%s slot already uploading", s.Slot)
	}
	s.Uploading = true
	defer func() { s.Uploading = false }()
	return u.Upload(ctx, s.Slot, s.FileName, s.ContentType, r)
}
