package main

import (
	"fmt"
	"strings"
	"sync"

	"stagewise/models"

	"gorm.io/gorm"
)

// ValidationError reports a missing required field. It is raised before any
// database call, so a failed validation never produces a partial write.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// TransformationFields are the mutable fields of a gallery entry. A nil
// DisplayOrder on create means "append after the current highest order".
type TransformationFields struct {
	Title          string `json:"title"`
	BeforeImageURL string `json:"before_image_url"`
	AfterImageURL  string `json:"after_image_url"`
	RoomType       string `json:"room_type"`
	DisplayOrder   *int   `json:"display_order"`
	IsActive       *bool  `json:"is_active"`
}

func (f TransformationFields) validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return &ValidationError{Field: "title"}
	case strings.TrimSpace(f.RoomType) == "":
		return &ValidationError{Field: "room_type"}
	case strings.TrimSpace(f.BeforeImageURL) == "":
		return &ValidationError{Field: "before_image_url"}
	case strings.TrimSpace(f.AfterImageURL) == "":
		return &ValidationError{Field: "after_image_url"}
	}
	return nil
}

// TransformationStore keeps the gallery records synchronized with the
// database. The in-memory snapshot is a cache: after every mutation the full
// ordered list is re-fetched rather than patched, so the displayed state
// always matches the backend's authoritative order and values (including
// trigger-updated timestamps). Between mutations the snapshot is never
// trusted as authoritative.
type TransformationStore struct {
	db *gorm.DB

	mu    sync.RWMutex
	items []models.Transformation
}

func newTransformationStore(db *gorm.DB) *TransformationStore {
	return &TransformationStore{db: db}
}

// refresh replaces the snapshot with the backend's current ordered list.
func (s *TransformationStore) refresh() error {
	var items []models.Transformation
	if err := s.db.Order("display_order asc").Find(&items).Error; err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// List returns the gallery ordered ascending by display_order. all=false is
// the public view and filters to active entries; all=true is the admin view.
func (s *TransformationStore) List(all bool) ([]models.Transformation, error) {
	if err := s.refresh(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transformation, 0, len(s.items))
	for _, t := range s.items {
		if all || t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

// Snapshot returns the cached list without touching the backend.
func (s *TransformationStore) Snapshot() []models.Transformation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Transformation(nil), s.items...)
}

// Create validates required fields before any database call, then inserts
// and re-fetches. Without an explicit display order the entry is appended
// after the current highest.
func (s *TransformationStore) Create(f TransformationFields) error {
	if err := f.validate(); err != nil {
		return err
	}
	order := 0
	if f.DisplayOrder != nil {
		order = *f.DisplayOrder
	} else {
		order = s.nextDisplayOrder()
	}
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	t := models.Transformation{
		Title:          f.Title,
		BeforeImageURL: f.BeforeImageURL,
		AfterImageURL:  f.AfterImageURL,
		RoomType:       f.RoomType,
		DisplayOrder:   order,
		IsActive:       active,
	}
	if err := s.db.Create(&t).Error; err != nil {
		return err
	}
	return s.refresh()
}

func (s *TransformationStore) nextDisplayOrder() int {
	var top models.Transformation
	if err := s.db.Order("display_order desc").First(&top).Error; err != nil {
		return 1
	}
	return top.DisplayOrder + 1
}

// Update replaces every mutable field of the record. Edits are optimistic:
// on persistence failure the caller's local copy is not rolled back; the
// operator discards it by re-fetching.
func (s *TransformationStore) Update(id uint, f TransformationFields) error {
	if err := f.validate(); err != nil {
		return err
	}
	order := 0
	if f.DisplayOrder != nil {
		order = *f.DisplayOrder
	}
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	patch := map[string]any{
		"title":            f.Title,
		"before_image_url": f.BeforeImageURL,
		"after_image_url":  f.AfterImageURL,
		"room_type":        f.RoomType,
		"display_order":    order,
		"is_active":        active,
	}
	if err := s.db.Model(&models.Transformation{}).Where("id = ?", id).Updates(patch).Error; err != nil {
		return err
	}
	return s.refresh()
}

// ToggleActive flips visibility and returns the resulting state.
func (s *TransformationStore) ToggleActive(id uint) (bool, error) {
	var t models.Transformation
	if err := s.db.First(&t, id).Error; err != nil {
		return false, err
	}
	next := !t.IsActive
	if err := s.db.Model(&models.Transformation{}).Where("id = ?", id).Update("is_active", next).Error; err != nil {
		return false, err
	}
	if err := s.refresh(); err != nil {
		return next, err
	}
	return next, nil
}

// Delete removes the record. Irreversible; handlers must route it through
// the confirmation flow, never call it directly from a request.
func (s *TransformationStore) Delete(id uint) error {
	if err := s.db.Delete(&models.Transformation{}, id).Error; err != nil {
		return err
	}
	return s.refresh()
}

// Get returns one record from the backend.
func (s *TransformationStore) Get(id uint) (models.Transformation, error) {
	var t models.Transformation
	err := s.db.First(&t, id).Error
	return t, err
}
