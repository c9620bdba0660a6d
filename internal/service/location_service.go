package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
)

var (
	ErrLocationNotFound    = errors.New("location not found")
	ErrLocationNameMissing = errors.New("location name is required")
)

// LocationService manages locations posts can be tagged with.
type LocationService struct {
	db *gorm.DB
}

// NewLocationService creates a LocationService instance.
func NewLocationService(gdb *gorm.DB) *LocationService {
	return &LocationService{db: gdb}
}

// ListAll returns every location ordered by name.
func (s *LocationService) ListAll() ([]db.Location, error) {
	var items []db.Location
	if err := s.db.Order("name asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return items, nil
}

// Get fetches a location by id.
func (s *LocationService) Get(id uint) (*db.Location, error) {
	var item db.Location
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create persists a new location.
func (s *LocationService) Create(name string, published bool) (*db.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLocationNameMissing
	}

	item := db.Location{Name: name, Publishable: db.Publishable{IsPublished: published}}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return &item, nil
}

// Delete removes a location; posts tagged with it keep existing untagged.
func (s *LocationService) Delete(id uint) error {
	if err := ensureExists(s.db, &db.Location{}, id, ErrLocationNotFound); err != nil {
		return err
	}
	return db.DeleteRows(s.db, "locations", id)
}
