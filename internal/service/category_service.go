package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryTitleMissing = errors.New("category title is required")
	ErrCategorySlugInvalid  = errors.New("category slug may contain only latin letters, digits, hyphen and underscore")
	ErrCategorySlugTaken    = errors.New("category slug already exists")
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s can be used as a category slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// CategoryService manages categories. Categories are administered from the
// command line; the web side only reads them.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput represents fields accepted when creating a category.
type CategoryInput struct {
	Title       string
	Description string
	Slug        string
	IsPublished bool
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// ListAll returns every category ordered by title.
func (s *CategoryService) ListAll() ([]db.Category, error) {
	var items []db.Category
	if err := s.db.Order("title asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// GetBySlug fetches a category regardless of its published flag.
func (s *CategoryService) GetBySlug(slug string) (*db.Category, error) {
	var item db.Category
	if err := s.db.Where("slug = ?", slug).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetPublishedBySlug fetches a category that is open to the public.
// Unpublished categories are reported as missing.
func (s *CategoryService) GetPublishedBySlug(slug string) (*db.Category, error) {
	item, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !item.IsPublished {
		return nil, ErrCategoryNotFound
	}
	return item, nil
}

// Create persists a new category.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	title := strings.TrimSpace(input.Title)
	slug := strings.TrimSpace(input.Slug)
	if title == "" {
		return nil, ErrCategoryTitleMissing
	}
	if !ValidSlug(slug) {
		return nil, ErrCategorySlugInvalid
	}

	if _, err := s.GetBySlug(slug); err == nil {
		return nil, ErrCategorySlugTaken
	} else if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	item := db.Category{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Slug:        slug,
		Publishable: db.Publishable{IsPublished: input.IsPublished},
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &item, nil
}

// SetPublished toggles whether the category and its posts are public.
func (s *CategoryService) SetPublished(slug string, published bool) error {
	result := s.db.Model(&db.Category{}).Where("slug = ?", slug).Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category; its posts stay and lose the reference.
func (s *CategoryService) Delete(slug string) error {
	item, err := s.GetBySlug(slug)
	if err != nil {
		return err
	}
	return db.DeleteRows(s.db, "categories", item.ID)
}
