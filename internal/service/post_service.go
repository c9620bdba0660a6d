package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostTitleMissing = errors.New("post title is required")
	ErrPostTitleTooLong = errors.New("post title is too long")
	ErrPostTextMissing  = errors.New("post text is required")
	ErrPubDateMissing   = errors.New("post publication date is required")
)

const maxTitleRunes = 256

// PostService wraps post related database operations.
type PostService struct {
	db    *gorm.DB
	order string
	now   func() time.Time
}

// PostListResult aggregates one page of posts.
type PostListResult struct {
	Posts []db.Post
	Page  Page
}

// PostInput represents fields accepted when creating or updating a post.
// The author is never part of the input; it is bound by the caller.
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	CategoryID  *uint
	LocationID  *uint
	Image       string
	ClearImage  bool
	IsPublished bool
}

// NewPostService creates a PostService ordering listings by sortField ("-pub_date", "title", ...).
func NewPostService(gdb *gorm.DB, sortField string) *PostService {
	return &PostService{
		db:    gdb,
		order: config.OrderClause(sortField),
		now:   time.Now,
	}
}

// SetClock replaces the time source of the visibility filter.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// Now reports the current time as seen by the visibility filter.
func (s *PostService) Now() time.Time {
	return s.now()
}

// ListVisible returns publicly visible posts.
func (s *PostService) ListVisible(page, perPage int) (*PostListResult, error) {
	return s.list(page, perPage, VisiblePosts(s.now()))
}

// ListByCategory returns publicly visible posts of a category.
func (s *PostService) ListByCategory(categoryID uint, page, perPage int) (*PostListResult, error) {
	return s.list(page, perPage, VisiblePosts(s.now()), byCategory(categoryID))
}

// ListByAuthor returns the posts of an author. includeHidden skips the
// visibility filter and is meant for the author looking at their own profile.
func (s *PostService) ListByAuthor(authorID uint, includeHidden bool, page, perPage int) (*PostListResult, error) {
	if includeHidden {
		return s.list(page, perPage, byAuthor(authorID))
	}
	return s.list(page, perPage, VisiblePosts(s.now()), byAuthor(authorID))
}

func (s *PostService) list(page, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (*PostListResult, error) {
	var total int64
	if err := s.db.Model(&db.Post{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	p, err := resolvePage(page, perPage, total)
	if err != nil {
		return nil, err
	}

	var posts []db.Post
	if err := s.db.Model(&db.Post{}).
		Scopes(scopes...).
		Scopes(withCommentCount, withRelations).
		Order(s.order).
		Limit(p.PerPage).
		Offset(p.Offset()).
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &PostListResult{Posts: posts, Page: p}, nil
}

func byAuthor(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", authorID)
	}
}

func byCategory(categoryID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.category_id = ?", categoryID)
	}
}

// Get fetches a post by id with author, category and location preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Scopes(withRelations).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetForViewer fetches a post the viewer is allowed to read. The author always
// can; anyone else only when the post passes the visibility filter. A hidden
// post reports ErrPostNotFound so its existence does not leak.
func (s *PostService) GetForViewer(id, viewerID uint) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if post.IsOwnedBy(viewerID) {
		return post, nil
	}

	var visible int64
	if err := s.db.Model(&db.Post{}).
		Scopes(VisiblePosts(s.now())).
		Where("posts.id = ?", id).
		Count(&visible).Error; err != nil {
		return nil, err
	}
	if visible == 0 {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Create persists a post authored by authorID.
func (s *PostService) Create(authorID uint, input PostInput) (*db.Post, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	post := db.Post{AuthorID: authorID}
	applyPostInput(&post, input)

	if err := s.db.Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.Get(post.ID)
}

// Update applies updates to an existing post. Ownership is checked by the caller.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	applyPostInput(&existing, input)

	if err := s.db.Omit(clause.Associations).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return s.Get(existing.ID)
}

// Delete removes a post and, through the deletion policy, its comments.
func (s *PostService) Delete(id uint) error {
	var found int64
	if err := s.db.Model(&db.Post{}).Where("id = ?", id).Count(&found).Error; err != nil {
		return err
	}
	if found == 0 {
		return ErrPostNotFound
	}
	return db.DeleteRows(s.db, "posts", id)
}

func applyPostInput(post *db.Post, input PostInput) {
	post.Title = strings.TrimSpace(input.Title)
	post.Text = input.Text
	post.PubDate = input.PubDate.UTC()
	post.CategoryID = input.CategoryID
	post.LocationID = input.LocationID
	post.IsPublished = input.IsPublished

	switch {
	case input.Image != "":
		post.Image = input.Image
	case input.ClearImage:
		post.Image = ""
	}
}

func (s *PostService) validate(input PostInput) error {
	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return ErrPostTitleMissing
	case utf8.RuneCountInString(title) > maxTitleRunes:
		return ErrPostTitleTooLong
	case strings.TrimSpace(input.Text) == "":
		return ErrPostTextMissing
	case input.PubDate.IsZero():
		return ErrPubDateMissing
	}

	if input.CategoryID != nil {
		if err := ensureExists(s.db, &db.Category{}, *input.CategoryID, ErrCategoryNotFound); err != nil {
			return err
		}
	}
	if input.LocationID != nil {
		if err := ensureExists(s.db, &db.Location{}, *input.LocationID, ErrLocationNotFound); err != nil {
			return err
		}
	}
	return nil
}

func ensureExists(gdb *gorm.DB, model any, id uint, missing error) error {
	var n int64
	if err := gdb.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
