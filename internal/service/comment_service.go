package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrCommentTextMissing = errors.New("comment text is required")
)

// CommentService handles comments under posts.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// ListForPost returns every comment of a post, oldest first.
func (s *CommentService) ListForPost(postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Get fetches a comment by id.
func (s *CommentService) Get(id uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Create adds a comment by authorID under postID.
func (s *CommentService) Create(postID, authorID uint, text string) (*db.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentTextMissing
	}
	if err := ensureExists(s.db, &db.Post{}, postID, ErrPostNotFound); err != nil {
		return nil, err
	}

	comment := db.Comment{
		Text:        text,
		AuthorID:    authorID,
		PostID:      postID,
		Publishable: db.Publishable{IsPublished: true},
	}
	if err := s.db.Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.Get(comment.ID)
}

// Update replaces the text of a comment.
func (s *CommentService) Update(id uint, text string) (*db.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentTextMissing
	}

	result := s.db.Model(&db.Comment{}).Where("id = ?", id).Update("text", text)
	if result.Error != nil {
		return nil, fmt.Errorf("update comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCommentNotFound
	}
	return s.Get(id)
}

// Delete removes a comment.
func (s *CommentService) Delete(id uint) error {
	if err := ensureExists(s.db, &db.Comment{}, id, ErrCommentNotFound); err != nil {
		return err
	}
	return db.DeleteRows(s.db, "comments", id)
}
