package service

import (
	"time"

	"gorm.io/gorm"
)

// VisiblePosts restricts a posts query to what non-owners may see: the post
// and its category are published and the publication date has passed.
// Posts without a category are never visible.
func VisiblePosts(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("categories.is_published = ?", true).
			Where("posts.pub_date <= ?", now.UTC())
	}
}

// withCommentCount selects posts annotated with the number of their comments.
func withCommentCount(tx *gorm.DB) *gorm.DB {
	return tx.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

// withRelations preloads the rows a post card renders.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").Preload("Category").Preload("Location")
}
