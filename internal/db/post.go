package db

import "time"

// Post 定义了文章模型
// PubDate 可以设置在未来，实现定时发布
type Post struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:256;not null"`
	Text       string    `gorm:"type:text;not null"`
	PubDate    time.Time `gorm:"index;not null"`
	AuthorID   uint      `gorm:"index;not null"`
	Author     User      `gorm:"constraint:OnDelete:CASCADE;"`
	LocationID *uint     `gorm:"index"`
	Location   *Location `gorm:"constraint:OnDelete:SET NULL;"`
	CategoryID *uint     `gorm:"index"`
	Category   *Category `gorm:"constraint:OnDelete:SET NULL;"`
	Image      string    `gorm:"size:255"`
	Publishable

	// CommentCount is filled by listing queries only.
	CommentCount int64 `gorm:"->;-:migration"`
}

// TableName 指定自定义表名。
func (Post) TableName() string {
	return "posts"
}

// IsOwnedBy reports whether userID authored the post.
func (p Post) IsOwnedBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}

// Comment 定义了评论模型，按创建时间升序展示
type Comment struct {
	ID       uint   `gorm:"primaryKey"`
	Text     string `gorm:"type:text;not null"`
	AuthorID uint   `gorm:"index;not null"`
	Author   User   `gorm:"constraint:OnDelete:CASCADE;"`
	PostID   uint   `gorm:"index;not null"`
	Post     *Post  `gorm:"constraint:OnDelete:CASCADE;"`
	Publishable
}

// TableName 指定自定义表名。
func (Comment) TableName() string {
	return "comments"
}

// IsOwnedBy reports whether userID authored the comment.
func (c Comment) IsOwnedBy(userID uint) bool {
	return userID != 0 && c.AuthorID == userID
}
