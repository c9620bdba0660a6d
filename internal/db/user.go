package db

import "time"

// User 定义了用户模型，帖子和评论的作者
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	Email     string `gorm:"size:254"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
