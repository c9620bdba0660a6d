package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gdb, err := db.Open(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) db.User {
	t.Helper()
	user := db.User{Username: username, Password: "hashed"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedCategory(t *testing.T, gdb *gorm.DB, slug string, published bool) db.Category {
	t.Helper()
	category := db.Category{
		Title:       "Category " + slug,
		Slug:        slug,
		Publishable: db.Publishable{IsPublished: published},
	}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category %s: %v", slug, err)
	}
	return category
}

type postSeed struct {
	title     string
	author    db.User
	category  *db.Category
	pubDate   time.Time
	published bool
}

func seedPost(t *testing.T, gdb *gorm.DB, seed postSeed) db.Post {
	t.Helper()
	post := db.Post{
		Title:       seed.title,
		Text:        "text of " + seed.title,
		PubDate:     seed.pubDate.UTC(),
		AuthorID:    seed.author.ID,
		Publishable: db.Publishable{IsPublished: seed.published},
	}
	if seed.category != nil {
		post.CategoryID = &seed.category.ID
	}
	if err := gdb.Omit(clause.Associations).Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post %s: %v", seed.title, err)
	}
	return post
}

func postTitles(posts []db.Post) []string {
	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	return titles
}

func containsTitle(posts []db.Post, title string) bool {
	for _, p := range posts {
		if p.Title == title {
			return true
		}
	}
	return false
}

func uintPtr(v uint) *uint {
	return &v
}
