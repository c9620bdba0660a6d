package main

import (
	"fmt"
	"log"
	"time"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"gorm.io/gorm"
)

const demoPassword = "blogicum123"

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	summary, err := seedDemoData(db.DB, time.Now())
	if err != nil {
		log.Fatal("测试数据生成失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("用户: %d (密码: %s)\n", summary.Users, demoPassword)
	fmt.Printf("分类: %d, 地点: %d\n", summary.Categories, summary.Locations)
	fmt.Printf("文章: %d, 评论: %d\n", summary.Posts, summary.Comments)
}

type seedSummary struct {
	Users      int
	Categories int
	Locations  int
	Posts      int
	Comments   int
}

type demoPost struct {
	title     string
	text      string
	author    string
	category  string
	location  string
	offset    time.Duration
	published bool
	comments  []demoComment
}

type demoComment struct {
	author string
	text   string
}

var demoCategories = []service.CategoryInput{
	{Slug: "travel", Title: "Travel", Description: "Trips near and far.", IsPublished: true},
	{Slug: "food", Title: "Food", Description: "What we ate and where.", IsPublished: true},
	{Slug: "drafts", Title: "Drafts", Description: "Not ready for the world yet.", IsPublished: false},
}

var demoLocations = []struct {
	name      string
	published bool
}{
	{name: "Lisbon", published: true},
	{name: "Kyoto", published: true},
	{name: "Secret island", published: false},
}

var demoPosts = []demoPost{
	{
		title:     "Trams of Lisbon",
		text:      "Line **28** climbs through Alfama.\n\nTake it early in the morning.",
		author:    "alice",
		category:  "travel",
		location:  "Lisbon",
		offset:    -72 * time.Hour,
		published: true,
		comments: []demoComment{
			{author: "bob", text: "Went there last spring, loved it."},
			{author: "alice", text: "The view from the top is the best part."},
		},
	},
	{
		title:     "Ramen in Kyoto",
		text:      "Three bowls in one evening was a mistake worth making.",
		author:    "bob",
		category:  "food",
		location:  "Kyoto",
		offset:    -24 * time.Hour,
		published: true,
		comments: []demoComment{
			{author: "alice", text: "Which one was the best?"},
		},
	},
	{
		title:     "Scheduled: autumn plans",
		text:      "This post goes live next week.",
		author:    "alice",
		category:  "travel",
		offset:    7 * 24 * time.Hour,
		published: true,
	},
	{
		title:     "Hidden notes",
		text:      "Only the author can see this.",
		author:    "bob",
		category:  "food",
		offset:    -time.Hour,
		published: false,
	},
	{
		title:     "Ideas without a home",
		text:      "Posts in unpublished categories stay private.",
		author:    "alice",
		category:  "drafts",
		offset:    -2 * time.Hour,
		published: true,
	},
}

// seedDemoData fills an empty database with demo content. A database that
// already has users is left untouched.
func seedDemoData(gdb *gorm.DB, now time.Time) (seedSummary, error) {
	var summary seedSummary

	var count int64
	if err := gdb.Model(&db.User{}).Count(&count).Error; err != nil {
		return summary, err
	}
	if count > 0 {
		fmt.Println("用户已存在，跳过创建")
		return summary, nil
	}

	users := service.NewUserService(gdb)
	userIDs := map[string]uint{}
	for _, name := range []string{"alice", "bob"} {
		user, err := users.Register(name, demoPassword)
		if err != nil {
			return summary, fmt.Errorf("create user %s: %w", name, err)
		}
		userIDs[name] = user.ID
		summary.Users++
	}

	categories := service.NewCategoryService(gdb)
	categoryIDs := map[string]uint{}
	for _, input := range demoCategories {
		category, err := categories.Create(input)
		if err != nil {
			return summary, fmt.Errorf("create category %s: %w", input.Slug, err)
		}
		categoryIDs[input.Slug] = category.ID
		summary.Categories++
	}

	locations := service.NewLocationService(gdb)
	locationIDs := map[string]uint{}
	for _, item := range demoLocations {
		location, err := locations.Create(item.name, item.published)
		if err != nil {
			return summary, fmt.Errorf("create location %s: %w", item.name, err)
		}
		locationIDs[item.name] = location.ID
		summary.Locations++
	}

	posts := service.NewPostService(gdb, "-pub_date")
	comments := service.NewCommentService(gdb)
	for _, item := range demoPosts {
		input := service.PostInput{
			Title:       item.title,
			Text:        item.text,
			PubDate:     now.Add(item.offset),
			IsPublished: item.published,
		}
		if id, ok := categoryIDs[item.category]; ok {
			input.CategoryID = &id
		}
		if id, ok := locationIDs[item.location]; ok {
			input.LocationID = &id
		}

		post, err := posts.Create(userIDs[item.author], input)
		if err != nil {
			return summary, fmt.Errorf("create post %q: %w", item.title, err)
		}
		summary.Posts++

		for _, c := range item.comments {
			if _, err := comments.Create(post.ID, userIDs[c.author], c.text); err != nil {
				return summary, fmt.Errorf("comment on %q: %w", item.title, err)
			}
			summary.Comments++
		}
	}

	return summary, nil
}
