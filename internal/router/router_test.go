package router

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "s3cret-pass"

type blogSuite struct {
	db       *gorm.DB
	handler  http.Handler
	cfg      config.AppConfig
	now      time.Time
	alice    *db.User
	bob      *db.User
	travel   *db.Category
	hidden   *db.Category
	location *db.Location
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) *http.Response {
	for _, cookie := range c.jar.Cookies(req.URL) {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	c.jar.SetCookies(req.URL, resp.Cookies())
	return resp
}

func (c *localClient) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "http://blogicum.test"+path, nil)
	return readResponse(t, c.Do(req))
}

func (c *localClient) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "http://blogicum.test"+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return readResponse(t, c.Do(req))
}

func readResponse(t *testing.T, resp *http.Response) (*http.Response, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func newBlogSuite(t *testing.T, configure ...func(*config.AppConfig)) *blogSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gdb, err := db.Open(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := config.Default()
	cfg.CSRFEnabled = false
	cfg.SessionSecret = "test-secret"
	cfg.MediaDir = t.TempDir()
	for _, fn := range configure {
		fn(&cfg)
	}

	engine, api := SetupRouter(gdb, cfg, zap.NewNop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	api.Posts().SetClock(func() time.Time { return now })

	s := &blogSuite{db: gdb, handler: engine, cfg: cfg, now: now}

	users := service.NewUserService(gdb)
	if s.alice, err = users.Register("alice", testPassword); err != nil {
		t.Fatalf("failed to register alice: %v", err)
	}
	if s.bob, err = users.Register("bob", testPassword); err != nil {
		t.Fatalf("failed to register bob: %v", err)
	}

	categories := service.NewCategoryService(gdb)
	if s.travel, err = categories.Create(service.CategoryInput{Title: "Travel", Slug: "travel", IsPublished: true}); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if s.hidden, err = categories.Create(service.CategoryInput{Title: "Drafts", Slug: "drafts", IsPublished: false}); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if s.location, err = service.NewLocationService(gdb).Create("Lisbon", true); err != nil {
		t.Fatalf("failed to create location: %v", err)
	}
	return s
}

func (s *blogSuite) login(t *testing.T, username string) *localClient {
	t.Helper()
	client := newLocalClient(s.handler)
	resp, _ := client.postForm(t, "/auth/login/", url.Values{
		"username": {username},
		"password": {testPassword},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", resp.StatusCode)
	}
	return client
}

func (s *blogSuite) postValues(title string, pubDate time.Time, category *db.Category) url.Values {
	form := url.Values{
		"title":        {title},
		"text":         {"Body of " + title},
		"pub_date":     {pubDate.Local().Format("2006-01-02T15:04")},
		"is_published": {"true"},
	}
	if category != nil {
		form.Set("category", strconv.FormatUint(uint64(category.ID), 10))
	}
	return form
}

func (s *blogSuite) createPost(t *testing.T, client *localClient, form url.Values) *db.Post {
	t.Helper()
	resp, body := client.postForm(t, "/posts/create/", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after create, got %d: %s", resp.StatusCode, body)
	}

	var post db.Post
	if err := s.db.Where("title = ?", form.Get("title")).First(&post).Error; err != nil {
		t.Fatalf("created post not found: %v", err)
	}
	return &post
}

func (s *blogSuite) seedComment(t *testing.T, post *db.Post, author *db.User, text string) *db.Comment {
	t.Helper()
	comment, err := service.NewCommentService(s.db).Create(post.ID, author.ID, text)
	if err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	return comment
}

func TestScheduledPostVisibleOnlyToAuthor(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")
	anonymous := newLocalClient(s.handler)

	post := s.createPost(t, alice, s.postValues("Trip to Porto", s.now.Add(48*time.Hour), s.travel))
	if post.AuthorID != s.alice.ID {
		t.Fatalf("expected alice to author the post, got %d", post.AuthorID)
	}

	for _, path := range []string{"/", "/category/travel/", "/profile/alice/"} {
		_, body := bob.get(t, path)
		if strings.Contains(body, "Trip to Porto") {
			t.Fatalf("scheduled post leaked on %s", path)
		}
	}

	if resp, _ := anonymous.get(t, postURL(post.ID)); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for scheduled post detail, got %d", resp.StatusCode)
	}
	if resp, _ := bob.get(t, postURL(post.ID)); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for bob, got %d", resp.StatusCode)
	}

	_, body := alice.get(t, "/profile/alice/")
	if !strings.Contains(body, "Trip to Porto") {
		t.Fatalf("author should see scheduled post on own profile")
	}
	if resp, _ := alice.get(t, postURL(post.ID)); resp.StatusCode != http.StatusOK {
		t.Fatalf("author should open scheduled post, got %d", resp.StatusCode)
	}
}

func TestPublicListingsShowVisiblePosts(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")
	anonymous := newLocalClient(s.handler)

	visible := s.createPost(t, alice, s.postValues("Sunny beaches", s.now.Add(-time.Hour), s.travel))
	s.createPost(t, alice, s.postValues("Secret drafts", s.now.Add(-time.Hour), s.hidden))
	s.createPost(t, alice, s.postValues("No category", s.now.Add(-time.Hour), nil))
	s.seedComment(t, visible, s.bob, "nice")

	_, body := anonymous.get(t, "/")
	if !strings.Contains(body, "Sunny beaches") {
		t.Fatalf("visible post missing from index")
	}
	if !strings.Contains(body, "Comments (1)") {
		t.Fatalf("expected comment count on index, got %s", body)
	}
	for _, title := range []string{"Secret drafts", "No category"} {
		if strings.Contains(body, title) {
			t.Fatalf("%q should not be listed publicly", title)
		}
	}

	resp, body := anonymous.get(t, "/category/travel/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Sunny beaches") {
		t.Fatalf("category listing missing post, status %d", resp.StatusCode)
	}

	if resp, _ := anonymous.get(t, "/category/drafts/"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unpublished category, got %d", resp.StatusCode)
	}
	if resp, _ := anonymous.get(t, "/category/missing/"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing category, got %d", resp.StatusCode)
	}
	if resp, _ := anonymous.get(t, "/profile/nobody/"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing profile, got %d", resp.StatusCode)
	}
}

func TestPagination(t *testing.T) {
	s := newBlogSuite(t, func(cfg *config.AppConfig) { cfg.PageSize = 2 })
	alice := s.login(t, "alice")
	anonymous := newLocalClient(s.handler)

	for i := 1; i <= 3; i++ {
		s.createPost(t, alice, s.postValues(fmt.Sprintf("Post %d", i), s.now.Add(-time.Duration(i)*time.Hour), s.travel))
	}

	_, body := anonymous.get(t, "/")
	if !strings.Contains(body, "Post 1") || !strings.Contains(body, "Post 2") || strings.Contains(body, "Post 3") {
		t.Fatalf("unexpected first page: %s", body)
	}

	resp, body := anonymous.get(t, "/?page=last")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Post 3") {
		t.Fatalf("expected last page with Post 3, got %d", resp.StatusCode)
	}

	for _, page := range []string{"3", "0", "abc"} {
		if resp, _ := anonymous.get(t, "/?page="+page); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 for page %s, got %d", page, resp.StatusCode)
		}
	}
}

func TestNonOwnerCannotEditOrDeletePost(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")
	anonymous := newLocalClient(s.handler)

	post := s.createPost(t, alice, s.postValues("Original title", s.now.Add(-time.Hour), s.travel))
	detail := postURL(post.ID)

	for name, client := range map[string]*localClient{"bob": bob, "anonymous": anonymous} {
		resp, _ := client.get(t, detail+"edit/")
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
			t.Fatalf("%s: expected redirect to detail from edit page, got %d %q", name, resp.StatusCode, resp.Header.Get("Location"))
		}

		resp, _ = client.postForm(t, detail+"edit/", s.postValues("Hijacked", s.now, s.travel))
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
			t.Fatalf("%s: expected redirect to detail on edit, got %d", name, resp.StatusCode)
		}

		resp, _ = client.postForm(t, detail+"delete/", url.Values{})
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
			t.Fatalf("%s: expected redirect to detail on delete, got %d", name, resp.StatusCode)
		}
	}

	var stored db.Post
	if err := s.db.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("post should still exist: %v", err)
	}
	if stored.Title != "Original title" {
		t.Fatalf("post was modified by a non-owner: %q", stored.Title)
	}

	if resp, _ := bob.get(t, "/posts/9999/edit/"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for missing post, got %d", resp.StatusCode)
	}
}

func TestOwnerEditsAndDeletesPost(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")

	post := s.createPost(t, alice, s.postValues("Draft title", s.now.Add(-time.Hour), s.travel))
	s.seedComment(t, post, s.bob, "first!")
	detail := postURL(post.ID)

	resp, body := alice.get(t, detail+"edit/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Draft title") {
		t.Fatalf("expected prefilled edit form, got %d", resp.StatusCode)
	}

	resp, _ = alice.postForm(t, detail+"edit/", s.postValues("Final title", s.now.Add(-time.Hour), s.travel))
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
		t.Fatalf("expected redirect to detail after edit, got %d", resp.StatusCode)
	}

	var stored db.Post
	if err := s.db.First(&stored, post.ID).Error; err != nil {
		t.Fatalf("failed to reload post: %v", err)
	}
	if stored.Title != "Final title" || stored.AuthorID != s.alice.ID {
		t.Fatalf("unexpected post after edit: %+v", stored)
	}

	resp, body = alice.get(t, detail+"delete/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Final title") {
		t.Fatalf("expected delete confirmation, got %d", resp.StatusCode)
	}

	resp, _ = alice.postForm(t, detail+"delete/", url.Values{})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/profile/alice/" {
		t.Fatalf("expected redirect to profile after delete, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	var posts, comments int64
	s.db.Model(&db.Post{}).Where("id = ?", post.ID).Count(&posts)
	s.db.Model(&db.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	if posts != 0 || comments != 0 {
		t.Fatalf("expected post and comments removed, got %d posts %d comments", posts, comments)
	}
}

func TestCreatePostBindsAuthorServerSide(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")

	form := s.postValues("Who wrote this", s.now.Add(-time.Hour), s.travel)
	form.Set("author", strconv.FormatUint(uint64(s.bob.ID), 10))
	form.Set("author_id", strconv.FormatUint(uint64(s.bob.ID), 10))
	form.Set("location", strconv.FormatUint(uint64(s.location.ID), 10))

	resp, _ := alice.postForm(t, "/posts/create/", form)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/profile/alice/" {
		t.Fatalf("expected redirect to author profile, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	var post db.Post
	if err := s.db.Where("title = ?", "Who wrote this").First(&post).Error; err != nil {
		t.Fatalf("post not created: %v", err)
	}
	if post.AuthorID != s.alice.ID {
		t.Fatalf("expected author alice, got %d", post.AuthorID)
	}
	if post.LocationID == nil || *post.LocationID != s.location.ID {
		t.Fatalf("expected location to be stored")
	}
}

func TestCreatePostValidation(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")

	tests := []struct {
		name  string
		edit  func(url.Values)
		error string
	}{
		{name: "missing title", edit: func(f url.Values) { f.Del("title") }, error: "This field is required."},
		{name: "long title", edit: func(f url.Values) { f.Set("title", strings.Repeat("x", 257)) }, error: "at most 256 characters"},
		{name: "bad date", edit: func(f url.Values) { f.Set("pub_date", "yesterday") }, error: "Enter a valid date/time."},
		{name: "unknown category", edit: func(f url.Values) { f.Set("category", "999") }, error: "Select a valid choice."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := s.postValues("Validated", s.now, s.travel)
			tt.edit(form)

			resp, body := alice.postForm(t, "/posts/create/", form)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected form to be re-rendered, got %d", resp.StatusCode)
			}
			if !strings.Contains(body, tt.error) {
				t.Fatalf("expected error %q in body", tt.error)
			}
		})
	}

	var count int64
	s.db.Model(&db.Post{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid forms must not persist posts, got %d", count)
	}
}

func TestCreatePostWithImage(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, values := range s.postValues("With picture", s.now.Add(-time.Hour), s.travel) {
		for _, v := range values {
			_ = writer.WriteField(key, v)
		}
	}
	part, err := writer.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(pngBuf.Bytes())
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "http://blogicum.test/posts/create/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, _ := readResponse(t, alice.Do(req))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}

	var post db.Post
	if err := s.db.Where("title = ?", "With picture").First(&post).Error; err != nil {
		t.Fatalf("post not created: %v", err)
	}
	if !strings.HasPrefix(post.Image, "post_images/") || !strings.HasSuffix(post.Image, ".png") {
		t.Fatalf("unexpected image name %q", post.Image)
	}
	if _, err := os.Stat(filepath.Join(s.cfg.MediaDir, post.Image)); err != nil {
		t.Fatalf("image not stored: %v", err)
	}

	mediaResp, _ := alice.get(t, s.cfg.MediaURLPath+"/"+post.Image)
	if mediaResp.StatusCode != http.StatusOK {
		t.Fatalf("expected uploaded image to be served, got %d", mediaResp.StatusCode)
	}
}

func TestAuthRequiredRoutesRedirectToLogin(t *testing.T) {
	s := newBlogSuite(t)
	anonymous := newLocalClient(s.handler)

	for _, path := range []string{"/posts/create/", "/edit_profile/", "/posts/1/edit_comment/1/"} {
		resp, _ := anonymous.get(t, path)
		want := "/auth/login/?next=" + url.QueryEscape(path)
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != want {
			t.Fatalf("%s: expected redirect to %q, got %d %q", path, want, resp.StatusCode, resp.Header.Get("Location"))
		}
	}

	resp, _ := anonymous.postForm(t, "/posts/1/comment/", url.Values{"text": {"hi"}})
	if resp.StatusCode != http.StatusFound || !strings.HasPrefix(resp.Header.Get("Location"), "/auth/login/") {
		t.Fatalf("anonymous comment should redirect to login, got %d", resp.StatusCode)
	}
}

func TestCommentLifecycle(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	post := s.createPost(t, alice, s.postValues("Open thread", s.now.Add(-time.Hour), s.travel))
	other := s.createPost(t, alice, s.postValues("Other thread", s.now.Add(-time.Hour), s.travel))
	detail := postURL(post.ID)

	for _, text := range []string{"first comment", "second comment"} {
		resp, _ := bob.postForm(t, detail+"comment/", url.Values{"text": {text}})
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
			t.Fatalf("expected redirect to detail after comment, got %d", resp.StatusCode)
		}
	}

	_, body := alice.get(t, detail)
	first, second := strings.Index(body, "first comment"), strings.Index(body, "second comment")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected comments in ascending order")
	}

	var comment db.Comment
	if err := s.db.Where("text = ?", "first comment").First(&comment).Error; err != nil {
		t.Fatalf("comment not stored: %v", err)
	}
	if comment.AuthorID != s.bob.ID || comment.PostID != post.ID {
		t.Fatalf("comment bound to wrong author or post: %+v", comment)
	}
	editURL := fmt.Sprintf("%sedit_comment/%d/", detail, comment.ID)
	deleteURL := fmt.Sprintf("%sdelete_comment/%d/", detail, comment.ID)

	resp, _ := alice.postForm(t, editURL, url.Values{"text": {"edited by alice"}})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
		t.Fatalf("non-owner edit should redirect to detail, got %d", resp.StatusCode)
	}
	resp, _ = alice.postForm(t, deleteURL, url.Values{})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
		t.Fatalf("non-owner delete should redirect to detail, got %d", resp.StatusCode)
	}

	wrongPost := fmt.Sprintf("%sedit_comment/%d/", postURL(other.ID), comment.ID)
	if resp, _ := bob.get(t, wrongPost); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("comment under another post should 404, got %d", resp.StatusCode)
	}

	resp, body = bob.get(t, editURL)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "first comment") {
		t.Fatalf("expected comment edit form, got %d", resp.StatusCode)
	}
	resp, body = bob.postForm(t, editURL, url.Values{"text": {""}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "This field is required.") {
		t.Fatalf("expected validation error on empty comment, got %d", resp.StatusCode)
	}
	resp, _ = bob.postForm(t, editURL, url.Values{"text": {"first comment, edited"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after edit, got %d", resp.StatusCode)
	}

	if err := s.db.First(&comment, comment.ID).Error; err != nil {
		t.Fatalf("failed to reload comment: %v", err)
	}
	if comment.Text != "first comment, edited" {
		t.Fatalf("comment not updated: %q", comment.Text)
	}

	resp, _ = bob.postForm(t, deleteURL, url.Values{})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
		t.Fatalf("expected redirect after delete, got %d", resp.StatusCode)
	}
	var remaining int64
	s.db.Model(&db.Comment{}).Where("id = ?", comment.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("comment should be deleted")
	}
}

func TestInvalidCommentShowsFlash(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	post := s.createPost(t, alice, s.postValues("Quiet thread", s.now.Add(-time.Hour), s.travel))
	detail := postURL(post.ID)

	resp, _ := bob.postForm(t, detail+"comment/", url.Values{"text": {"   "}})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != detail {
		t.Fatalf("expected redirect to detail, got %d", resp.StatusCode)
	}

	_, body := bob.get(t, detail)
	if !strings.Contains(body, "Comment not saved") {
		t.Fatalf("expected flash message on detail page")
	}
	_, body = bob.get(t, detail)
	if strings.Contains(body, "Comment not saved") {
		t.Fatalf("flash message should be shown once")
	}

	var count int64
	s.db.Model(&db.Comment{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid comment must not be stored")
	}
}

func TestCommentOnHiddenPostNotFound(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	post := s.createPost(t, alice, s.postValues("Tomorrow", s.now.Add(24*time.Hour), s.travel))

	resp, _ := bob.postForm(t, postURL(post.ID)+"comment/", url.Values{"text": {"early bird"}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 commenting on hidden post, got %d", resp.StatusCode)
	}

	resp, _ = alice.postForm(t, postURL(post.ID)+"comment/", url.Values{"text": {"note to self"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("author should comment on own scheduled post, got %d", resp.StatusCode)
	}
}

func TestEditProfile(t *testing.T) {
	s := newBlogSuite(t)
	alice := s.login(t, "alice")

	resp, body := alice.get(t, "/edit_profile/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `value="alice"`) {
		t.Fatalf("expected prefilled profile form, got %d", resp.StatusCode)
	}

	resp, body = alice.postForm(t, "/edit_profile/", url.Values{"username": {"bob"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "already exists") {
		t.Fatalf("expected username taken error, got %d", resp.StatusCode)
	}

	resp, body = alice.postForm(t, "/edit_profile/", url.Values{"username": {"alice"}, "email": {"not-an-email"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Enter a valid email address.") {
		t.Fatalf("expected email error, got %d", resp.StatusCode)
	}

	resp, _ = alice.postForm(t, "/edit_profile/", url.Values{
		"username":   {"alice_w"},
		"first_name": {"Alice"},
		"last_name":  {"Walker"},
		"email":      {"alice@example.com"},
	})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/profile/alice_w/" {
		t.Fatalf("expected redirect to new profile, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	var user db.User
	if err := s.db.First(&user, s.alice.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Username != "alice_w" || user.FullName() != "Alice Walker" || user.Email != "alice@example.com" {
		t.Fatalf("profile not updated: %+v", user)
	}

	var bob db.User
	if err := s.db.First(&bob, s.bob.ID).Error; err != nil || bob.Username != "bob" {
		t.Fatalf("other users must be untouched")
	}
}

func TestRegistrationAndLogin(t *testing.T) {
	s := newBlogSuite(t)
	client := newLocalClient(s.handler)

	resp, body := client.postForm(t, "/auth/registration/", url.Values{
		"username":  {"carol"},
		"password1": {"long-enough"},
		"password2": {"different"},
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "didn&#39;t match") {
		t.Fatalf("expected password mismatch error, got %d", resp.StatusCode)
	}

	resp, body = client.postForm(t, "/auth/registration/", url.Values{
		"username":  {"alice"},
		"password1": {"long-enough"},
		"password2": {"long-enough"},
	})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "already exists") {
		t.Fatalf("expected duplicate username error, got %d", resp.StatusCode)
	}

	resp, _ = client.postForm(t, "/auth/registration/", url.Values{
		"username":  {"carol"},
		"password1": {"long-enough"},
		"password2": {"long-enough"},
	})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/auth/login/" {
		t.Fatalf("expected redirect to login, got %d", resp.StatusCode)
	}

	resp, body = client.postForm(t, "/auth/login/", url.Values{"username": {"carol"}, "password": {"wrong-pass"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "correct username and password") {
		t.Fatalf("expected login failure message, got %d", resp.StatusCode)
	}

	resp, _ = client.postForm(t, "/auth/login/", url.Values{
		"username": {"carol"},
		"password": {"long-enough"},
		"next":     {"/posts/create/"},
	})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/posts/create/" {
		t.Fatalf("expected redirect to next, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	if resp, _ := client.get(t, "/posts/create/"); resp.StatusCode != http.StatusOK {
		t.Fatalf("logged in user should open create page, got %d", resp.StatusCode)
	}

	client.postForm(t, "/auth/logout/", url.Values{})
	if resp, _ := client.get(t, "/posts/create/"); resp.StatusCode != http.StatusFound {
		t.Fatalf("logged out user should be redirected, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsExternalNext(t *testing.T) {
	s := newBlogSuite(t)
	client := newLocalClient(s.handler)

	resp, _ := client.postForm(t, "/auth/login/", url.Values{
		"username": {"alice"},
		"password": {testPassword},
		"next":     {"//evil.example/"},
	})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %q", resp.Header.Get("Location"))
	}
}

func TestStaticAndErrorPages(t *testing.T) {
	s := newBlogSuite(t)
	client := newLocalClient(s.handler)

	for _, path := range []string{"/pages/about/", "/pages/rules/", "/auth/login/", "/auth/registration/"} {
		if resp, _ := client.get(t, path); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}

	resp, body := client.get(t, "/no/such/page/")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "does not exist") {
		t.Fatalf("expected custom 404 page, got %d", resp.StatusCode)
	}

	if resp, _ := client.get(t, "/posts/abc/"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for non numeric id, got %d", resp.StatusCode)
	}
}

func TestCSRFProtection(t *testing.T) {
	s := newBlogSuite(t, func(cfg *config.AppConfig) { cfg.CSRFEnabled = true })
	client := newLocalClient(s.handler)

	form := url.Values{"username": {"alice"}, "password": {testPassword}}
	resp, body := client.postForm(t, "/auth/login/", form)
	if resp.StatusCode != http.StatusForbidden || !strings.Contains(body, "CSRF verification failed") {
		t.Fatalf("expected 403 without token, got %d", resp.StatusCode)
	}

	_, page := client.get(t, "/auth/login/")
	match := regexp.MustCompile(`name="csrfmiddlewaretoken" value="([^"]+)"`).FindStringSubmatch(page)
	if match == nil {
		t.Fatalf("csrf token not rendered in login form")
	}

	form.Set("csrfmiddlewaretoken", match[1])
	resp, _ = client.postForm(t, "/auth/login/", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected login with token to succeed, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newBlogSuite(t)
	client := newLocalClient(s.handler)

	client.get(t, "/")
	resp, body := client.get(t, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `blogicum_http_requests_total{method="GET",route="/",status="200"}`) {
		t.Fatalf("expected request counter for index, got %s", body)
	}
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}
