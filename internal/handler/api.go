package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	cfg        config.AppConfig
	logger     *zap.Logger
	posts      *service.PostService
	comments   *service.CommentService
	categories *service.CategoryService
	locations  *service.LocationService
	users      *service.UserService
	media      *service.MediaService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidators()

	return &API{
		db:         gdb,
		cfg:        cfg,
		logger:     logger,
		posts:      service.NewPostService(gdb, cfg.SortField),
		comments:   service.NewCommentService(gdb),
		categories: service.NewCategoryService(gdb),
		locations:  service.NewLocationService(gdb),
		users:      service.NewUserService(gdb),
		media:      service.NewMediaService(cfg.MediaDir, cfg.MediaURLPath),
	}
}

// Posts exposes the post service, mainly so callers can swap its clock.
func (a *API) Posts() *service.PostService {
	return a.posts
}

// TemplateFuncs returns the helpers the page templates rely on.
func (a *API) TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"media": a.media.URL,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2 Jan 2006 15:04")
		},
		"linebreaks": linebreaks,
		"truncate": func(s string, limit int) string {
			runes := []rune(s)
			if len(runes) <= limit {
				return s
			}
			return string(runes[:limit]) + "…"
		},
		"postURL":    postURL,
		"profileURL": profileURL,
	}
}

func linebreaks(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// render 在向模板渲染时自动附加当前用户、CSRF 令牌等公共数据。
func (a *API) render(c *gin.Context, status int, name string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}
	if _, exists := payload["errors"]; !exists {
		payload["errors"] = formErrors{}
	}
	if _, exists := payload["title"]; !exists {
		payload["title"] = "Blogicum"
	}
	payload["currentUser"] = currentUser(c)
	payload["csrfToken"] = csrfToken(c)
	payload["year"] = time.Now().Year()

	c.HTML(status, name, payload)
}

// NotFound renders the 404 page. It also serves as the NoRoute handler.
func (a *API) NotFound(c *gin.Context) {
	a.render(c, http.StatusNotFound, "404.html", gin.H{"title": "Page not found"})
	c.Abort()
}

// ServerError renders the 500 page.
func (a *API) ServerError(c *gin.Context) {
	a.render(c, http.StatusInternalServerError, "500.html", gin.H{"title": "Server error"})
	c.Abort()
}

// fail maps a service error to the matching error page.
func (a *API) fail(c *gin.Context, err error) {
	if isNotFound(err) {
		a.NotFound(c)
		return
	}
	c.Error(err)
	a.logger.Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	a.ServerError(c)
}

func isNotFound(err error) bool {
	for _, target := range []error{
		service.ErrPostNotFound,
		service.ErrCommentNotFound,
		service.ErrUserNotFound,
		service.ErrCategoryNotFound,
		service.ErrPageOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
