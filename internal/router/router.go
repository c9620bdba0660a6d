package router

import (
	"html/template"
	"net/http"

	"github.com/blogicum/internal/config"
	"github.com/blogicum/internal/handler"
	"github.com/blogicum/internal/logging"
	"github.com/blogicum/internal/metrics"
	"github.com/blogicum/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionMaxAge = 14 * 24 * 60 * 60

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig, logger *zap.Logger) (*gin.Engine, *handler.API) {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := handler.NewAPI(gdb, cfg, logger)
	httpMetrics := metrics.NewHTTP()

	r := gin.New()
	r.Use(logging.Requests(logger))
	r.Use(logging.Recovery(logger, api.ServerError))
	r.Use(httpMetrics.Middleware())

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("blogicum_session", store))
	r.Use(api.CurrentUser())

	// 加载模板
	r.SetHTMLTemplate(template.Must(web.Templates(api.TemplateFuncs())))

	// 上传文件与监控指标不需要 CSRF 校验
	r.Static(cfg.MediaURLPath, cfg.MediaDir)
	r.GET("/metrics", httpMetrics.Handler())

	r.NoRoute(api.NotFound)

	site := r.Group("")
	site.Use(api.CSRFProtect())
	{
		site.GET("/", api.Index)
		site.GET("/category/:slug/", api.CategoryPosts)
		site.GET("/profile/:username/", api.Profile)
		site.GET("/posts/:id/", api.PostDetail)

		// 编辑与删除文章由作者校验兜底，匿名访问同样会被重定向回详情页
		site.GET("/posts/:id/edit/", api.ShowEditPost)
		site.POST("/posts/:id/edit/", api.UpdatePost)
		site.GET("/posts/:id/delete/", api.ShowDeletePost)
		site.POST("/posts/:id/delete/", api.DeletePost)

		site.GET("/pages/about/", api.About)
		site.GET("/pages/rules/", api.Rules)

		site.GET("/auth/login/", api.ShowLogin)
		site.POST("/auth/login/", api.Login)
		site.GET("/auth/logout/", api.Logout)
		site.POST("/auth/logout/", api.Logout)
		site.GET("/auth/registration/", api.ShowRegistration)
		site.POST("/auth/registration/", api.Register)

		// 需要登录的路由
		auth := site.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/posts/create/", api.ShowCreatePost)
			auth.POST("/posts/create/", api.CreatePost)
			auth.POST("/posts/:id/comment/", api.AddComment)
			auth.GET("/posts/:id/edit_comment/:cid/", api.ShowEditComment)
			auth.POST("/posts/:id/edit_comment/:cid/", api.UpdateComment)
			auth.GET("/posts/:id/delete_comment/:cid/", api.ShowDeleteComment)
			auth.POST("/posts/:id/delete_comment/:cid/", api.DeleteComment)
			auth.GET("/edit_profile/", api.ShowEditProfile)
			auth.POST("/edit_profile/", api.UpdateProfile)
		}
	}

	return r, api
}
