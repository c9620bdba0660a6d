package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	currentUserKey     = "__current_user"
	loginPath          = "/auth/login/"
)

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type registrationForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

// CurrentUser 从会话中加载当前用户；会话指向已删除的用户时清空会话。
func (a *API) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(sessionUserIDKey).(uint); ok && userID != 0 {
			user, err := a.users.Get(userID)
			switch {
			case err == nil:
				c.Set(currentUserKey, user)
			case errors.Is(err, service.ErrUserNotFound):
				session.Delete(sessionUserIDKey)
				session.Delete(sessionUsernameKey)
				if err := session.Save(); err != nil {
					a.logger.Warn("failed to clear stale session", zap.Error(err))
				}
			default:
				a.fail(c, err)
				return
			}
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *db.User {
	if value, exists := c.Get(currentUserKey); exists {
		if user, ok := value.(*db.User); ok {
			return user
		}
	}
	return nil
}

// viewerID returns the id of the logged in user, or 0 for anonymous visitors.
func viewerID(c *gin.Context) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// AuthRequired 是一个简单的认证中间件，未登录时跳转到登录页
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ShowLogin 渲染登录页面
func (a *API) ShowLogin(c *gin.Context) {
	a.render(c, http.StatusOK, "login.html", gin.H{
		"title": "Log in",
		"form":  loginForm{Next: c.Query("next")},
	})
}

// Login 处理用户登录请求
func (a *API) Login(c *gin.Context) {
	var form loginForm
	if errs := bindForm(c, &form); errs != nil {
		a.render(c, http.StatusOK, "login.html", gin.H{"title": "Log in", "form": form, "errors": errs})
		return
	}

	user, err := a.users.Authenticate(form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			a.fail(c, err)
			return
		}
		errs := formErrors{}
		errs.Add(nonFieldErrors, "Please enter a correct username and password.")
		a.render(c, http.StatusOK, "login.html", gin.H{"title": "Log in", "form": form, "errors": errs})
		return
	}

	if err := a.startSession(c, user); err != nil {
		a.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, safeRedirectTarget(form.Next, "/"))
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		a.logger.Warn("failed to clear session", zap.Error(err))
	}
	c.Set(currentUserKey, (*db.User)(nil))
	a.render(c, http.StatusOK, "logged_out.html", gin.H{"title": "Logged out"})
}

// ShowRegistration 渲染注册页面
func (a *API) ShowRegistration(c *gin.Context) {
	a.render(c, http.StatusOK, "registration.html", gin.H{
		"title": "Registration",
		"form":  registrationForm{},
	})
}

// Register creates an account and sends the visitor to the login page.
func (a *API) Register(c *gin.Context) {
	var form registrationForm
	errs := bindForm(c, &form)
	if errs == nil {
		_, err := a.users.Register(form.Username, form.Password1)
		switch {
		case err == nil:
			c.Redirect(http.StatusFound, loginPath)
			return
		case errors.Is(err, service.ErrUsernameTaken):
			errs = formErrors{}
			errs.Add("username", "A user with that username already exists.")
		case errors.Is(err, service.ErrUsernameInvalid):
			errs = formErrors{}
			errs.Add("username", usernameMessage)
		case errors.Is(err, service.ErrPasswordTooShort):
			errs = formErrors{}
			errs.Add("password1", "This password is too short.")
		default:
			a.fail(c, err)
			return
		}
	}

	form.Password1, form.Password2 = "", ""
	a.render(c, http.StatusOK, "registration.html", gin.H{
		"title":  "Registration",
		"form":   form,
		"errors": errs,
	})
}

func (a *API) startSession(c *gin.Context, user *db.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	return session.Save()
}
