package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	csrfSessionKey = "csrf_token"
	csrfContextKey = "__csrf_token"
	csrfFormField  = "csrfmiddlewaretoken"
	csrfHeader     = "X-CSRFToken"
)

// CSRFProtect keeps a per-session token and rejects unsafe requests that do
// not echo it back. With CSRF disabled the token is still issued.
func (a *API) CSRFProtect() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(csrfSessionKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(csrfSessionKey, token)
			if err := session.Save(); err != nil {
				a.logger.Warn("failed to persist csrf token", zap.Error(err))
			}
		}
		c.Set(csrfContextKey, token)

		if a.cfg.CSRFEnabled && !isSafeMethod(c.Request.Method) {
			sent := c.GetHeader(csrfHeader)
			if sent == "" {
				sent = c.PostForm(csrfFormField)
			}
			if subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				a.logger.Warn("csrf verification failed", zap.String("path", c.Request.URL.Path))
				a.render(c, http.StatusForbidden, "403csrf.html", gin.H{"title": "CSRF verification failed"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func csrfToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
