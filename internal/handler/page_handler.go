package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// About 渲染关于页面
func (a *API) About(c *gin.Context) {
	a.render(c, http.StatusOK, "about.html", gin.H{"title": "About"})
}

// Rules 渲染站点规则页面
func (a *API) Rules(c *gin.Context) {
	a.render(c, http.StatusOK, "rules.html", gin.H{"title": "Rules"})
}
