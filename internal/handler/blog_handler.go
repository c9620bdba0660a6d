package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Index 展示首页的公开文章列表
func (a *API) Index(c *gin.Context) {
	page, ok := parsePageParam(c)
	if !ok {
		a.NotFound(c)
		return
	}

	result, err := a.posts.ListVisible(page, a.cfg.PageSize)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "index.html", gin.H{
		"title":    "Blogicum",
		"posts":    result.Posts,
		"page":     result.Page,
		"pageBase": "/",
	})
}

// CategoryPosts lists the public posts of a published category.
func (a *API) CategoryPosts(c *gin.Context) {
	category, err := a.categories.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		a.fail(c, err)
		return
	}

	page, ok := parsePageParam(c)
	if !ok {
		a.NotFound(c)
		return
	}

	result, err := a.posts.ListByCategory(category.ID, page, a.cfg.PageSize)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "category.html", gin.H{
		"title":    category.Title,
		"category": category,
		"posts":    result.Posts,
		"page":     result.Page,
		"pageBase": "/category/" + category.Slug + "/",
	})
}

// Profile 展示用户主页；作者本人可以看到自己全部的文章
func (a *API) Profile(c *gin.Context) {
	profile, err := a.users.GetByUsername(c.Param("username"))
	if err != nil {
		a.fail(c, err)
		return
	}

	page, ok := parsePageParam(c)
	if !ok {
		a.NotFound(c)
		return
	}

	isOwner := viewerID(c) == profile.ID
	result, err := a.posts.ListByAuthor(profile.ID, isOwner, page, a.cfg.PageSize)
	if err != nil {
		a.fail(c, err)
		return
	}

	a.render(c, http.StatusOK, "profile.html", gin.H{
		"title":    profile.FullName(),
		"profile":  profile,
		"isOwner":  isOwner,
		"posts":    result.Posts,
		"page":     result.Page,
		"pageBase": profileURL(profile.Username),
	})
}

// PostDetail renders a post with its comments and a blank comment form.
func (a *API) PostDetail(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	post, err := a.posts.GetForViewer(id, viewerID(c))
	if err != nil {
		a.fail(c, err)
		return
	}

	comments, err := a.comments.ListForPost(post.ID)
	if err != nil {
		a.fail(c, err)
		return
	}

	body, err := renderMarkdown(post.Text)
	if err != nil {
		a.logger.Warn("markdown render failed", zap.Uint("post_id", post.ID), zap.Error(err))
		body = linebreaks(post.Text)
	}

	a.render(c, http.StatusOK, "detail.html", gin.H{
		"title":    post.Title,
		"post":     post,
		"body":     body,
		"comments": comments,
		"form":     commentForm{},
		"messages": a.popFlashes(c),
		"isOwner":  post.IsOwnedBy(viewerID(c)),
	})
}

func (a *API) addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		a.logger.Warn("failed to store flash message", zap.Error(err))
	}
}

func (a *API) popFlashes(c *gin.Context) []string {
	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		a.logger.Warn("failed to clear flash messages", zap.Error(err))
	}

	messages := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if msg, ok := flash.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
