package handler

import (
	"errors"
	"net/http"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// postFormPage 汇总文章表单页面需要的数据
type postFormPage struct {
	Title  string
	Action string
	Post   *db.Post
	Form   postForm
	Errors formErrors
}

// ShowCreatePost 渲染新建文章页面
func (a *API) ShowCreatePost(c *gin.Context) {
	a.renderPostForm(c, postFormPage{
		Title:  "New post",
		Action: "/posts/create/",
		Form:   postForm{PubDate: a.posts.Now().Local().Format(pubDateInputLayout), IsPublished: true},
	})
}

// CreatePost 创建新文章，作者始终为当前登录用户
func (a *API) CreatePost(c *gin.Context) {
	user := currentUser(c)
	page := postFormPage{Title: "New post", Action: "/posts/create/"}

	input, errs := a.bindPostInput(c, &page.Form)
	if errs != nil {
		page.Errors = errs
		a.renderPostForm(c, page)
		return
	}

	if _, err := a.posts.Create(user.ID, input); err != nil {
		a.discardUpload(input.Image)
		if fieldErrs, ok := postErrors(err); ok {
			page.Errors = fieldErrs
			a.renderPostForm(c, page)
			return
		}
		a.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// ShowEditPost renders the edit form for the author of the post.
func (a *API) ShowEditPost(c *gin.Context) {
	post, ok := a.ownedPost(c)
	if !ok {
		return
	}

	a.renderPostForm(c, postFormPage{
		Title:  "Edit post",
		Action: editPostURL(post.ID),
		Post:   post,
		Form:   postFormFromModel(post),
	})
}

// UpdatePost 保存文章修改
func (a *API) UpdatePost(c *gin.Context) {
	post, ok := a.ownedPost(c)
	if !ok {
		return
	}

	page := postFormPage{Title: "Edit post", Action: editPostURL(post.ID), Post: post}
	input, errs := a.bindPostInput(c, &page.Form)
	if errs != nil {
		page.Errors = errs
		a.renderPostForm(c, page)
		return
	}

	if _, err := a.posts.Update(post.ID, input); err != nil {
		a.discardUpload(input.Image)
		if fieldErrs, ok := postErrors(err); ok {
			page.Errors = fieldErrs
			a.renderPostForm(c, page)
			return
		}
		a.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// ShowDeletePost asks the author to confirm the deletion.
func (a *API) ShowDeletePost(c *gin.Context) {
	post, ok := a.ownedPost(c)
	if !ok {
		return
	}

	a.render(c, http.StatusOK, "post_delete.html", gin.H{
		"title": "Delete post",
		"post":  post,
	})
}

// DeletePost 删除文章及其全部评论
func (a *API) DeletePost(c *gin.Context) {
	post, ok := a.ownedPost(c)
	if !ok {
		return
	}

	if err := a.posts.Delete(post.ID); err != nil {
		a.fail(c, err)
		return
	}
	a.logger.Info("post deleted", zap.Uint("post_id", post.ID), zap.Uint("author_id", post.AuthorID))

	c.Redirect(http.StatusFound, profileURL(currentUser(c).Username))
}

func (a *API) ownedPost(c *gin.Context) (*db.Post, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return nil, false
	}
	return requireOwner(a, c, id, func() (*db.Post, error) {
		return a.posts.Get(id)
	})
}

// bindPostInput binds the form into dst and stores an uploaded image, if any.
func (a *API) bindPostInput(c *gin.Context, dst *postForm) (service.PostInput, formErrors) {
	if errs := bindForm(c, dst); errs != nil {
		return service.PostInput{}, errs
	}

	input, errs := dst.toInput()
	if errs != nil {
		return service.PostInput{}, errs
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		src, err := file.Open()
		if err != nil {
			errs := formErrors{}
			errs.Add("image", "The uploaded file could not be read.")
			return service.PostInput{}, errs
		}
		defer src.Close()

		name, err := a.media.SavePostImage(src)
		if err != nil {
			if fieldErrs, ok := postErrors(err); ok {
				return service.PostInput{}, fieldErrs
			}
			a.logger.Error("failed to store post image", zap.Error(err))
			errs := formErrors{}
			errs.Add("image", "The uploaded image could not be saved.")
			return service.PostInput{}, errs
		}
		input.Image = name
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		errs := formErrors{}
		errs.Add("image", "The uploaded file could not be read.")
		return service.PostInput{}, errs
	}

	return input, nil
}

func (a *API) discardUpload(name string) {
	if err := a.media.Remove(name); err != nil {
		a.logger.Warn("failed to discard upload", zap.String("image", name), zap.Error(err))
	}
}

func (a *API) renderPostForm(c *gin.Context, page postFormPage) {
	categories, err := a.categories.ListAll()
	if err != nil {
		a.fail(c, err)
		return
	}
	locations, err := a.locations.ListAll()
	if err != nil {
		a.fail(c, err)
		return
	}

	errs := page.Errors
	if errs == nil {
		errs = formErrors{}
	}
	a.render(c, http.StatusOK, "create.html", gin.H{
		"title":      page.Title,
		"action":     page.Action,
		"post":       page.Post,
		"form":       page.Form,
		"errors":     errs,
		"categories": categories,
		"locations":  locations,
	})
}

func editPostURL(id uint) string {
	return postURL(id) + "edit/"
}
