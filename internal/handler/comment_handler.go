package handler

import (
	"errors"
	"net/http"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
)

// AddComment 为可见文章添加评论，无论成功与否都回到文章详情页
func (a *API) AddComment(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	user := currentUser(c)
	post, err := a.posts.GetForViewer(postID, user.ID)
	if err != nil {
		a.fail(c, err)
		return
	}

	var form commentForm
	if errs := bindForm(c, &form); errs != nil {
		a.addFlash(c, "Comment not saved: "+errs.First())
		c.Redirect(http.StatusFound, postURL(post.ID))
		return
	}

	if _, err := a.comments.Create(post.ID, user.ID, form.Text); err != nil {
		if !errors.Is(err, service.ErrCommentTextMissing) {
			a.fail(c, err)
			return
		}
		a.addFlash(c, "Comment not saved: this field is required.")
	}

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// ShowEditComment renders the comment edit form for its author.
func (a *API) ShowEditComment(c *gin.Context) {
	comment, ok := a.ownedComment(c)
	if !ok {
		return
	}

	a.renderComment(c, comment, commentForm{Text: comment.Text}, nil, false)
}

// UpdateComment 保存评论修改
func (a *API) UpdateComment(c *gin.Context) {
	comment, ok := a.ownedComment(c)
	if !ok {
		return
	}

	var form commentForm
	if errs := bindForm(c, &form); errs != nil {
		a.renderComment(c, comment, form, errs, false)
		return
	}

	if _, err := a.comments.Update(comment.ID, form.Text); err != nil {
		if errors.Is(err, service.ErrCommentTextMissing) {
			errs := formErrors{}
			errs.Add("text", "This field is required.")
			a.renderComment(c, comment, form, errs, false)
			return
		}
		a.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

// ShowDeleteComment asks the author to confirm the deletion.
func (a *API) ShowDeleteComment(c *gin.Context) {
	comment, ok := a.ownedComment(c)
	if !ok {
		return
	}

	a.renderComment(c, comment, commentForm{}, nil, true)
}

// DeleteComment 删除评论
func (a *API) DeleteComment(c *gin.Context) {
	comment, ok := a.ownedComment(c)
	if !ok {
		return
	}

	if err := a.comments.Delete(comment.ID); err != nil {
		a.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, postURL(comment.PostID))
}

// ownedComment resolves the comment named in the URL. It must sit under the
// post in the same URL.
func (a *API) ownedComment(c *gin.Context) (*db.Comment, bool) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return nil, false
	}
	commentID, err := parseUintParam(c, "cid")
	if err != nil {
		a.NotFound(c)
		return nil, false
	}

	return requireOwner(a, c, postID, func() (*db.Comment, error) {
		comment, err := a.comments.Get(commentID)
		if err != nil {
			return nil, err
		}
		if comment.PostID != postID {
			return nil, service.ErrCommentNotFound
		}
		return comment, nil
	})
}

func (a *API) renderComment(c *gin.Context, comment *db.Comment, form commentForm, errs formErrors, deleting bool) {
	if errs == nil {
		errs = formErrors{}
	}
	title := "Edit comment"
	if deleting {
		title = "Delete comment"
	}
	a.render(c, http.StatusOK, "comment.html", gin.H{
		"title":    title,
		"comment":  comment,
		"form":     form,
		"errors":   errs,
		"deleting": deleting,
	})
}
