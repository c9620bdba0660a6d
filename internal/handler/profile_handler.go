package handler

import (
	"errors"
	"net/http"

	"github.com/blogicum/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowEditProfile 渲染当前用户的资料编辑页面
func (a *API) ShowEditProfile(c *gin.Context) {
	user := currentUser(c)
	a.renderProfileForm(c, profileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}, nil)
}

// UpdateProfile 保存当前用户的资料，只能修改自己的账号
func (a *API) UpdateProfile(c *gin.Context) {
	user := currentUser(c)

	var form profileForm
	if errs := bindForm(c, &form); errs != nil {
		a.renderProfileForm(c, form, errs)
		return
	}

	updated, err := a.users.UpdateProfile(user.ID, service.ProfileInput{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		errs := formErrors{}
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			errs.Add("username", "A user with that username already exists.")
		case errors.Is(err, service.ErrUsernameInvalid):
			errs.Add("username", usernameMessage)
		case errors.Is(err, service.ErrEmailInvalid):
			errs.Add("email", "Enter a valid email address.")
		default:
			a.fail(c, err)
			return
		}
		a.renderProfileForm(c, form, errs)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUsernameKey, updated.Username)
	if err := session.Save(); err != nil {
		a.logger.Warn("failed to refresh session username", zap.Error(err))
	}

	c.Redirect(http.StatusFound, profileURL(updated.Username))
}

func (a *API) renderProfileForm(c *gin.Context, form profileForm, errs formErrors) {
	if errs == nil {
		errs = formErrors{}
	}
	a.render(c, http.StatusOK, "user.html", gin.H{
		"title":  "Edit profile",
		"form":   form,
		"errors": errs,
	})
}
