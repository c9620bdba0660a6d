package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ownable interface {
	IsOwnedBy(userID uint) bool
}

// requireOwner resolves the target of a mutation and lets the request through
// only when the current user authored it. Missing targets render 404; anyone
// else is sent back to the post page untouched.
func requireOwner[T ownable](a *API, c *gin.Context, postID uint, resolve func() (T, error)) (T, bool) {
	target, err := resolve()
	if err != nil {
		var zero T
		a.fail(c, err)
		return zero, false
	}
	if !target.IsOwnedBy(viewerID(c)) {
		c.Redirect(http.StatusFound, postURL(postID))
		c.Abort()
		return target, false
	}
	return target, true
}
