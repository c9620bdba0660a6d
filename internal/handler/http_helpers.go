package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
)

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parsePageParam reads ?page=. Missing means the first page, "last" the final
// one; anything else that is not a positive number is rejected.
func parsePageParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("page"))
	switch raw {
	case "":
		return 1, true
	case "last":
		return service.LastPage, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

// safeRedirectTarget accepts only local absolute paths.
func safeRedirectTarget(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
