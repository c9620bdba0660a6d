package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	nonFieldErrors     = "__all__"
	usernameMessage    = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	pubDateInputLayout = "2006-01-02T15:04"
)

var validatorsOnce sync.Once

// registerValidators names validation errors after form fields and adds the
// username rule shared with the user service.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return service.ValidUsername(fl.Field().String())
		})
	})
}

// formErrors maps a form field to its first error message.
type formErrors map[string]string

// Add records msg for field unless the field already has an error.
func (e formErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// First returns any one message, preferring the non-field error.
func (e formErrors) First() string {
	if msg, ok := e[nonFieldErrors]; ok {
		return msg
	}
	for _, msg := range e {
		return msg
	}
	return ""
}

// bindForm binds the request form into dst. It returns nil when the input is
// valid and field-level messages otherwise.
func bindForm(c *gin.Context, dst any) formErrors {
	err := c.ShouldBind(dst)
	if err == nil {
		return nil
	}

	errs := formErrors{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			errs.Add(fe.Field(), validationMessage(fe))
		}
		return errs
	}
	errs.Add(nonFieldErrors, "The submitted form could not be read.")
	return errs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return usernameMessage
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

// postForm carries the editable post fields. The author is deliberately absent.
type postForm struct {
	Title       string `form:"title" binding:"required,max=256"`
	Text        string `form:"text" binding:"required"`
	PubDate     string `form:"pub_date" binding:"required"`
	Category    uint   `form:"category"`
	Location    uint   `form:"location"`
	IsPublished bool   `form:"is_published"`
	ClearImage  bool   `form:"image_clear"`
}

func postFormFromModel(post *db.Post) postForm {
	form := postForm{
		Title:       post.Title,
		Text:        post.Text,
		PubDate:     post.PubDate.Local().Format(pubDateInputLayout),
		IsPublished: post.IsPublished,
	}
	if post.CategoryID != nil {
		form.Category = *post.CategoryID
	}
	if post.LocationID != nil {
		form.Location = *post.LocationID
	}
	return form
}

func (f postForm) toInput() (service.PostInput, formErrors) {
	pubDate, err := parsePubDate(f.PubDate)
	if err != nil {
		errs := formErrors{}
		errs.Add("pub_date", "Enter a valid date/time.")
		return service.PostInput{}, errs
	}

	input := service.PostInput{
		Title:       f.Title,
		Text:        f.Text,
		PubDate:     pubDate,
		IsPublished: f.IsPublished,
		ClearImage:  f.ClearImage,
	}
	if f.Category != 0 {
		id := f.Category
		input.CategoryID = &id
	}
	if f.Location != 0 {
		id := f.Location
		input.LocationID = &id
	}
	return input, nil
}

var pubDateLayouts = []string{
	pubDateInputLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePubDate accepts RFC 3339 or the browser datetime-local format, the
// latter read in the server's local zone.
func parsePubDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid publication date %q", raw)
}

// postErrors turns a post service validation error into a field error.
func postErrors(err error) (formErrors, bool) {
	errs := formErrors{}
	switch {
	case errors.Is(err, service.ErrPostTitleMissing):
		errs.Add("title", "This field is required.")
	case errors.Is(err, service.ErrPostTitleTooLong):
		errs.Add("title", "Ensure this value has at most 256 characters.")
	case errors.Is(err, service.ErrPostTextMissing):
		errs.Add("text", "This field is required.")
	case errors.Is(err, service.ErrPubDateMissing):
		errs.Add("pub_date", "This field is required.")
	case errors.Is(err, service.ErrCategoryNotFound):
		errs.Add("category", "Select a valid choice. That choice is not one of the available choices.")
	case errors.Is(err, service.ErrLocationNotFound):
		errs.Add("location", "Select a valid choice. That choice is not one of the available choices.")
	case errors.Is(err, service.ErrImageInvalid):
		errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	case errors.Is(err, service.ErrImageTooLarge):
		errs.Add("image", "The uploaded image is too large.")
	default:
		return nil, false
	}
	return errs, true
}

type commentForm struct {
	Text string `form:"text" binding:"required"`
}

type profileForm struct {
	Username  string `form:"username" binding:"required,max=150,username"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
}
