package service

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/blogicum/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameInvalid    = errors.New("username may contain only letters, digits and @/./+/-/_")
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrEmailInvalid       = errors.New("email address is invalid")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	maxUsernameRunes  = 150
	MinPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidUsername reports whether s is an acceptable username.
func ValidUsername(s string) bool {
	return utf8.RuneCountInString(s) <= maxUsernameRunes && usernamePattern.MatchString(s)
}

// UserService covers registration, login and profile edits.
type UserService struct {
	db   *gorm.DB
	cost int
}

// ProfileInput lists the profile fields a user may change about themselves.
type ProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// NewUserService creates a UserService hashing with bcrypt.DefaultCost.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb, cost: bcrypt.DefaultCost}
}

// Register creates an account with a bcrypt hashed password.
func (s *UserService) Register(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if !ValidUsername(username) {
		return nil, ErrUsernameInvalid
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if err := s.ensureUsernameFree(username, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{Username: username, Password: string(hashed)}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks the credentials and returns the matching user.
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	user, err := s.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername fetches a user by username.
func (s *UserService) GetByUsername(username string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the profile of user id.
func (s *UserService) UpdateProfile(id uint, input ProfileInput) (*db.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if !ValidUsername(username) {
		return nil, ErrUsernameInvalid
	}
	email := strings.TrimSpace(input.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrEmailInvalid
		}
	}
	if err := s.ensureUsernameFree(username, id); err != nil {
		return nil, err
	}

	user.Username = username
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = email

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// Delete removes a user together with their posts and comments.
func (s *UserService) Delete(username string) error {
	user, err := s.GetByUsername(username)
	if err != nil {
		return err
	}
	return db.DeleteRows(s.db, "users", user.ID)
}

func (s *UserService) ensureUsernameFree(username string, exceptID uint) error {
	var n int64
	if err := s.db.Model(&db.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	return nil
}
