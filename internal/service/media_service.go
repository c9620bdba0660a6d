package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrImageInvalid  = errors.New("uploaded file is not a supported image")
	ErrImageTooLarge = errors.New("uploaded image is too large")
)

const (
	postImageDir      = "post_images"
	maxPostImageBytes = 10 << 20
)

var imageExtensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
}

// MediaService stores uploaded post images below the media root.
type MediaService struct {
	dir     string
	urlPath string
	now     func() time.Time
}

// NewMediaService creates a MediaService writing into dir and served from urlPath.
func NewMediaService(dir, urlPath string) *MediaService {
	return &MediaService{
		dir:     dir,
		urlPath: strings.TrimRight(urlPath, "/"),
		now:     time.Now,
	}
}

// SavePostImage checks that r holds a png, jpeg, gif or webp image and writes it
// to post_images/<date>-<uuid><ext>. The returned name is relative to the media root.
func (s *MediaService) SavePostImage(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPostImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxPostImageBytes {
		return "", ErrImageTooLarge
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrImageInvalid
	}
	ext, ok := imageExtensions[format]
	if !ok {
		return "", ErrImageInvalid
	}

	targetDir := filepath.Join(s.dir, postImageDir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	filename := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(targetDir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}

	return path.Join(postImageDir, filename), nil
}

// URL maps a stored media name to its public URL. Empty names map to "".
func (s *MediaService) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.urlPath + "/" + strings.TrimLeft(name, "/")
}

// Remove deletes a stored media file. Missing files are not an error.
func (s *MediaService) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}
	return nil
}
