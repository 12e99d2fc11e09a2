package utils

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/princinho/storefront/config"
)

const defaultMaxUploadMB = 5

var defaultImageMimeTypes = []string{"image/jpeg", "image/png", "image/webp"}

// FileValidationError reports an upload rejected for its size or content.
type FileValidationError struct {
	msg string
}

func (e *FileValidationError) Error() string { return e.msg }

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

// NewImageValidator accepts the mime types in cfg (images by default) and the
// extensions registered for them.
func NewImageValidator(cfg config.StorageConfig) *FileValidator {
	mimes := cfg.AllowedMimeTypes
	if len(mimes) == 0 {
		mimes = defaultImageMimeTypes
	}

	allowedExt := make(map[string]bool)
	allowedMime := make(map[string]bool)
	for _, m := range mimes {
		m = strings.TrimSpace(strings.ToLower(m))
		if m == "" {
			continue
		}
		allowedMime[m] = true
		exts, _ := mime.ExtensionsByType(m)
		for _, ext := range exts {
			allowedExt[ext] = true
		}
	}
	if allowedMime["image/jpeg"] {
		allowedExt[".jpg"] = true
		allowedExt[".jpeg"] = true
	}
	if allowedMime["image/png"] {
		allowedExt[".png"] = true
	}
	if allowedMime["image/webp"] {
		allowedExt[".webp"] = true
	}

	sizeMB := cfg.MaxUploadSizeMB
	if sizeMB <= 0 {
		sizeMB = defaultMaxUploadMB
	}

	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(sizeMB) << 20,
	}
}

func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", &FileValidationError{msg: fmt.Sprintf("file too large (max %d MB)", v.maxSize>>20)}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return "", &FileValidationError{msg: "invalid file extension"}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file header")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer[:n]))
	if !v.allowedMime[detectedMime] {
		return "", &FileValidationError{msg: "invalid file type"}
	}

	return detectedMime, nil
}
