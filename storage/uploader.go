package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"url"`
	ETag     string `json:"etag,omitempty"`
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// Папки для загружаемых изображений.
const (
	FolderBanners  = "banners"
	FolderLogos    = "logos"
	FolderAvatars  = "avatars"
	FolderStreams  = "live"
	MaxUploadBytes = 5 << 20
)

var (
	ErrUnsupportedFolder      = errors.New("unsupported upload folder")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrFileTooLarge           = errors.New("file is larger than 5MB")
)

var allowedFolders = map[string]bool{
	FolderBanners: true,
	FolderLogos:   true,
	FolderAvatars: true,
	FolderStreams: true,
}

var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// ObjectKey строит ключ вида <folder>/<uuid>-<slug><ext>.
func ObjectKey(folder, filename, contentType string) (string, error) {
	if !allowedFolders[folder] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFolder, folder)
	}
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}

	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	name := uuid.NewString()
	if s := slug.Make(base); s != "" && s != "." {
		if len(s) > 48 {
			s = s[:48]
		}
		name += "-" + s
	}
	return folder + "/" + name + ext, nil
}

// UploadImage проверяет тип файла и загружает его под сгенерированным ключом.
// Файл читается в память целиком: S3 API нужен поток с известной длиной.
func UploadImage(ctx context.Context, up FileUploader, folder, filename, contentType string, r io.Reader) (*UploadResult, error) {
	key, err := ObjectKey(folder, filename, contentType)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	return up.Upload(ctx, key, contentType, bytes.NewReader(data))
}
