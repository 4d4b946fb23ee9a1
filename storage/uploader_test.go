package storage

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUploader struct {
	key         string
	contentType string
	body        []byte
}

func (m *memUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*UploadResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.key, m.contentType, m.body = key, contentType, b
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memUploader) Delete(context.Context, string) error { return nil }

func (m *memUploader) GetPublicURL(key string) string { return "https://cdn.example.com/" + key }

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey(FolderBanners, "Summer Cup Banner.PNG", "image/png")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^banners/[0-9a-f-]{36}-summer-cup-banner\.png$`), key)

	key, err = ObjectKey(FolderLogos, "", "image/webp")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^logos/[0-9a-f-]{36}\.webp$`), key)
}

func TestObjectKey_Rejects(t *testing.T) {
	_, err := ObjectKey("../etc", "x.png", "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedFolder)

	_, err = ObjectKey(FolderBanners, "x.exe", "application/octet-stream")
	assert.ErrorIs(t, err, ErrUnsupportedContentType)
}

func TestUploadImage(t *testing.T) {
	up := &memUploader{}
	res, err := UploadImage(context.Background(), up, FolderAvatars, "me.jpg", "image/jpeg", bytes.NewReader([]byte("jpegdata")))
	require.NoError(t, err)
	assert.Equal(t, up.key, res.Key)
	assert.Equal(t, "image/jpeg", up.contentType)
	assert.Equal(t, []byte("jpegdata"), up.body)
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.Location)
}

func TestPublicURL(t *testing.T) {
	base, err := parseBaseURL("https://pub.example.r2.dev/assets")
	require.NoError(t, err)
	assert.Equal(t, "https://pub.example.r2.dev/assets/banners/a.png", publicURL(base, "banners/a.png"))
	assert.Equal(t, "https://pub.example.r2.dev/assets/banners/a.png", publicURL(base, "/banners/a.png"))
	assert.Empty(t, publicURL(base, ""))

	_, err = parseBaseURL("not a url")
	assert.Error(t, err)
}

func TestR2Config_Enabled(t *testing.T) {
	assert.False(t, R2Config{}.Enabled())
	assert.True(t, R2Config{AccountID: "a", AccessKeyID: "k", SecretAccessKey: "s", BucketName: "b", PublicBaseURL: "https://x"}.Enabled())
}

func TestUploadImage_TooLarge(t *testing.T) {
	up := &memUploader{}
	big := bytes.Repeat([]byte{0xff}, MaxUploadBytes+1)
	_, err := UploadImage(context.Background(), up, FolderBanners, "big.png", "image/png", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, up.key)
}
