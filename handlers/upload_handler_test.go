package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/storage"
)

type memUploader struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.objects[key] = b
	m.types[key] = contentType
	return &storage.UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memUploader) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func multipartBody(t *testing.T, folder, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if folder != "" {
		require.NoError(t, mw.WriteField("folder", folder))
	}
	if content != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload_NotConfigured(t *testing.T) {
	h := NewUploadHandler(nil)
	body, ct := multipartBody(t, storage.FolderBanners, "banner.png", pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpload(t *testing.T) {
	up := &memUploader{objects: map[string][]byte{}, types: map[string]string{}}
	h := NewUploadHandler(up)

	tests := []struct {
		name    string
		folder  string
		content []byte
		want    int
	}{
		{"png banner", storage.FolderBanners, pngHeader, http.StatusCreated},
		{"unknown folder", "secrets", pngHeader, http.StatusUnprocessableEntity},
		{"not an image", storage.FolderLogos, []byte("just some text"), http.StatusUnprocessableEntity},
		{"missing file", storage.FolderLogos, nil, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.folder, "Team Logo.png", tt.content)
			req := httptest.NewRequest(http.MethodPost, "/admin/uploads", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()

			h.Upload(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	require.Len(t, up.objects, 1)
	for key, data := range up.objects {
		assert.True(t, strings.HasPrefix(key, storage.FolderBanners+"/"))
		assert.True(t, strings.HasSuffix(key, "-team-logo.png"))
		assert.Equal(t, "image/png", up.types[key])
		assert.Equal(t, pngHeader, data)
	}
}
