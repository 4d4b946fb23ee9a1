package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Dosada05/esports-arena/storage"
)

type UploadHandler struct {
	uploader storage.FileUploader
}

// NewUploadHandler принимает nil, если хранилище не настроено.
func NewUploadHandler(uploader storage.FileUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload godoc
// @Summary Загрузить изображение
// @Description Баннер турнира, логотип спонсора, аватар игрока или обложка трансляции.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение"
// @Param folder formData string true "banners | logos | avatars | live"
// @Success 201 {object} storage.UploadResult
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /admin/uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		serviceUnavailableResponse(w, r, "file storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		failedValidationResponse(w, r, map[string]string{"file": "must be provided"})
		return
	}
	defer file.Close()

	if header.Size > storage.MaxUploadBytes {
		failedValidationResponse(w, r, map[string]string{"file": "must not be larger than 5MB"})
		return
	}

	contentType, err := sniffContentType(file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	result, err := storage.UploadImage(r.Context(), h.uploader, r.FormValue("folder"), header.Filename, contentType, file)
	switch {
	case errors.Is(err, storage.ErrUnsupportedFolder):
		failedValidationResponse(w, r, map[string]string{"folder": err.Error()})
		return
	case errors.Is(err, storage.ErrUnsupportedContentType), errors.Is(err, storage.ErrFileTooLarge):
		failedValidationResponse(w, r, map[string]string{"file": err.Error()})
		return
	case err != nil:
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// sniffContentType определяет тип по первым 512 байтам и перематывает файл.
func sniffContentType(f io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
