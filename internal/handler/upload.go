package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"barberbook/internal/apperr"
)

// uploadField is the only multipart field the image endpoint accepts.
const uploadField = "image"

// allowedImageExts are the file extensions accepted for shop images.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadBarbershopImage handles POST /api/barbershops/{id}/image.
// Runs behind Require + RequireOwnership(LocatorBarbershop).
//
// The multipart payload must carry exactly one file under the "image" field.
// Every violation (oversized file, more than one file, a file under any other
// field name) is typed at this boundary so the classifier renders the
// matching 400 without inspecting multipart internals.
func (s *Server) UploadBarbershopImage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(s.uploads.MaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respond.Error(w, r, apperr.Wrap(apperr.KindFileTooLarge, "File too large", err))
			return
		}
		s.respond.Error(w, r, apperr.Wrap(apperr.KindValidationFailed, "Invalid multipart payload", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers, err := s.validateUpload(r)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}
	header := headers[0]

	url, err := s.storeUpload(header)
	if err != nil {
		s.respond.Error(w, r, err)
		return
	}

	if err := s.shops.SetImageURL(r.Context(), id, url); err != nil {
		s.respond.Error(w, r, err)
		return
	}

	s.respond.OK(w, http.StatusOK, map[string]string{"image_url": url})
}

// validateUpload enforces the field-name, count, and size limits on the
// parsed multipart form.
func (s *Server) validateUpload(r *http.Request) ([]*multipart.FileHeader, error) {
	form := r.MultipartForm

	for field := range form.File {
		if field != uploadField {
			return nil, apperr.New(apperr.KindUnexpectedFile, "Unexpected file field")
		}
	}

	headers := form.File[uploadField]
	switch {
	case len(headers) == 0:
		return nil, apperr.New(apperr.KindValidationFailed, "image file is required")
	case len(headers) > 1:
		return nil, apperr.New(apperr.KindTooManyFiles, "Too many files")
	}

	header := headers[0]
	if header.Size > s.uploads.MaxBytes {
		return nil, apperr.New(apperr.KindFileTooLarge, "File too large")
	}
	if !allowedImageExts[filepath.Ext(header.Filename)] {
		return nil, apperr.New(apperr.KindValidationFailed, "image must be a jpg, jpeg, png, or webp file")
	}

	return headers, nil
}

// storeUpload writes the uploaded file under a generated name and returns
// the public URL path. The original filename never touches the filesystem.
func (s *Server) storeUpload(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("handler.UploadBarbershopImage: open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.uploads.Dir, 0o755); err != nil {
		return "", fmt.Errorf("handler.UploadBarbershopImage: mkdir: %w", err)
	}

	name := uuid.NewString() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(s.uploads.Dir, name))
	if err != nil {
		return "", fmt.Errorf("handler.UploadBarbershopImage: create: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("handler.UploadBarbershopImage: write: %w", err)
	}

	return "/uploads/" + name, nil
}
