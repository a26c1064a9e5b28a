package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartBody builds a multipart payload of (field, filename, content) parts.
func multipartBody(t *testing.T, parts ...[3]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, p := range parts {
		fw, err := w.CreateFormFile(p[0], p[1])
		require.NoError(t, err)
		_, err = fw.Write([]byte(p[2]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (f *fixture) doUpload(t *testing.T, target, bearer string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadImage_OK(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(1))
	f.addShop(shopFixture(10, 1))
	var savedURL string
	f.shops.setImageURL = func(_ context.Context, id int64, url string) error {
		assert.Equal(t, int64(10), id)
		savedURL = url
		return nil
	}

	body, ct := multipartBody(t, [3]string{"image", "shopfront.jpg", "fake image bytes"})
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		ImageURL string `json:"image_url"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, savedURL, got.ImageURL)
	assert.True(t, strings.HasPrefix(got.ImageURL, "/uploads/"))
	assert.True(t, strings.HasSuffix(got.ImageURL, ".jpg"))
	// The stored name is generated; the client filename never survives.
	assert.NotContains(t, got.ImageURL, "shopfront")
}

func TestUploadImage_TooManyFiles(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(1))
	f.addShop(shopFixture(10, 1))

	body, ct := multipartBody(t,
		[3]string{"image", "a.jpg", "one"},
		[3]string{"image", "b.jpg", "two"},
	)
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Too many files", decode(t, rec).Error)
}

func TestUploadImage_UnexpectedField(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(1))
	f.addShop(shopFixture(10, 1))

	body, ct := multipartBody(t, [3]string{"avatar", "a.jpg", "bytes"})
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unexpected file field", decode(t, rec).Error)
}

func TestUploadImage_MissingFile(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(1))
	f.addShop(shopFixture(10, 1))

	body, ct := multipartBody(t)
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadImage_DisallowedExtension(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(1))
	f.addShop(shopFixture(10, 1))

	body, ct := multipartBody(t, [3]string{"image", "malware.exe", "bytes"})
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadImage_FileTooLarge(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(1))
	f.addShop(shopFixture(10, 1))

	// One byte over the fixture's 1 MiB cap.
	big := strings.Repeat("x", 1<<20+1)
	body, ct := multipartBody(t, [3]string{"image", "huge.jpg", big})
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File too large", decode(t, rec).Error)
}

func TestUploadImage_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	tok := f.addUser(t, barber(2))
	f.addShop(shopFixture(10, 1))
	f.shops.setImageURL = func(context.Context, int64, string) error {
		t.Fatal("handler must not be reached past the ownership gate")
		return nil
	}

	body, ct := multipartBody(t, [3]string{"image", "a.jpg", "bytes"})
	rec := f.doUpload(t, "/api/barbershops/10/image", tok, body, ct)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", decode(t, rec).Error)
}
