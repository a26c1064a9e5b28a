package middleware

import (
	"net/http"

	"barberbook/internal/apperr"
	"barberbook/internal/httpx"
)

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. Requests advertising a larger Content-Length are
// rejected with 413 through the shared error responder before the next handler
// runs, so the rejection carries the same envelope as every other failure;
// streaming bodies without a Content-Length are capped with
// http.MaxBytesReader so the handler's own body read fails once the limit is
// crossed.
func NewMaxBodySizeHandler(limit int64, respond *httpx.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				respond.Error(w, r, &apperr.Error{
					Kind:    apperr.KindValidationFailed,
					Message: "Request body too large",
					Status:  http.StatusRequestEntityTooLarge,
				})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
