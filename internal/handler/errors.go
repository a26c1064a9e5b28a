package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"barberbook/internal/apperr"
	"barberbook/internal/domain"
)

// decodeJSON decodes the request body into dst and runs struct validation.
// A malformed body or a validation failure both come back as errors the
// classifier renders as 400; handlers just forward them to the responder.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidationFailed, "Invalid request body", err)
	}
	return s.validate.Struct(dst)
}

// urlID parses the {id} URL parameter as a positive integer.
func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.KindValidationFailed, "Invalid resource id")
	}
	return id, nil
}

// loginError maps the credentials sentinel to its client-visible failure.
// Unknown email, wrong password, and deactivated account are deliberately
// indistinguishable at the wire.
func loginError(err error) error {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return apperr.Wrap(apperr.KindUnauthenticated, "Invalid credentials", err)
	}
	return err
}
