package domain

import "errors"

// ErrNotFound is returned by repo functions when the requested row does not
// exist in the database. The classifier maps it to HTTP 404 when it reaches
// the error responder; the gates translate it to their own failure kinds.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned by the login flow when the email is
// unknown or the password does not match. The two cases are deliberately
// indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")
