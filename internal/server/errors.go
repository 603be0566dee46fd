package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/schemas"
)

// ErrSessionNotFound indicates the referenced editor session does not exist
// or has expired.
var ErrSessionNotFound = errors.New("editor session not found")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		loadErr       *editor.LoadError
		saveErr       *editor.SaveError
		stateErr      *editor.CardStateError
		requestErr    *backend.RequestError
		validationErr *schemas.ValidationError
	)

	switch {
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrNoMasterResume):
		return http.StatusPreconditionFailed
	case errors.Is(err, editor.ErrIdentityRequired):
		return http.StatusUnauthorized
	case errors.Is(err, editor.ErrReadOnlyMode):
		return http.StatusMethodNotAllowed
	case errors.Is(err, editor.ErrCardNotFound), errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrCardBusy):
		return http.StatusConflict
	case errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &loadErr):
		return http.StatusBadGateway
	case errors.As(err, &saveErr):
		return http.StatusBadGateway
	case errors.As(err, &requestErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
