package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/schemas"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"backend not found", backend.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", backend.ErrNotFound), http.StatusNotFound},
		{"no master resume", backend.ErrNoMasterResume, http.StatusPreconditionFailed},
		{"identity required", editor.ErrIdentityRequired, http.StatusUnauthorized},
		{"read only mode", editor.ErrReadOnlyMode, http.StatusMethodNotAllowed},
		{"card not found", editor.ErrCardNotFound, http.StatusNotFound},
		{"session not found", ErrSessionNotFound, http.StatusNotFound},
		{"card busy", editor.ErrCardBusy, http.StatusConflict},
		{"card state", &editor.CardStateError{CardID: "c", State: editor.CardProposed, Op: "accept"}, http.StatusConflict},
		{"schema validation", &schemas.ValidationError{}, http.StatusBadRequest},
		{"load failure", &editor.LoadError{Message: "master"}, http.StatusBadGateway},
		{"save failure", &editor.SaveError{Message: "master resume"}, http.StatusBadGateway},
		{"backend request failure", &backend.RequestError{Operation: "save", StatusCode: 500}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
