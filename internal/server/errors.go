package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/unihan-tabular/internal/db"
	"github.com/jonathan/unihan-tabular/internal/grammar"
	"github.com/jonathan/unihan-tabular/internal/manifest"
	"github.com/jonathan/unihan-tabular/internal/normalize"
)

// ValidationError indicates an invalid request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError indicates that the requested resource does not exist
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// errNoDatabase is returned by database endpoints when the server runs without one
var errNoDatabase = errors.New("no database configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		malformedErr  *grammar.MalformedFieldValueError
		grammarErr    *grammar.UnknownFieldError
		fieldErr      *manifest.UnknownFieldError
		fileErr       *manifest.UnknownFileError
		codepointErr  *normalize.CodepointError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &grammarErr),
		errors.As(err, &fieldErr),
		errors.As(err, &fileErr),
		errors.As(err, &codepointErr):
		return http.StatusBadRequest
	case errors.As(err, &malformedErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFoundErr), errors.Is(err, db.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoDatabase):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
