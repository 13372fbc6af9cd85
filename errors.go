package bazaar

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/always-cache/bazaar/models"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
	"github.com/always-cache/bazaar/pkg/problem"
	"github.com/always-cache/bazaar/store"
)

// ProblemFromError maps errors from the store, the models and request parsing to problem documents.
// Unknown errors become a 500 without detail. Callers log them.
func ProblemFromError(err error) *problem.Problem {
	var p *problem.Problem
	switch {
	case errors.As(err, &p):
		return p
	case errors.Is(err, store.ErrNotFound):
		return problem.NotFound("")
	case errors.Is(err, store.ErrForbidden):
		return problem.Forbidden()
	case errors.Is(err, store.ErrConflict):
		return problem.New(http.StatusConflict, "")
	case errors.Is(err, store.ErrInsufficientQuantity):
		return problem.BadRequest("Not enough quantity")
	case errors.Is(err, models.ErrInvalid), errors.Is(err, cachekey.ErrInvalidListParams):
		return problem.BadRequest(err.Error())
	}
	return problem.New(http.StatusInternalServerError, "")
}

// writeError sends err as a problem document.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := ProblemFromError(err)
	logger := getLogger(r)
	if p.Status < http.StatusInternalServerError {
		logger.Debug().Int("status", p.Status).Str("problem", p.Error()).Msg("Request rejected")
	} else {
		logger.Error().Err(err).Msg("Unhandled error")
	}
	if err := p.Write(w); err != nil {
		logger.Error().Err(err).Msg("Could not write problem")
	}
}

// getLogger returns the logger the server attached to the request.
// It is disabled when the server logger is.
func getLogger(r *http.Request) *zerolog.Logger {
	return hlog.FromRequest(r)
}
