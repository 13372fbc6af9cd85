package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	snapshot "github.com/always-cache/bazaar/pkg/response-snapshot"
)

const MediaType = "application/problem+json"

// Problem is an error document in the style of RFC 7807.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// New returns a problem with the given status and the standard title for it.
func New(status int, detail string) *Problem {
	return &Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func (p *Problem) Error() string {
	if p.Detail == "" {
		return p.Title
	}
	return p.Title + ": " + p.Detail
}

// FromError returns err itself if it is (or wraps) a Problem.
// Any other error becomes a generic internal server error that does not leak err.
func FromError(err error) *Problem {
	var p *Problem
	if errors.As(err, &p) {
		return p
	}
	return New(http.StatusInternalServerError, "")
}

// Write sends the problem as application/problem+json.
func (p *Problem) Write(w http.ResponseWriter) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(p.Status)
	_, err = w.Write(body)
	return err
}

// Snapshot renders the problem as a response snapshot.
func (p *Problem) Snapshot() *snapshot.Response {
	res, err := snapshot.Capture(p.Write)
	if err != nil {
		// a Problem only holds strings and an int
		panic(err)
	}
	return res
}

func BadRequest(detail string) *Problem {
	return New(http.StatusBadRequest, detail)
}

func NotFound(detail string) *Problem {
	return New(http.StatusNotFound, detail)
}

func UnauthorizedNoAPIKey() *Problem {
	return New(http.StatusUnauthorized, "Api-Key header not present")
}

func UnauthorizedNoOwner() *Problem {
	return New(http.StatusUnauthorized, "Api-Key not recognized")
}

func Forbidden() *Problem {
	return New(http.StatusForbidden, "Api-Key does not have required permissions")
}
