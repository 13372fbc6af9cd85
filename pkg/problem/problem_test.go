package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesProblemsThrough(t *testing.T) {
	p := UnauthorizedNoOwner()
	wrapped := fmt.Errorf("authenticate: %w", p)
	assert.Same(t, p, FromError(wrapped))
}

func TestFromErrorHidesInternalErrors(t *testing.T) {
	p := FromError(errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, "Internal Server Error", p.Title)
	assert.Empty(t, p.Detail)
}

func TestSnapshot(t *testing.T) {
	res := Forbidden().Snapshot()

	assert.Equal(t, http.StatusForbidden, res.StatusCode())
	assert.Equal(t, MediaType, res.Header().Get("Content-Type"))
	assert.Empty(t, res.ETag())

	var got Problem
	require.NoError(t, json.Unmarshal(res.Body(), &got))
	assert.Equal(t, Problem{
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: "Api-Key does not have required permissions",
	}, got)
}

func TestError(t *testing.T) {
	assert.Equal(t, "Not Found", New(http.StatusNotFound, "").Error())
	assert.Equal(t, "Unauthorized: Api-Key header not present", UnauthorizedNoAPIKey().Error())
}
