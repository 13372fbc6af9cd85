package bazaar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/always-cache/bazaar/registry"
	cachekey "github.com/always-cache/bazaar/pkg/cache-key"
	contenttype "github.com/always-cache/bazaar/pkg/content-type"
	"github.com/always-cache/bazaar/pkg/problem"
	snapshot "github.com/always-cache/bazaar/pkg/response-snapshot"
	"github.com/always-cache/bazaar/store"
)

const apiKeyHeader = "Api-Key"

// serveCached answers a read from the cache pair, in the content type the client accepts.
func serveCached[K comparable](w http.ResponseWriter, r *http.Request, caches registry.Pair[K], key K, compute func(context.Context) (snapshot.Reply, error)) {
	ct := contenttype.Negotiate(r.Header.Get("Accept"))
	res := caches.Pick(ct).GetResponse(r.Context(), key, compute)
	res = res.Conditional(r.Header.Get("If-None-Match"))
	if err := res.WriteTo(w); err != nil {
		getLogger(r).Debug().Err(err).Msg("Could not write response")
	}
}

// okReply wraps a store read into the compute signature used by the response caches.
func okReply[T any](get func(ctx context.Context) (T, error)) func(context.Context) (snapshot.Reply, error) {
	return func(ctx context.Context) (snapshot.Reply, error) {
		v, err := get(ctx)
		if err != nil {
			return snapshot.Reply{}, err
		}
		return snapshot.OK(v), nil
	}
}

// idParam parses the {id} path segment.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, problem.BadRequest("invalid id")
	}
	return id, nil
}

func listParams(r *http.Request, orderable []string) (cachekey.ListParams, error) {
	return cachekey.ParseListParams(r.URL.Query(), orderable)
}

// decodeBody reads the request body into v using the request's Content-Type.
// It returns the content type, which is also used for the reply.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{ Validate() error }) (contenttype.ContentType, error) {
	ct := contenttype.FromContentType(r.Header.Get("Content-Type"))
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.bodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ct, problem.New(http.StatusRequestEntityTooLarge, fmt.Sprintf("body is larger than %d bytes", tooLarge.Limit))
		}
		return ct, problem.BadRequest("could not read body")
	}
	if err := ct.Decode(body, v); err != nil {
		return ct, problem.BadRequest("invalid " + ct.String() + " body")
	}
	return ct, v.Validate()
}

// apiKey returns the parsed Api-Key header.
func apiKey(r *http.Request) (uuid.UUID, error) {
	header := r.Header.Get(apiKeyHeader)
	if header == "" {
		return uuid.Nil, problem.UnauthorizedNoAPIKey()
	}
	key, err := uuid.Parse(header)
	if err != nil {
		return uuid.Nil, problem.BadRequest("Api-Key is not a valid UUID")
	}
	return key, nil
}

// authenticate returns the id of the owner holding the request's api key.
func (s *Server) authenticate(r *http.Request) (int64, error) {
	key, err := apiKey(r)
	if err != nil {
		return 0, err
	}
	id, err := s.caches.OwnerIDsByAPIKey.Get(r.Context(), key, func(ctx context.Context) (int64, error) {
		return s.store.OwnerIDByAPIKey(ctx, key)
	})
	if errors.Is(err, store.ErrNotFound) {
		return 0, problem.UnauthorizedNoOwner()
	}
	return id, err
}

// remoteIP prefers the X-Real-IP header set by a reverse proxy.
func remoteIP(r *http.Request) *string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return &ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return nil
	}
	return &host
}

// created sends the 201 reply of a create or update, encoded like the request body.
func (s *Server) created(w http.ResponseWriter, r *http.Request, ct contenttype.ContentType, location string, payload any) {
	reply := snapshot.Reply{
		Status:  http.StatusCreated,
		Header:  http.Header{"Location": {location}},
		Payload: payload,
	}
	res, err := reply.Render(ct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := res.WriteTo(w); err != nil {
		getLogger(r).Debug().Err(err).Msg("Could not write reply")
	}
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
