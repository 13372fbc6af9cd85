package cache

import (
	"context"

	contenttype "github.com/always-cache/bazaar/pkg/content-type"
	"github.com/always-cache/bazaar/pkg/problem"
	snapshot "github.com/always-cache/bazaar/pkg/response-snapshot"
)

// ProblemMapper turns a compute error into the problem document sent to the client.
type ProblemMapper func(error) *problem.Problem

// ResponseCache stores rendered HTTP replies of one content type.
type ResponseCache[K comparable] struct {
	*Cache[K, *snapshot.Response]
	contentType contenttype.ContentType
	toProblem   ProblemMapper
}

// NewResponseCache creates a response cache whose entries are encoded with ct.
// Compute errors are mapped with problem.FromError unless toProblem is given.
func NewResponseCache[K comparable](name string, capacity int, ct contenttype.ContentType, toProblem ProblemMapper, opts ...Option) *ResponseCache[K] {
	if toProblem == nil {
		toProblem = problem.FromError
	}
	return &ResponseCache[K]{
		Cache:       New[K, *snapshot.Response](name, capacity, opts...),
		contentType: ct,
		toProblem:   toProblem,
	}
}

// ContentType returns the encoding of the stored replies.
func (c *ResponseCache[K]) ContentType() contenttype.ContentType {
	return c.contentType
}

// GetResponse returns the cached reply for key, computing and rendering it on a miss.
// If compute or rendering fails, the error is returned as a problem response,
// which is not stored: the next call for key computes again.
func (c *ResponseCache[K]) GetResponse(ctx context.Context, key K, compute func(context.Context) (snapshot.Reply, error)) *snapshot.Response {
	res, err := c.Get(ctx, key, func(ctx context.Context) (*snapshot.Response, error) {
		reply, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return reply.Render(c.contentType)
	})
	if err != nil {
		return c.toProblem(err).Snapshot()
	}
	return res
}

// DeleteResponse removes the reply stored for key.
func (c *ResponseCache[K]) DeleteResponse(key K) {
	c.Delete(key)
}
