package snapshot

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	contenttype "github.com/always-cache/bazaar/pkg/content-type"
)

// Response is an immutable capture of an HTTP reply.
// It can be stored and replayed any number of times without invoking the code that produced it.
type Response struct {
	status int
	proto  string
	major  int
	minor  int
	header http.Header
	body   []byte
}

// New creates a snapshot from its parts. The header and body are copied.
func New(status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	return &Response{
		status: status,
		proto:  "HTTP/1.1",
		major:  1,
		minor:  1,
		header: header.Clone(),
		body:   bytes.Clone(body),
	}
}

func (r *Response) StatusCode() int {
	return r.status
}

// Proto returns the protocol version, e.g. "HTTP/1.1".
func (r *Response) Proto() string {
	return r.proto
}

// Header returns a copy of the stored headers.
func (r *Response) Header() http.Header {
	return r.header.Clone()
}

// Body returns the stored body. Callers must not modify it.
func (r *Response) Body() []byte {
	return r.body
}

// ETag returns the stored validator, if any.
func (r *Response) ETag() string {
	return r.header.Get("ETag")
}

// Conditional returns the reply to send for a request with the given If-None-Match value.
// When it equals the stored ETag, a new "not modified" snapshot is returned that carries
// only the ETag header and no body. Otherwise the receiver itself is returned.
func (r *Response) Conditional(ifNoneMatch string) *Response {
	etag := r.ETag()
	if etag == "" || ifNoneMatch != etag {
		return r
	}
	header := http.Header{}
	header.Set("ETag", etag)
	return &Response{
		status: http.StatusNotModified,
		proto:  r.proto,
		major:  r.major,
		minor:  r.minor,
		header: header,
	}
}

// WriteTo replays the snapshot on w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for name, values := range r.header {
		for _, value := range values {
			dst.Add(name, value)
		}
	}
	if len(r.body) > 0 {
		dst.Set("Content-Length", strconv.Itoa(len(r.body)))
	}
	w.WriteHeader(r.status)
	if len(r.body) == 0 {
		return nil
	}
	if _, err := w.Write(r.body); err != nil {
		return fmt.Errorf("write snapshot body: %w", err)
	}
	return nil
}

// Reply is what a compute callback produces: a payload plus the status and extra headers
// to send with it. It becomes a Response once rendered with a content type.
type Reply struct {
	Status  int
	Header  http.Header
	Payload any
}

// OK is a 200 reply with the given payload.
func OK(payload any) Reply {
	return Reply{Status: http.StatusOK, Payload: payload}
}

// Render encodes the payload with ct and captures the complete reply,
// including Content-Type and ETag headers.
func (r Reply) Render(ct contenttype.ContentType) (*Response, error) {
	return Capture(func(w http.ResponseWriter) error {
		return r.Write(w, ct)
	})
}

// Write encodes the payload with ct and writes the reply to w.
// Nothing is written if encoding fails.
func (r Reply) Write(w http.ResponseWriter, ct contenttype.ContentType) error {
	body, err := ct.Encode(r.Payload)
	if err != nil {
		return err
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := w.Header()
	for name, values := range r.Header {
		for _, value := range values {
			header.Add(name, value)
		}
	}
	header.Set("Content-Type", ct.MediaType())
	header.Set("ETag", contenttype.ETag(body))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write reply body: %w", err)
	}
	return nil
}
