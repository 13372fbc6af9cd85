package snapshot

import (
	"bytes"
	"net/http"
)

// Recorder is an http.ResponseWriter that keeps the status, headers and body written to it.
// It never writes to a client; use Response.WriteTo to replay what it captured.
type Recorder struct {
	b            *bytes.Buffer
	header       http.Header
	status       int
	wroteHeaders bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		b:      &bytes.Buffer{},
		header: http.Header{},
	}
}

// Implementation of http.ResponseWriter
func (t *Recorder) Header() http.Header {
	return t.header
}

// Implementation of http.ResponseWriter
func (t *Recorder) WriteHeader(statusCode int) {
	// the first call wins, like net/http
	if t.wroteHeaders {
		return
	}
	t.wroteHeaders = true
	t.status = statusCode
}

// Implementation of http.ResponseWriter
func (t *Recorder) Write(b []byte) (int, error) {
	if !t.wroteHeaders {
		t.WriteHeader(http.StatusOK)
	}
	return t.b.Write(b)
}

// StatusCode returns the status code of the response.
func (t *Recorder) StatusCode() int {
	if !t.wroteHeaders {
		return http.StatusOK
	}
	return t.status
}

// Response freezes the recorded reply into a snapshot.
// The recorder may not be used afterwards.
func (t *Recorder) Response() *Response {
	return &Response{
		status: t.StatusCode(),
		proto:  "HTTP/1.1",
		major:  1,
		minor:  1,
		header: t.header.Clone(),
		body:   bytes.Clone(t.b.Bytes()),
	}
}

// Capture runs write against a fresh Recorder and returns the resulting snapshot.
// If write fails, nothing is captured and the error is returned.
func Capture(write func(w http.ResponseWriter) error) (*Response, error) {
	rec := NewRecorder()
	if err := write(rec); err != nil {
		return nil, err
	}
	return rec.Response(), nil
}
