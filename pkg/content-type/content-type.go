package contenttype

import (
	"encoding/json"
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentType is the representation a payload is encoded with.
// It is a closed set: JSON or Bincode (compact binary).
type ContentType int

const (
	JSON ContentType = iota
	Bincode
)

const (
	MediaTypeJSON   = "application/json"
	MediaTypeBinary = "application/octet-stream"
)

// Negotiate picks the content type for a reply from the request's Accept header.
// The binary representation is used only if its media type is explicitly listed.
func Negotiate(accept string) ContentType {
	if hasMediaType(accept, MediaTypeBinary) {
		return Bincode
	}
	return JSON
}

// FromContentType picks the decoder for a request body from its Content-Type header.
func FromContentType(header string) ContentType {
	if hasMediaType(header, MediaTypeBinary) {
		return Bincode
	}
	return JSON
}

func hasMediaType(header, mediaType string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mt, _, err := mime.ParseMediaType(part)
		if err != nil {
			// fall back to the bare value without parameters
			mt, _, _ = strings.Cut(part, ";")
			mt = strings.ToLower(strings.TrimSpace(mt))
		}
		if mt == mediaType {
			return true
		}
	}
	return false
}

// MediaType returns the value used for the Content-Type header.
func (ct ContentType) MediaType() string {
	switch ct {
	case Bincode:
		return MediaTypeBinary
	default:
		return MediaTypeJSON
	}
}

func (ct ContentType) String() string {
	switch ct {
	case Bincode:
		return "bincode"
	default:
		return "json"
	}
}

// Encode serializes v.
func (ct ContentType) Encode(v any) ([]byte, error) {
	switch ct {
	case Bincode:
		b, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("bincode encode: %w", err)
		}
		return b, nil
	case JSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("json encode: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown content type %d", int(ct))
	}
}

// Decode deserializes data into v. Fields v does not have are ignored in both
// encodings, so a resource read from the API can be sent back as an update.
func (ct ContentType) Decode(data []byte, v any) error {
	switch ct {
	case Bincode:
		if err := msgpack.Unmarshal(data, v); err != nil {
			return fmt.Errorf("bincode decode: %w", err)
		}
		return nil
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("json decode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown content type %d", int(ct))
	}
}

// ETag returns the validator for the given body bytes.
// It is a pure function of the bytes: lowercase hex of a 64-bit xxhash.
func ETag(body []byte) string {
	return strconv.FormatUint(xxhash.Sum64(body), 16)
}
