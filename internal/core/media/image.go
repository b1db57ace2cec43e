package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

// Source records where a CapturedImage came from
type Source string

const (
	SourceCamera     Source = "camera"
	SourceFile       Source = "file"
	SourceCropResult Source = "crop-result"
	SourceGenerated  Source = "generated"
)

// CapturedImage is an encoded image payload. It is never mutated after
// Encode returns it; the data slice is owned by the image.
type CapturedImage struct {
	data     []byte
	mimeType string
	source   Source
}

// Bytes returns a copy of the encoded payload
func (c *CapturedImage) Bytes() []byte {
	return bytes.Clone(c.data)
}

func (c *CapturedImage) MIMEType() string { return c.mimeType }

func (c *CapturedImage) Source() Source { return c.source }

func (c *CapturedImage) Size() int64 { return int64(len(c.data)) }

// DataURI renders the image as data:<mimetype>;base64,<payload>
func (c *CapturedImage) DataURI() string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(c.mimeType) + base64.StdEncoding.EncodedLen(len(c.data)))
	sb.WriteString("data:")
	sb.WriteString(c.mimeType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(c.data))
	return sb.String()
}

// ParseDataURI decodes a data URI produced by DataURI (or by a model) back
// into a CapturedImage. The result is validated like any other input.
func ParseDataURI(uri string, src Source) (*CapturedImage, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, apperror.Validation("not a data URI", nil)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, apperror.Validation("data URI has no payload", nil)
	}

	mimeType, params, _ := strings.Cut(header, ";")
	if params != "base64" && !strings.HasSuffix(params, ";base64") {
		return nil, apperror.Validation("data URI is not base64 encoded", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperror.Validation("data URI payload is not valid base64", err)
	}

	return Encode(raw, mimeType, src)
}

func (c *CapturedImage) String() string {
	return fmt.Sprintf("%s image (%s, %d bytes)", c.source, c.mimeType, len(c.data))
}
