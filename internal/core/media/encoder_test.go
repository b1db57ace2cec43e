package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/internal/shared/apperror"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		size        int64
		contentType string
		wantErr     error
	}{
		{"png at limit", MaxImageBytes, "image/png", nil},
		{"jpeg small", 2 * 1024 * 1024, "image/jpeg", nil},
		{"one byte over", MaxImageBytes + 1, "image/png", ErrTooLarge},
		{"pdf", 1024, "application/pdf", ErrNotImage},
		{"empty type", 1024, "", ErrNotImage},
		{"uppercase type", 10, "IMAGE/PNG", nil},
		{"oversized and wrong type reports size", MaxImageBytes * 2, "text/plain", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.size, tt.contentType)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, apperror.Is(err, apperror.KindValidation))
		})
	}
}

func TestEncode_RoundTripsThroughDataURI(t *testing.T) {
	raw := tinyPNG(t)

	img, err := Encode(raw, "image/png", SourceFile)
	require.NoError(t, err)

	uri := img.DataURI()
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	back, err := ParseDataURI(uri, SourceFile)
	require.NoError(t, err)
	assert.Equal(t, raw, back.Bytes())
	assert.Equal(t, "image/png", back.MIMEType())
}

func TestEncode_OwnsItsBytes(t *testing.T) {
	raw := tinyPNG(t)
	img, err := Encode(raw, "image/png", SourceFile)
	require.NoError(t, err)

	original := img.Bytes()
	raw[0] = 0
	assert.Equal(t, original, img.Bytes())

	out := img.Bytes()
	out[1] = 0
	assert.Equal(t, original, img.Bytes())
}

func TestEncode_SniffsMissingContentType(t *testing.T) {
	img, err := Encode(tinyPNG(t), "", SourceCamera)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType())
	assert.Equal(t, SourceCamera, img.Source())
}

func TestEncode_StripsContentTypeParams(t *testing.T) {
	img, err := Encode(tinyPNG(t), "image/png; charset=binary", SourceFile)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType())
}

func TestEncode_Rejects(t *testing.T) {
	_, err := Encode(nil, "image/png", SourceFile)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Encode([]byte("hello"), "text/plain", SourceFile)
	assert.ErrorIs(t, err, ErrNotImage)

	big := make([]byte, MaxImageBytes+1)
	_, err = Encode(big, "image/jpeg", SourceFile)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeReader(t *testing.T) {
	raw := tinyPNG(t)

	img, err := EncodeReader(bytes.NewReader(raw), int64(len(raw)), "image/png", SourceFile)
	require.NoError(t, err)
	assert.Equal(t, raw, img.Bytes())

	// declared size is checked before reading
	_, err = EncodeReader(bytes.NewReader(raw), 5*1024*1024, "image/jpeg", SourceFile)
	assert.ErrorIs(t, err, ErrTooLarge)

	// unknown size but stream is too long
	_, err = EncodeReader(bytes.NewReader(make([]byte, MaxImageBytes+10)), -1, "image/jpeg", SourceFile)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = EncodeReader(bytes.NewReader(raw), -1, "application/octet-stream", SourceFile)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestParseDataURI_Malformed(t *testing.T) {
	for _, uri := range []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:image/png,AAAA",
		"data:image/png;base64,@@@",
		"data:text/plain;base64,aGVsbG8=",
	} {
		_, err := ParseDataURI(uri, SourceFile)
		assert.Error(t, err, uri)
		assert.True(t, apperror.Is(err, apperror.KindValidation), uri)
	}
}

func TestDimensions(t *testing.T) {
	img, err := Encode(tinyPNG(t), "image/png", SourceFile)
	require.NoError(t, err)

	w, h, err := img.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)
}
