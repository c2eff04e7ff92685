package input

import (
	"encoding/base64"
	"testing"

	"ecoscan-relay/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func dataURL(prefix string, data []byte) string {
	return prefix + "," + base64.StdEncoding.EncodeToString(data)
}

const validLocation = `{"lat": -23.55, "lng": -46.63}`

func TestParse_Valid(t *testing.T) {
	p := NewParser(true)

	req, err := p.Parse(dataURL("data:image/png;base64", pngHeader), validLocation)
	require.NoError(t, err)

	assert.Equal(t, pngHeader, req.Image)
	assert.Equal(t, "image/png", req.MIMEType)
	assert.InDelta(t, -23.55, req.Location.Lat, 1e-9)
	assert.InDelta(t, -46.63, req.Location.Lng, 1e-9)
}

func TestParse_Errors(t *testing.T) {
	goodImage := dataURL("data:image/png;base64", pngHeader)

	tests := []struct {
		name     string
		image    string
		location string
		schema   bool
		wantCode errors.ErrorCode
	}{
		{"missing image", "", validLocation, true, errors.ErrCodeMissingField},
		{"missing location", goodImage, "  ", true, errors.ErrCodeMissingField},
		{"location not json", goodImage, "not json", true, errors.ErrCodeInvalidLocationFormat},
		{"location missing lng", goodImage, `{"lat": 1}`, true, errors.ErrCodeInvalidLocationData},
		{"location string lat", goodImage, `{"lat": "x", "lng": 1}`, true, errors.ErrCodeInvalidLocationData},
		{"location out of range", goodImage, `{"lat": 100, "lng": 1}`, true, errors.ErrCodeInvalidLocationData},
		{"missing lng without schema", goodImage, `{"lat": 1}`, false, errors.ErrCodeInvalidLocationData},
		{"string lat without schema", goodImage, `{"lat": "x", "lng": 1}`, false, errors.ErrCodeInvalidLocationData},
		{"image without comma", "data:image/png;base64", validLocation, true, errors.ErrCodeInvalidImageFormat},
		{"image bad base64", "data:image/png;base64,@@not-base64@@", validLocation, true, errors.ErrCodeInvalidImageEncoding},
		{"image empty payload", "data:image/png;base64,", validLocation, true, errors.ErrCodeInvalidImageEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.schema).Parse(tt.image, tt.location)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestParse_LocationCheckedBeforeImage(t *testing.T) {
	_, err := NewParser(true).Parse("no-separator", "not json")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidLocationFormat))
}

func TestParse_OutOfRangeAcceptedWithoutSchema(t *testing.T) {
	req, err := NewParser(false).Parse(dataURL("data:image/png;base64", pngHeader), `{"lat": 100, "lng": 1}`)
	require.NoError(t, err)
	assert.Equal(t, 100.0, req.Location.Lat)
}

func TestParseImage_MIMEType(t *testing.T) {
	jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"declared type wins", dataURL("data:image/webp;base64", pngHeader), "image/webp"},
		{"sniffed when prefix is not an image type", dataURL("data:application/octet-stream;base64", jpeg), "image/jpeg"},
		{"sniffed when prefix empty", dataURL("", pngHeader), "image/png"},
		{"default when unknown", dataURL("", []byte("plain text")), DefaultMIMEType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mime, err := ParseImage(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mime)
		})
	}
}

func TestParseImage_UnpaddedBase64(t *testing.T) {
	payload := base64.RawStdEncoding.EncodeToString([]byte("ab"))
	data, _, err := ParseImage("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), data)
}

func TestParseImage_ExtraSegmentsIgnored(t *testing.T) {
	data, _, err := ParseImage(dataURL("data:image/png;base64", pngHeader) + ",trailing")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}
