// Package input turns the two raw form fields of an analysis into a
// validated models.AnalysisRequest.
package input

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/validation"
	"ecoscan-relay/internal/models"
)

const (
	FieldImageDataURL = "imageDataUrl"
	FieldUserLocation = "userLocation"

	DefaultMIMEType = "image/png"
)

type Parser struct {
	schemaValidation bool
}

// NewParser returns a Parser. With schemaValidation the location is also
// checked against validation.LocationSchema, which adds range checks.
func NewParser(schemaValidation bool) *Parser {
	return &Parser{schemaValidation: schemaValidation}
}

// Parse validates the location first and the image second.
func (p *Parser) Parse(imageDataURL, userLocation string) (*models.AnalysisRequest, error) {
	if strings.TrimSpace(imageDataURL) == "" {
		return nil, errors.NewMissingFieldError(FieldImageDataURL)
	}
	if strings.TrimSpace(userLocation) == "" {
		return nil, errors.NewMissingFieldError(FieldUserLocation)
	}

	loc, err := p.parseLocation(userLocation)
	if err != nil {
		return nil, err
	}

	image, mimeType, err := ParseImage(imageDataURL)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisRequest{
		Image:    image,
		MIMEType: mimeType,
		Location: loc,
	}, nil
}

func (p *Parser) parseLocation(raw string) (models.Location, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return models.Location{}, errors.NewInvalidLocationFormatError(err)
	}

	if p.schemaValidation {
		if res := validation.ValidateLocation(doc); !res.Valid {
			return models.Location{}, errors.NewInvalidLocationDataError(res.Error())
		}
	}

	var fields struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return models.Location{}, errors.NewInvalidLocationDataError(err.Error())
	}
	if fields.Lat == nil {
		return models.Location{}, errors.NewInvalidLocationDataError("lat is required")
	}
	if fields.Lng == nil {
		return models.Location{}, errors.NewInvalidLocationDataError("lng is required")
	}
	return models.Location{Lat: *fields.Lat, Lng: *fields.Lng}, nil
}

// ParseImage splits a data URL into decoded bytes and a MIME type. The
// payload is the segment after the first comma, up to any further comma.
func ParseImage(dataURL string) ([]byte, string, error) {
	segments := strings.SplitN(dataURL, ",", 3)
	if len(segments) < 2 {
		return nil, "", errors.NewInvalidImageFormatError()
	}

	data, err := decodeBase64(strings.TrimSpace(segments[1]))
	if err != nil {
		return nil, "", errors.NewInvalidImageEncodingError(err)
	}
	if len(data) == 0 {
		return nil, "", errors.NewInvalidImageEncodingError(nil)
	}

	return data, detectMIMEType(segments[0], data), nil
}

func decodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if !strings.HasSuffix(payload, "=") {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
			return raw, nil
		}
	}
	return nil, err
}

// detectMIMEType prefers the declared data-URL type, then content sniffing.
func detectMIMEType(metadata string, data []byte) string {
	declared := strings.TrimPrefix(strings.TrimSpace(metadata), "data:")
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = declared[:i]
	}
	declared = strings.ToLower(declared)
	if strings.HasPrefix(declared, "image/") {
		return declared
	}

	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return DefaultMIMEType
}
