package pipeline

import (
	"context"
	"encoding/base64"
	"testing"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/models"
	"ecoscan-relay/internal/pipeline/input"
	"ecoscan-relay/internal/pipeline/suggestion"
	"ecoscan-relay/internal/pipeline/vision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	ready   bool
	outcome vision.Outcome
	err     error
	calls   int
	gotMIME string
}

func (f *fakeClassifier) Ready() bool { return f.ready }

func (f *fakeClassifier) Classify(_ context.Context, _ []byte, mimeType string) (vision.Outcome, error) {
	f.calls++
	f.gotMIME = mimeType
	return f.outcome, f.err
}

type fakeLocator struct {
	places []models.Place
	calls  int
	gotLoc models.Location
	gotDsc string
}

func (f *fakeLocator) Provider() string { return "fake" }

func (f *fakeLocator) Locate(_ context.Context, description string, loc models.Location) []models.Place {
	f.calls++
	f.gotDsc = description
	f.gotLoc = loc
	return f.places
}

var (
	image    = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("\xff\xd8\xff\xe0fake-jpeg"))
	location = `{"lat": -23.55, "lng": -46.63}`
)

func newAnalyzer(t *testing.T, c *fakeClassifier, l *fakeLocator) *Analyzer {
	return NewAnalyzer(input.NewParser(true), c, l, nil, logger.NewTestLogger(t))
}

func TestAnalyze_Identified(t *testing.T) {
	c := &fakeClassifier{ready: true, outcome: vision.Identified("calça jeans preta")}
	l := &fakeLocator{places: []models.Place{{Name: "Brechó", Address: "Rua A", Distance: "1.2 km"}}}

	resp, err := newAnalyzer(t, c, l).Analyze(context.Background(), "http", image, location)
	require.NoError(t, err)

	assert.Equal(t, "calça jeans preta", resp.IdentifiedClothing)
	rule, ok := suggestion.Match("calça jeans preta")
	require.True(t, ok)
	assert.Equal(t, rule.Advice, resp.SustainableSuggestion)
	assert.Len(t, resp.NearbyStores, 1)

	assert.Equal(t, "image/jpeg", c.gotMIME)
	assert.Equal(t, "calça jeans preta", l.gotDsc)
	assert.Equal(t, models.Location{Lat: -23.55, Lng: -46.63}, l.gotLoc)
}

func TestAnalyze_NotClothingStillLooksUpStores(t *testing.T) {
	c := &fakeClassifier{ready: true, outcome: vision.Outcome{Kind: vision.KindNotClothing}}
	l := &fakeLocator{}

	resp, err := newAnalyzer(t, c, l).Analyze(context.Background(), "http", image, location)
	require.NoError(t, err)

	assert.Equal(t, vision.MessageNotClothing, resp.IdentifiedClothing)
	assert.Equal(t, suggestion.Fallback, resp.SustainableSuggestion)
	assert.Equal(t, 1, l.calls)
	require.NotNil(t, resp.NearbyStores)
	assert.Empty(t, resp.NearbyStores)
}

func TestAnalyze_NotConfiguredBeforeInput(t *testing.T) {
	c := &fakeClassifier{ready: false}
	l := &fakeLocator{}

	_, err := newAnalyzer(t, c, l).Analyze(context.Background(), "http", "garbage", "not json")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
	assert.Zero(t, c.calls)
	assert.Zero(t, l.calls)
}

func TestAnalyze_InputErrorStopsPipeline(t *testing.T) {
	c := &fakeClassifier{ready: true}
	l := &fakeLocator{}

	_, err := newAnalyzer(t, c, l).Analyze(context.Background(), "http", image, `{"lat": 200, "lng": 0}`)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidLocationData))
	assert.Zero(t, c.calls)
	assert.Zero(t, l.calls)
}

func TestAnalyze_ClassifierErrorSkipsStores(t *testing.T) {
	c := &fakeClassifier{ready: true, err: errors.NewContentBlockedError("HARM_CATEGORY_HARASSMENT: HIGH")}
	l := &fakeLocator{}

	resp, err := newAnalyzer(t, c, l).Analyze(context.Background(), "job", image, location)
	assert.Nil(t, resp)
	assert.True(t, errors.HasCode(err, errors.ErrCodeContentBlocked))
	assert.Zero(t, l.calls)
}
