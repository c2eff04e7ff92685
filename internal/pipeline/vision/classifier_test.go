package vision

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"ecoscan-relay/internal/common/errors"
	"ecoscan-relay/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	gotDeadline bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = config
	_, f.gotDeadline = ctx.Deadline()
	return f.resp, f.err
}

type fakeSource struct {
	ready     bool
	generator ContentGenerator
	err       error
}

func (s *fakeSource) Ready() bool { return s.ready }

func (s *fakeSource) Generator(context.Context) (ContentGenerator, error) {
	return s.generator, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

func newTestClassifier(t *testing.T, gen *fakeGenerator) *Classifier {
	return NewClassifier(&fakeSource{ready: true, generator: gen}, "", time.Second, logger.NewTestLogger(t))
}

func TestClassify_Identified(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("  camiseta azul \n")}
	c := newTestClassifier(t, gen)

	out, err := c.Classify(context.Background(), []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)

	assert.Equal(t, KindIdentified, out.Kind)
	assert.Equal(t, "camiseta azul", out.Text())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, DefaultModel, gen.gotModel)
	assert.True(t, gen.gotDeadline)

	require.Len(t, gen.gotContents, 1)
	parts := gen.gotContents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, Prompt, parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte{1, 2, 3}, parts[1].InlineData.Data)

	require.Len(t, gen.gotConfig.SafetySettings, 4)
	for _, s := range gen.gotConfig.SafetySettings {
		assert.Equal(t, genai.HarmBlockThresholdBlockNone, s.Threshold)
	}
}

func TestClassify_NotReady(t *testing.T) {
	gen := &fakeGenerator{}
	c := NewClassifier(&fakeSource{ready: false, generator: gen}, "", time.Second, logger.NewNoOpLogger())

	_, err := c.Classify(context.Background(), []byte{1}, "image/png")
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfiguration))
	assert.Equal(t, 0, gen.calls)
}

func TestClassify_ContentBlocked(t *testing.T) {
	tests := []struct {
		name       string
		feedback   *genai.GenerateContentResponsePromptFeedback
		wantReason string
	}{
		{
			name: "qualifying ratings",
			feedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: genai.BlockedReasonSafety,
				SafetyRatings: []*genai.SafetyRating{
					{Category: genai.HarmCategoryHarassment, Probability: genai.HarmProbabilityHigh},
					{Category: genai.HarmCategoryHateSpeech, Probability: genai.HarmProbabilityNegligible},
					{Category: genai.HarmCategoryDangerousContent, Probability: genai.HarmProbabilityMedium},
				},
			},
			wantReason: "HARM_CATEGORY_HARASSMENT: HIGH; HARM_CATEGORY_DANGEROUS_CONTENT: MEDIUM",
		},
		{
			name: "only negligible ratings",
			feedback: &genai.GenerateContentResponsePromptFeedback{
				SafetyRatings: []*genai.SafetyRating{
					{Category: genai.HarmCategoryHarassment, Probability: genai.HarmProbabilityNegligible},
					{Category: genai.HarmCategoryHateSpeech, Probability: genai.HarmProbabilityUnspecified},
				},
			},
			wantReason: "unknown",
		},
		{
			name:       "no feedback",
			wantReason: "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{resp: &genai.GenerateContentResponse{PromptFeedback: tt.feedback}}
			_, err := newTestClassifier(t, gen).Classify(context.Background(), []byte{1}, "image/png")

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, errors.ErrCodeContentBlocked, stdErr.Code)
			assert.Equal(t, tt.wantReason, stdErr.Metadata["reason"])
			assert.Contains(t, stdErr.Message, tt.wantReason)
		})
	}
}

func TestClassify_NoTextPart(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel}}},
	}}
	out, err := newTestClassifier(t, gen).Classify(context.Background(), []byte{1}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, KindUnidentified, out.Kind)
	assert.Equal(t, MessageUnidentified, out.Text())
}

func TestClassify_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"structured 401", genai.APIError{Code: 401, Status: "UNAUTHENTICATED", Message: "bad"}, errors.ErrCodeUnauthorized},
		{"structured 403 pointer", &genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, errors.ErrCodeUnauthorized},
		{"bad key reported as 400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, errors.ErrCodeUnauthorized},
		{"structured 404", genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "models/x is not found"}, errors.ErrCodeModelUnavailable},
		{"structured 503", genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}, errors.ErrCodeClassificationFailed},
		{"wrapped structured", fmt.Errorf("call: %w", genai.APIError{Code: 404}), errors.ErrCodeModelUnavailable},
		{"text 401", stderrors.New("request failed: 401 Unauthorized"), errors.ErrCodeUnauthorized},
		{"text model not found", stderrors.New("Model gemini-x not found"), errors.ErrCodeModelUnavailable},
		{"text disabled", stderrors.New("generative language API has been disabled"), errors.ErrCodeModelUnavailable},
		{"network error", stderrors.New("dial tcp: connection refused"), errors.ErrCodeClassificationFailed},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeClassificationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.err}
			_, err := newTestClassifier(t, gen).Classify(context.Background(), []byte{1}, "image/png")
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Equal(t, 1, gen.calls, "no retries")
		})
	}
}

func TestClassify_ModelUnavailableNamesModel(t *testing.T) {
	gen := &fakeGenerator{err: genai.APIError{Code: 404}}
	c := NewClassifier(&fakeSource{ready: true, generator: gen}, "gemini-test", time.Second, logger.NewNoOpLogger())

	_, err := c.Classify(context.Background(), []byte{1}, "image/png")
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Contains(t, stdErr.Message, "gemini-test")
}

func TestClassify_GeneratorUnavailable(t *testing.T) {
	c := NewClassifier(&fakeSource{ready: true, err: stderrors.New("no client")}, "", time.Second, logger.NewNoOpLogger())
	_, err := c.Classify(context.Background(), []byte{1}, "image/png")
	assert.True(t, errors.HasCode(err, errors.ErrCodeClassificationFailed))
}

func TestClientPool_Ready(t *testing.T) {
	assert.False(t, NewClientPool("", "", nil).Ready())
	assert.True(t, NewClientPool("key", "", nil).Ready())

	_, err := NewClientPool("", "", nil).Generator(context.Background())
	assert.Error(t, err)
}
