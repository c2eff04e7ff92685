package vision

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/genai"
)

// ContentGenerator is the part of the genai Models service the classifier
// needs. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeneratorSource hands out a ContentGenerator, creating it on first use.
type GeneratorSource interface {
	Ready() bool
	Generator(ctx context.Context) (ContentGenerator, error)
}

// ClientPool lazily creates one shared genai client. An empty API key keeps
// the pool unready instead of failing at startup.
type ClientPool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	client *genai.Client
	mutex  sync.RWMutex
}

func NewClientPool(apiKey, baseURL string, httpClient *http.Client) *ClientPool {
	return &ClientPool{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (p *ClientPool) Ready() bool {
	return p.apiKey != ""
}

func (p *ClientPool) Generator(ctx context.Context) (ContentGenerator, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func (p *ClientPool) getClient(ctx context.Context) (*genai.Client, error) {
	p.mutex.RLock()
	if p.client != nil {
		defer p.mutex.RUnlock()
		return p.client, nil
	}
	p.mutex.RUnlock()

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if !p.Ready() {
		return nil, fmt.Errorf("genai API key is not configured")
	}

	cc := &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	p.client = client
	return p.client, nil
}

// Close drops the cached client; the genai client holds no resources of its own.
func (p *ClientPool) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.client = nil
	return nil
}
