package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/foxseedlab/kikitorin/internal/token"
)

type HTTPProvider struct {
	tokenURL string
	apiKey   string
	client   *http.Client

	mu  sync.Mutex
	tok token.Token
	has bool
	gen uint64

	// refreshMu serializes refreshes so at most one request is in flight.
	refreshMu sync.Mutex
}

func NewHTTPProvider(tokenURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		tokenURL: tokenURL,
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

func (p *HTTPProvider) CurrentToken() (token.Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.has {
		return "", false
	}
	return p.tok, true
}

func (p *HTTPProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	startGen := p.gen
	p.mu.Unlock()

	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	p.mu.Lock()
	if p.gen != startGen && p.has {
		// another caller refreshed while we waited
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	tok, err := p.fetch(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.tok = tok
	p.has = true
	p.gen++
	p.mu.Unlock()
	return nil
}

func (p *HTTPProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tok = ""
	p.has = false
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (p *HTTPProvider) fetch(ctx context.Context) (token.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("token endpoint returned invalid JSON: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access_token")
	}
	return token.Token(parsed.AccessToken), nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
