package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-carprice/pkg/prediction"
)

const maxResponseBytes = 1 << 20

// HTTPPredictor calls a remote scoring service that implements the
// prediction contract: POST {base}/predict with a record, answering
// {"prediction": <lakhs>}.
type HTTPPredictor struct {
	base     *url.URL
	client   *http.Client
	timeout  time.Duration
	contract *prediction.Contract
	logger   *zap.Logger
}

var (
	_ Predictor = (*HTTPPredictor)(nil)
	_ Pinger    = (*HTTPPredictor)(nil)
)

// HTTPOption configures an HTTPPredictor.
type HTTPOption func(*HTTPPredictor)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPPredictor) {
		if client != nil {
			p.client = client
		}
	}
}

// WithTimeout bounds each call. Zero keeps the caller's deadline only.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPPredictor) {
		p.timeout = timeout
	}
}

// WithContract validates responses against c.
func WithContract(c *prediction.Contract) HTTPOption {
	return func(p *HTTPPredictor) {
		if c != nil {
			p.contract = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) HTTPOption {
	return func(p *HTTPPredictor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewHTTP builds a predictor for the service rooted at base.
func NewHTTP(base string, opts ...HTTPOption) (*HTTPPredictor, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid predictor URL %q", ErrUnsupportedTarget, base)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	p := &HTTPPredictor{
		base:   u,
		client: http.DefaultClient,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.contract == nil {
		c, err := prediction.DefaultContract()
		if err != nil {
			return nil, err
		}
		p.contract = c
	}
	return p, nil
}

// Predict posts rec and decodes the estimate.
func (p *HTTPPredictor) Predict(ctx context.Context, rec prediction.Record) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("predict"), bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call predictor: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, fmt.Errorf("read predictor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := errorMessage(body)
		p.logger.Warn("predictor rejected record",
			zap.Int("status", resp.StatusCode),
			zap.String("reason", reason),
		)
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return 0, fmt.Errorf("status %d: %s", resp.StatusCode, reason)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, fmt.Errorf("decode predictor response: %w", err)
	}
	if issues := p.contract.ValidateResponse(decoded); len(issues) > 0 {
		return 0, fmt.Errorf("invalid predictor response: %s", issues[0].Message)
	}
	price, _ := decoded.(map[string]any)["prediction"].(float64)
	return price, nil
}

// Ping checks {base}/healthz.
func (p *HTTPPredictor) Ping(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("healthz"), nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactUnavailable, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %s", ErrArtifactUnavailable, resp.Status)
	}
	return nil
}

// Endpoint reports the base URL.
func (p *HTTPPredictor) Endpoint() string {
	return p.base.String()
}

func (p *HTTPPredictor) endpoint(name string) string {
	u := *p.base
	u.Path = u.Path + "/" + name
	return u.String()
}

func (p *HTTPPredictor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, candidate := range []string{payload.Error, payload.Message, payload.Detail} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate)
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// IsTimeout reports whether err came from an expired deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
