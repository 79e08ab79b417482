package negotiation

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotConfigured is returned when the generator endpoint is unset.
var ErrNotConfigured = errors.New("negotiation: endpoint not configured")

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 1 << 20

// Doer sends a request. resilience.HTTPClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the external message and strategy generators.
type Client struct {
	HTTP        Doer
	MessageURL  string
	StrategyURL string
	APIKey      string
}

// NewHTTPClient returns an instrumented http.Client for outbound generator calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type messagePayload struct {
	Type              string   `json:"type"`
	Supplier          string   `json:"supplier"`
	AdditionalContext string   `json:"additionalContext"`
	KeyPoints         []string `json:"keyPoints"`
}

// GenerateMessage posts req to the message generator.
func (c Client) GenerateMessage(ctx context.Context, req MessageRequest) (Message, error) {
	if c.HTTP == nil || strings.TrimSpace(c.MessageURL) == "" {
		return Message{}, ErrNotConfigured
	}
	keyPoints := req.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}
	body, err := json.Marshal(messagePayload{
		Type:              req.Type,
		Supplier:          req.Supplier,
		AdditionalContext: req.AdditionalContext,
		KeyPoints:         keyPoints,
	})
	if err != nil {
		return Message{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.MessageURL, bytes.NewReader(body))
	if err != nil {
		return Message{}, fmt.Errorf("build message request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	data, err := c.send(ctx, httpReq)
	if err != nil {
		return Message{}, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if strings.TrimSpace(msg.Subject) == "" && strings.TrimSpace(msg.Body) == "" {
		return Message{}, errors.New("negotiation: empty message from generator")
	}
	if msg.KeyPoints == nil {
		msg.KeyPoints = []string{}
	}
	msg.Fallback = false
	return msg, nil
}

// FetchStrategies asks the strategy generator for approaches matching q.
func (c Client) FetchStrategies(ctx context.Context, q StrategyQuery) ([]Strategy, error) {
	if c.HTTP == nil || strings.TrimSpace(c.StrategyURL) == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(c.StrategyURL)
	if err != nil {
		return nil, fmt.Errorf("parse strategy url: %w", err)
	}
	params := u.Query()
	params.Set("supplier", q.Supplier)
	params.Set("category", q.Category)
	params.Set("description", q.Description)
	u.RawQuery = params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build strategy request: %w", err)
	}
	data, err := c.send(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	return ParseStrategies(data)
}

func (c Client) send(ctx context.Context, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(c.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read generator response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("negotiation: generator responded %s", resp.Status)
	}
	return data, nil
}

// ParseStrategies accepts a JSON array of strategies, an object with a
// "strategies" array, or either of those encoded once more as a JSON string.
func ParseStrategies(data []byte) ([]Strategy, error) {
	data = bytes.TrimSpace(data)
	for depth := 0; depth < 4; depth++ {
		if len(data) == 0 {
			return nil, errors.New("negotiation: empty strategy response")
		}
		switch data[0] {
		case '"':
			var inner string
			if err := json.Unmarshal(data, &inner); err != nil {
				return nil, fmt.Errorf("decode strategy string: %w", err)
			}
			data = bytes.TrimSpace([]byte(inner))
			continue
		case '[':
			var list []Strategy
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("decode strategy list: %w", err)
			}
			return nonEmpty(list)
		case '{':
			var wrapped struct {
				Strategies json.RawMessage `json:"strategies"`
			}
			if err := json.Unmarshal(data, &wrapped); err != nil {
				return nil, fmt.Errorf("decode strategy object: %w", err)
			}
			if len(wrapped.Strategies) == 0 {
				return nil, errors.New("negotiation: strategy object has no strategies")
			}
			data = bytes.TrimSpace(wrapped.Strategies)
			continue
		default:
			return nil, fmt.Errorf("negotiation: unexpected strategy payload starting with %q", data[0])
		}
	}
	return nil, errors.New("negotiation: strategy payload nested too deeply")
}

func nonEmpty(list []Strategy) ([]Strategy, error) {
	out := make([]Strategy, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s.Title) != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("negotiation: no usable strategies")
	}
	return out, nil
}
