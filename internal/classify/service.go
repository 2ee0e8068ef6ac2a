package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Service calls a self-hosted text-classification model over HTTP.
//
// Request:  POST {base}/classify {"text": "..."}
// Response: {"label": "joy", "score": 0.93}
//
// Scores are probabilities in 0..1 and are scaled to 0..100.
type Service struct {
	client *resty.Client
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewService creates a client for the model service at baseURL.
func NewService(baseURL string, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Service{client: c}
}

// Classify posts the text to the model service.
func (s *Service) Classify(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, errors.New("empty text")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&classifyRequest{Text: text}).
		Post("/classify")
	if err != nil {
		return Result{}, fmt.Errorf("classifier request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Result{}, fmt.Errorf("classifier status %d: %s", resp.StatusCode(), resp.String())
	}

	var cr classifyResponse
	if err := json.Unmarshal(resp.Body(), &cr); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return normalize(Result{Label: cr.Label, Confidence: cr.Score * 100})
}

// Health checks that the model service answers GET /health.
func (s *Service) Health(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("classifier health: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("classifier health status %d", resp.StatusCode())
	}
	return nil
}
