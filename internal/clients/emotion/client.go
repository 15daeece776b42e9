// Package emotion classifies free text with a hosted go_emotions model.
package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"queens/internal/apperrors"
	"queens/internal/config"
	"queens/internal/models"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	defaultInitialWait = 2 * time.Second
	// maxWait caps the pause while the hosted model is loading.
	maxWait = 20 * time.Second
)

var errModelLoading = errors.New("emotion model is loading")

// Client calls the inference endpoint.
type Client struct {
	httpClient  *http.Client
	log         logrus.FieldLogger
	url         string
	token       string
	maxAttempts int
	initialWait time.Duration
}

// NewClient creates a new Client.
func NewClient(httpClient *http.Client, cfg config.HuggingFaceConfig, log logrus.FieldLogger) *Client {
	attempts := cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	return &Client{
		httpClient:  httpClient,
		log:         log,
		url:         cfg.URL,
		token:       cfg.APIToken,
		maxAttempts: attempts,
		initialWait: defaultInitialWait,
	}
}

// WithInitialWait overrides the first retry pause. Used by tests.
func (c *Client) WithInitialWait(d time.Duration) *Client {
	c.initialWait = d
	return c
}

// Analyze returns per-label scores for text and the highest scoring label.
// A 503 from a model that is still loading is retried a bounded number of times.
func (c *Client) Analyze(ctx context.Context, text string) (*models.EmotionAnalysis, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialWait
	b.MaxInterval = maxWait
	b.MaxElapsedTime = 0

	attempt := 0
	analysis, err := backoff.RetryWithData(func() (*models.EmotionAnalysis, error) {
		attempt++
		c.log.WithFields(logrus.Fields{"attempt": attempt, "text_length": len(text)}).Debug("sending emotion request")
		return c.analyzeOnce(ctx, text)
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx))
	if err != nil {
		c.log.WithError(err).WithField("attempts", attempt).Error("emotion analysis failed")
		return nil, apperrors.Unavailable("emotion model", err)
	}
	return analysis, nil
}

func (c *Client) analyzeOnce(ctx context.Context, text string) (*models.EmotionAnalysis, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to read response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		c.log.WithField("estimated_time", gjson.GetBytes(body, "estimated_time").Float()).Info("emotion model is loading")
		return nil, errModelLoading
	default:
		return nil, backoff.Permanent(fmt.Errorf("emotion API returned status %d: %s", resp.StatusCode, truncate(body, 200)))
	}

	analysis, err := parseScores(body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return analysis, nil
}

// parseScores reads [[{"label":..,"score":..}, ...]]. A flat list is accepted too.
func parseScores(body []byte) (*models.EmotionAnalysis, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("emotion API returned invalid JSON")
	}
	predictions := gjson.ParseBytes(body)
	if first := predictions.Get("0"); first.IsArray() {
		predictions = first
	}
	if !predictions.IsArray() {
		return nil, errors.New("emotion API returned an unexpected shape")
	}

	analysis := &models.EmotionAnalysis{
		Emotions:  make(map[string]float64),
		Timestamp: time.Now().UTC(),
	}
	best := -1.0
	predictions.ForEach(func(_, pred gjson.Result) bool {
		label := pred.Get("label").String()
		if label == "" {
			return true
		}
		score := pred.Get("score").Float()
		analysis.Emotions[label] = score
		if score > best {
			best = score
			analysis.DominantEmotion = label
		}
		return true
	})
	if len(analysis.Emotions) == 0 {
		return nil, errors.New("emotion API returned no predictions")
	}
	return analysis, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
