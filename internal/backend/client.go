// Package backend hands validated plans to the platform API, which owns the
// durable record.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PlanSubmitter stores a plan with the platform.
type PlanSubmitter interface {
	SubmitPlan(ctx context.Context, sub PlanSubmission) (*SubmissionReceipt, error)
}

// Config configures an HTTPSubmitter.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the wait before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// HTTPSubmitter implements PlanSubmitter over the platform's REST API.
type HTTPSubmitter struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewHTTPSubmitter creates a submitter. A nil logger disables logging.
func NewHTTPSubmitter(cfg Config, logger *zap.Logger) *HTTPSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 250 * time.Millisecond
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPSubmitter{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		logger: logger.Named("backend"),
	}
}

var errMalformedReceipt = errors.New("malformed submission receipt")

// statusError is a non-2xx response.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.code, e.message)
}

func (s *HTTPSubmitter) SubmitPlan(ctx context.Context, sub PlanSubmission) (*SubmissionReceipt, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	data, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshaling submission: %w", err)
	}

	var lastErr error
	attempts := 1 + s.cfg.MaxRetries
	wait := s.cfg.Backoff

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(wait):
				wait *= 2
			}
			if ctx.Err() != nil {
				break
			}
		}

		receipt, err := s.doRequest(ctx, data)
		if err == nil {
			s.logger.Info("plan submitted",
				zap.String("draft_id", sub.DraftID),
				zap.String("reference", receipt.Reference),
				zap.Int("attempts", i+1),
				zap.Duration("latency", time.Since(start)))
			return receipt, nil
		}
		lastErr = err
		s.logger.Debug("submission attempt failed",
			zap.String("draft_id", sub.DraftID),
			zap.Int("attempt", i+1),
			zap.Error(err))

		var se *statusError
		if errors.As(err, &se) && se.code < 500 {
			return nil, fmt.Errorf("%w: %s", ErrRejected, se.message)
		}
		// The plan was accepted; resending could store it twice.
		if errors.Is(err, errMalformedReceipt) {
			return nil, err
		}
		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	s.logger.Warn("plan submission failed",
		zap.String("draft_id", sub.DraftID),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (s *HTTPSubmitter) doRequest(ctx context.Context, data []byte) (*SubmissionReceipt, error) {
	url := s.cfg.BaseURL + "/disbursement-plans"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, message: errorMessage(body)}
	}

	var receipt SubmissionReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedReceipt, err)
	}
	if receipt.Reference == "" {
		return nil, fmt.Errorf("%w: missing plan id", errMalformedReceipt)
	}
	return &receipt, nil
}

// errorMessage extracts {"message": "..."} from an error body, falling back
// to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
