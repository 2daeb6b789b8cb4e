package gateway

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

	"github.com/sirupsen/logrus"
)

const (
	defaultUserAgent  = "foamsync/0.1"
	defaultTimeout    = 30 * time.Second
	DefaultRetries    = 2
	DefaultRetryDelay = time.Second
	maxResponseBytes  = 32 << 20
)

// Action names understood by the remote store.
const (
	ActionSyncUp          = "SYNC_UP"
	ActionSyncDown        = "SYNC_DOWN"
	ActionLogin           = "LOGIN"
	ActionSignup          = "SIGNUP"
	ActionLoginCrew       = "LOGIN_CREW"
	ActionUploadImage     = "UPLOAD_IMAGE"
	ActionLogTime         = "LOG_TIME"
	ActionCompleteJob     = "COMPLETE_JOB"
	ActionDeleteEstimate  = "DELETE_ESTIMATE"
	ActionMarkPaid        = "MARK_PAID"
	ActionCreateWorkOrder = "CREATE_WORK_ORDER"
)

// Options configures a Client.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	UserAgent  string
	Logger     logrus.FieldLogger
	HTTPClient *http.Client
}

// Client talks to the remote store's single action endpoint.
type Client struct {
	endpoint   string
	http       *http.Client
	userAgent  string
	retries    int
	retryDelay time.Duration
	log        logrus.FieldLogger
}

// NewClient builds a Client. An empty endpoint is accepted; every call on
// such a client fails with ErrNotConfigured.
func NewClient(opts Options) (*Client, error) {
	endpoint, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Client{
		endpoint:   endpoint,
		http:       httpClient,
		userAgent:  userAgent,
		retries:    max(opts.Retries, 0),
		retryDelay: opts.RetryDelay,
		log:        log.WithField("component", "gateway"),
	}, nil
}

// Configured reports whether the client has an endpoint.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != ""
}

// Envelope is the normalized response shape of every action.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type request struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// call sends one action, retrying transport-level failures. An envelope
// with status "error" is final and returned as *RemoteError.
func (c *Client) call(ctx context.Context, action string, payload any) (Envelope, error) {
	if !c.Configured() {
		return Envelope{}, ErrNotConfigured
	}

	body, err := json.Marshal(request{Action: action, Payload: payload})
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: encode request: %w", action, err)
	}

	log := c.log.WithField("action", action)
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			log.WithFields(logrus.Fields{"attempt": attempt, "error": lastErr}).Warn("retrying remote call")
			if err := waitWithContext(ctx, c.retryDelay); err != nil {
				return Envelope{}, fmt.Errorf("%s: %w", action, err)
			}
		}

		env, err := c.post(ctx, body)
		if err == nil {
			if env.Status != "success" {
				msg := strings.TrimSpace(env.Message)
				if msg == "" {
					msg = "unknown error"
				}
				log.WithField("message", msg).Warn("remote rejected action")
				return env, &RemoteError{Action: action, Message: msg}
			}
			log.WithField("attempt", attempt).Debug("remote call succeeded")
			return env, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return Envelope{}, fmt.Errorf("%s: %w", action, ctx.Err())
		}
	}
	log.WithError(lastErr).Error("remote call failed")
	return Envelope{}, fmt.Errorf("%s: %w", action, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Envelope{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return Envelope{}, &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Envelope{}, fmt.Errorf("read response: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode response: %w", err)
	}
	return env, nil
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseEndpoint(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("parse api_url %q: %w", raw, errors.New("scheme must be http or https"))
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Fragment = ""
	return u.String(), nil
}
