package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/model"
)

type recordedRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	c, err := NewClient(Options{
		Endpoint:   server.URL + "/exec",
		Retries:    2,
		RetryDelay: time.Millisecond,
		Logger:     log,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func decodeRequest(t *testing.T, r *http.Request) recordedRequest {
	t.Helper()
	var req recordedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("decode request: %v", err)
	}
	return req
}

func TestParseEndpoint(t *testing.T) {
	if got, err := parseEndpoint("  "); err != nil || got != "" {
		t.Fatalf("parseEndpoint(blank) = %q, %v; want empty, nil", got, err)
	}
	if _, err := parseEndpoint("ftp://example.com"); err == nil {
		t.Fatalf("parseEndpoint(ftp) returned nil error")
	}
	got, err := parseEndpoint("https://script.example.com/macros/s/abc/exec#x")
	if err != nil {
		t.Fatalf("parseEndpoint returned error: %v", err)
	}
	if got != "https://script.example.com/macros/s/abc/exec" {
		t.Fatalf("parseEndpoint = %q", got)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if c.Configured() {
		t.Fatalf("Configured() = true, want false")
	}
	if err := c.PushCompanyState(context.Background(), model.DefaultAppData(), "sheet"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("PushCompanyState error = %v, want ErrNotConfigured", err)
	}
}

func TestClient_PullSendsEnvelope(t *testing.T) {
	var got recordedRequest
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		got = decodeRequest(t, r)
		_, _ = io.WriteString(w, `{"status":"success","data":{"costs":{"openCell":1999}}}`)
	})

	data, err := c.PullCompanyState(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("PullCompanyState returned error: %v", err)
	}
	if got.Action != ActionSyncDown {
		t.Fatalf("action = %q, want %q", got.Action, ActionSyncDown)
	}
	if string(got.Payload) != `{"spreadsheetId":"sheet-1"}` {
		t.Fatalf("payload = %s", got.Payload)
	}
	if contentType != "application/json" {
		t.Fatalf("Content-Type = %q", contentType)
	}
	if string(data) != `{"costs":{"openCell":1999}}` {
		t.Fatalf("data = %s", data)
	}
}

func TestClient_PullRejectsEmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","data":null}`)
	})

	if _, err := c.PullCompanyState(context.Background(), "s"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"status":"success"}`)
	})

	if err := c.DeleteEstimate(context.Background(), "e1", "s"); err != nil {
		t.Fatalf("DeleteEstimate returned error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `not json`)
	})

	err := c.PushCompanyState(context.Background(), model.DefaultAppData(), "s")
	if err == nil {
		t.Fatalf("PushCompanyState returned nil error")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 1 + 2 retries", got)
	}
}

func TestClient_RemoteErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"status":"error","message":"Invalid PIN"}`)
	})

	_, err := c.CrewLogin(context.Background(), "acme", "0000")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error = %v, want *RemoteError", err)
	}
	if remote.Message != "Invalid PIN" || remote.Action != ActionLoginCrew {
		t.Fatalf("remote error = %+v", remote)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestClient_StopsRetryingOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	c, err := NewClient(Options{Endpoint: server.URL, Retries: 2, RetryDelay: time.Hour, Logger: log})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := c.DeleteEstimate(ctx, "e1", "s"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("retry wait ignored context")
	}
}

func TestClient_LoginDefaultsRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","data":{"username":"acme","companyName":"Acme","spreadsheetId":"s","folderId":"f"}}`)
	})

	s, err := c.Login(context.Background(), "acme", "pw")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if s.Role != model.RoleAdmin || s.StoreHandle != "s" || s.StorageHandle != "f" {
		t.Fatalf("session = %+v", s)
	}
}

func TestClient_MarkPaidAcceptsWrappedRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","data":{"estimate":{"id":"e1","status":"Paid","financials":{"netProfit":500}}}}`)
	})

	rec, err := c.MarkPaid(context.Background(), "e1", "s")
	if err != nil {
		t.Fatalf("MarkPaid returned error: %v", err)
	}
	if rec.Status != model.StatusPaid || rec.Financials == nil || rec.Financials.NetProfit != 500 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestClient_CreateFieldLogReturnsURL(t *testing.T) {
	var got recordedRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = decodeRequest(t, r)
		_, _ = io.WriteString(w, `{"status":"success","data":{"url":"https://docs.example.com/log"}}`)
	})

	u, err := c.CreateFieldLog(context.Background(), model.EstimateRecord{ID: "e1"}, "folder", "sheet")
	if err != nil {
		t.Fatalf("CreateFieldLog returned error: %v", err)
	}
	if u != "https://docs.example.com/log" {
		t.Fatalf("url = %q", u)
	}
	var payload struct {
		Estimate model.EstimateRecord `json:"estimate"`
		FolderID string               `json:"folderId"`
	}
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Estimate.ID != "e1" || payload.FolderID != "folder" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestClient_UploadImageEncodesBase64(t *testing.T) {
	var got recordedRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = decodeRequest(t, r)
		_, _ = io.WriteString(w, `{"status":"success","data":{"url":"https://img"}}`)
	})

	if _, err := c.UploadImage(context.Background(), []byte("hi"), "a.jpg", "s", "f"); err != nil {
		t.Fatalf("UploadImage returned error: %v", err)
	}
	var payload map[string]string
	_ = json.Unmarshal(got.Payload, &payload)
	if payload["image"] != "aGk=" {
		t.Fatalf("image = %q, want base64", payload["image"])
	}
}
