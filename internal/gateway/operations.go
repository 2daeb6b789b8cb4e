package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/foampro/foamsync/internal/model"
)

// PullCompanyState fetches the company's stored state. The result is a
// partial document meant to be merged over defaults.
func (c *Client) PullCompanyState(ctx context.Context, storeHandle string) (json.RawMessage, error) {
	env, err := c.call(ctx, ActionSyncDown, map[string]string{"spreadsheetId": storeHandle})
	if err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(env.Data).IsObject() {
		return nil, fmt.Errorf("%s: %w", ActionSyncDown, ErrEmptyResponse)
	}
	return env.Data, nil
}

// PushCompanyState overwrites the company's stored state with data.
func (c *Client) PushCompanyState(ctx context.Context, data model.AppData, storeHandle string) error {
	_, err := c.call(ctx, ActionSyncUp, struct {
		State         model.AppData `json:"state"`
		SpreadsheetID string        `json:"spreadsheetId"`
	}{data, storeHandle})
	return err
}

// Login authenticates an administrator.
func (c *Client) Login(ctx context.Context, username, password string) (model.Session, error) {
	return c.session(ctx, ActionLogin, model.RoleAdmin, map[string]string{
		"username": username,
		"password": password,
	})
}

// Signup creates a company and returns its administrator session.
func (c *Client) Signup(ctx context.Context, username, password, companyName string) (model.Session, error) {
	return c.session(ctx, ActionSignup, model.RoleAdmin, map[string]string{
		"username":    username,
		"password":    password,
		"companyName": companyName,
	})
}

// CrewLogin authenticates a crew device with the company's access PIN.
func (c *Client) CrewLogin(ctx context.Context, username, pin string) (model.Session, error) {
	return c.session(ctx, ActionLoginCrew, model.RoleCrew, map[string]string{
		"username": username,
		"pin":      pin,
	})
}

func (c *Client) session(ctx context.Context, action string, role model.Role, payload any) (model.Session, error) {
	env, err := c.call(ctx, action, payload)
	if err != nil {
		return model.Session{}, err
	}
	var s model.Session
	if err := decodeData(env, &s); err != nil {
		return model.Session{}, fmt.Errorf("%s: %w", action, err)
	}
	if strings.TrimSpace(s.Username) == "" {
		return model.Session{}, fmt.Errorf("%s: %w", action, ErrEmptyResponse)
	}
	if s.Role == "" {
		s.Role = role
	}
	return s, nil
}

// DeleteEstimate removes an estimate from the remote store.
func (c *Client) DeleteEstimate(ctx context.Context, id, storeHandle string) error {
	_, err := c.call(ctx, ActionDeleteEstimate, map[string]string{
		"estimateId":    id,
		"spreadsheetId": storeHandle,
	})
	return err
}

// MarkPaid asks the remote store to close the job financially and returns
// the finalized record.
func (c *Client) MarkPaid(ctx context.Context, id, storeHandle string) (model.EstimateRecord, error) {
	env, err := c.call(ctx, ActionMarkPaid, map[string]string{
		"estimateId":    id,
		"spreadsheetId": storeHandle,
	})
	if err != nil {
		return model.EstimateRecord{}, err
	}

	raw := env.Data
	if wrapped := gjson.GetBytes(env.Data, "estimate"); wrapped.IsObject() {
		raw = json.RawMessage(wrapped.Raw)
	}
	var rec model.EstimateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.EstimateRecord{}, fmt.Errorf("%s: decode record: %w", ActionMarkPaid, err)
	}
	if rec.ID == "" {
		return model.EstimateRecord{}, fmt.Errorf("%s: %w", ActionMarkPaid, ErrEmptyResponse)
	}
	return rec, nil
}

// CreateFieldLog creates the crew's field log document for a work order and
// returns its URL.
func (c *Client) CreateFieldLog(ctx context.Context, rec model.EstimateRecord, storageHandle, storeHandle string) (string, error) {
	env, err := c.call(ctx, ActionCreateWorkOrder, struct {
		Estimate      model.EstimateRecord `json:"estimate"`
		FolderID      string               `json:"folderId"`
		SpreadsheetID string               `json:"spreadsheetId"`
	}{rec, storageHandle, storeHandle})
	if err != nil {
		return "", err
	}
	return dataURL(ActionCreateWorkOrder, env)
}

// UploadImage stores an image in the company's file storage and returns its
// URL.
func (c *Client) UploadImage(ctx context.Context, image []byte, filename, storeHandle, storageHandle string) (string, error) {
	env, err := c.call(ctx, ActionUploadImage, map[string]string{
		"image":         base64.StdEncoding.EncodeToString(image),
		"filename":      filename,
		"spreadsheetId": storeHandle,
		"folderId":      storageHandle,
	})
	if err != nil {
		return "", err
	}
	return dataURL(ActionUploadImage, env)
}

// CompleteJob reports a crew's completion and actual usage.
func (c *Client) CompleteJob(ctx context.Context, id string, actuals model.Actuals, storeHandle string) error {
	_, err := c.call(ctx, ActionCompleteJob, struct {
		EstimateID    string        `json:"estimateId"`
		Actuals       model.Actuals `json:"actuals"`
		SpreadsheetID string        `json:"spreadsheetId"`
	}{id, actuals, storeHandle})
	return err
}

// LogCrewTime appends a time entry to a job's field log.
func (c *Client) LogCrewTime(ctx context.Context, sheetURL string, start, end time.Time, user string) error {
	payload := map[string]string{
		"sheetUrl": sheetURL,
		"start":    start.UTC().Format(time.RFC3339),
		"user":     user,
	}
	if !end.IsZero() {
		payload["end"] = end.UTC().Format(time.RFC3339)
	}
	_, err := c.call(ctx, ActionLogTime, payload)
	return err
}

func decodeData(env Envelope, dest any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func dataURL(action string, env Envelope) (string, error) {
	u := strings.TrimSpace(gjson.GetBytes(env.Data, "url").String())
	if u == "" {
		return "", fmt.Errorf("%s: %w", action, ErrEmptyResponse)
	}
	return u, nil
}
