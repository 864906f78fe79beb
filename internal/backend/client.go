// client.go
//
// AI report card-deck resolution service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carddeck.
// carddeck is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carddeck is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carddeck.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package backend is the authenticated HTTP client for the content record
// store: application modules, content directories, records, per-user
// personalization and card-driven type templates.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/localnerve/carddeck/internal/cards"
	"github.com/localnerve/carddeck/internal/logger"
)

// ErrNotFound marks a missing resource as opposed to a transport failure.
// Callers treat it as an expected empty state, never as an error to log.
var ErrNotFound = errors.New("backend: not found")

// Client is the authenticated request client for the content backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a backend client. The timeout applies per request at the
// transport boundary; a timeout degrades exactly like any other failure.
func New(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ListModules returns the application's installed modules.
func (c *Client) ListModules(ctx context.Context, applicationID string) ([]Module, error) {
	var resp modulesResponse
	path := fmt.Sprintf("/applications/%s/modules", url.PathEscape(applicationID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Modules, nil
}

// ListDirectories returns the content directories of a module.
func (c *Client) ListDirectories(ctx context.Context, applicationID, moduleID string) ([]Directory, error) {
	var resp directoriesResponse
	q := url.Values{}
	q.Set("applicationId", applicationID)
	q.Set("moduleId", moduleID)
	if err := c.get(ctx, "/directories", q, &resp); err != nil {
		return nil, err
	}
	return resp.Directories, nil
}

// ListRecords returns one page of a directory's records plus the backend's
// reported total. Some deployments serialize total as a quoted string.
func (c *Client) ListRecords(ctx context.Context, directoryID, applicationID string, page, limit int) ([]Record, uint64, error) {
	var resp recordsResponse
	q := url.Values{}
	q.Set("applicationId", applicationID)
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	path := fmt.Sprintf("/records/%s", url.PathEscape(directoryID))
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Records, resp.Total.Uint64(), nil
}

// ListAllRecords pages through a directory until the reported total is
// reached. Backends that omit the total get a single page.
func (c *Client) ListAllRecords(ctx context.Context, directoryID, applicationID string, limit int) ([]Record, error) {
	all, total, err := c.ListRecords(ctx, directoryID, applicationID, 1, limit)
	if err != nil {
		return nil, err
	}
	for page := 2; uint64(len(all)) < total && len(all) > 0; page++ {
		records, _, err := c.ListRecords(ctx, directoryID, applicationID, page, limit)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			break
		}
		all = append(all, records...)
	}
	return all, nil
}

// GetPersonalization loads the per-user personalization object.
// A missing resource returns ErrNotFound, distinguishable from transport
// errors so callers can degrade to "no personalization" silently.
func (c *Client) GetPersonalization(ctx context.Context, userID, applicationID, taskID string) (*cards.PersonalizationConfig, error) {
	var resp cards.PersonalizationConfig
	q := url.Values{}
	q.Set("applicationId", applicationID)
	if taskID != "" {
		q.Set("taskId", taskID)
	}
	path := fmt.Sprintf("/modules/system/user/%s/personalization", url.PathEscape(userID))
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PutPersonalization saves the per-user personalization object.
func (c *Client) PutPersonalization(ctx context.Context, userID, applicationID, taskID string, cfg *cards.PersonalizationConfig) error {
	q := url.Values{}
	q.Set("applicationId", applicationID)
	if taskID != "" {
		q.Set("taskId", taskID)
	}
	path := fmt.Sprintf("/modules/system/user/%s/personalization", url.PathEscape(userID))
	return c.put(ctx, path, q, cfg, nil)
}

// GetTemplate loads a card-driven type template. An empty applicationID
// requests the global template.
func (c *Client) GetTemplate(ctx context.Context, templateID, applicationID string) (*cards.TypeTemplateConfig, error) {
	var resp templateResponse
	q := url.Values{}
	if applicationID != "" {
		q.Set("applicationId", applicationID)
	} else {
		q.Set("global", "true")
	}
	path := fmt.Sprintf("/card-driven/templates/%s", url.PathEscape(templateID))
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}
	if resp.TemplateConfig == nil {
		return nil, ErrNotFound
	}
	return resp.TemplateConfig, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, path, query, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		c.log.Debug("backend request failed",
			"method", req.Method, "url", req.URL.Path, "status", resp.StatusCode)
		return fmt.Errorf("backend error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decoding envelope: %w", err)
	}
	if !env.Success {
		if isNotFoundMessage(env.Error) {
			return ErrNotFound
		}
		return fmt.Errorf("backend rejected request: %s", env.Error)
	}
	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func isNotFoundMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "not found")
}
