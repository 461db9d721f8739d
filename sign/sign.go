//
// Copyright 2019-present Adobe. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package sign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/adobe/cla-bot/types"
)

// IAgreementStore is the e-signature API surface the decision pipeline
// consumes. Transport credentials (the access token) are fetched once per
// decision and passed read-only into every call.
type IAgreementStore interface {
	AccessToken(ctx context.Context) (string, error)
	SearchAgreements(ctx context.Context, token, query string) ([]types.Agreement, error)
	AgreementFormData(ctx context.Context, token, agreementID string) (string, error)
}

// Config holds the Adobe Sign endpoints and OAuth client credentials.
type Config struct {
	BaseURL      string // e.g. https://api.na1.echosign.com/api/rest
	TokenURL     string // e.g. https://api.na2.echosign.com/oauth/refresh
	APIVersion   string // "v5" for the checker flow, "v6" for the sign webhook
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Client talks to the Adobe Sign REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

var _ IAgreementStore = (*Client)(nil)

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v5"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// AccessToken exchanges the long-lived refresh token for an access token.
// A fresh token source is built on every call: the bot is stateless per
// invocation, so credentials are never cached across decisions.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.cfg.RefreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("retrieving Adobe Sign access token: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("empty access token retrieved from Adobe Sign")
	}
	return token.AccessToken, nil
}

type agreementSearchResponse struct {
	UserAgreementList []types.Agreement `json:"userAgreementList"`
}

// SearchAgreements returns every agreement whose search index references the
// query string, usually a GitHub login. The caller filters candidates.
func (c *Client) SearchAgreements(ctx context.Context, token, query string) ([]types.Agreement, error) {
	searchURL := fmt.Sprintf("%s/%s/agreements?query=%s", c.cfg.BaseURL, c.cfg.APIVersion, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Access-Token", token)
	req.Header.Set("cache-control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieving Adobe Sign agreements: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected agreement search response code: %d", resp.StatusCode)
	}

	var parsed agreementSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding agreement search response: %w", err)
	}

	c.logger.Debug("searched agreements",
		zap.String("query", query),
		zap.Int("count", len(parsed.UserAgreementList)),
	)
	return parsed.UserAgreementList, nil
}

// AgreementFormData fetches the raw tabular form-data export for one
// agreement. The response body is CSV text owned by the lookup parser.
func (c *Client) AgreementFormData(ctx context.Context, token, agreementID string) (string, error) {
	formDataURL := fmt.Sprintf("%s/%s/agreements/%s/formData", c.cfg.BaseURL, c.cfg.APIVersion, url.PathEscape(agreementID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formDataURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("cache-control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("retrieving form data for agreement %s: %w", agreementID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected form data response code for agreement %s: %d", agreementID, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading form data for agreement %s: %w", agreementID, err)
	}
	return string(content), nil
}
