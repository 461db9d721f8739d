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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/adobe/cla-bot/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Config{
		BaseURL:      server.URL + "/api/rest",
		TokenURL:     server.URL + "/oauth/refresh",
		APIVersion:   "v5",
		ClientID:     "client!",
		ClientSecret: "secret!",
		RefreshToken: "refresh!",
	}, zaptest.NewLogger(t))
	return client, server
}

func TestAccessToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/refresh", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "refresh!", r.FormValue("refresh_token"))
		assert.Equal(t, "client!", r.FormValue("client_id"))
		assert.Equal(t, "secret!", r.FormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "token!", "token_type": "Bearer", "expires_in": 3600}`)
	})

	token, err := client.AccessToken(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "token!", token)
}

func TestAccessTokenEndpointError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	token, err := client.AccessToken(context.Background())
	assert.Error(t, err)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "access token")
}

func TestAccessTokenEmptyToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "", "token_type": "Bearer", "expires_in": 3600}`)
	})

	_, err := client.AccessToken(context.Background())
	assert.Error(t, err)
}

func TestSearchAgreements(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest/v5/agreements", r.URL.Path)
		assert.Equal(t, "hiren", r.URL.Query().Get("query"))
		assert.Equal(t, "token!", r.Header.Get("Access-Token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"userAgreementList": [
			{"agreementId": "123", "status": "SIGNED", "name": "Adobe CLA"},
			{"agreementId": "456", "status": "OUT_FOR_SIGNATURE", "name": "Adobe CLA"}
		]}`)
	})

	agreements, err := client.SearchAgreements(context.Background(), "token!", "hiren")
	assert.NoError(t, err)
	assert.Equal(t, []types.Agreement{
		{ID: "123", Status: types.AgreementSigned, Name: "Adobe CLA"},
		{ID: "456", Status: "OUT_FOR_SIGNATURE", Name: "Adobe CLA"},
	}, agreements)
}

func TestSearchAgreementsQueryIsEscaped(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "strange user", r.URL.Query().Get("query"))
		fmt.Fprint(w, `{"userAgreementList": []}`)
	})

	agreements, err := client.SearchAgreements(context.Background(), "token!", "strange user")
	assert.NoError(t, err)
	assert.Empty(t, agreements)
}

func TestSearchAgreementsUnexpectedStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	agreements, err := client.SearchAgreements(context.Background(), "token!", "hiren")
	assert.Nil(t, agreements)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAgreementFormData(t *testing.T) {
	csv := "\"Custom Field 1\",\"githubUsername\"\n\"hiren\",\"\"\n"
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest/v5/agreements/123/formData", r.URL.Path)
		assert.Equal(t, "Bearer token!", r.Header.Get("Authorization"))
		fmt.Fprint(w, csv)
	})

	formData, err := client.AgreementFormData(context.Background(), "token!", "123")
	assert.NoError(t, err)
	assert.Equal(t, csv, formData)
}

func TestAgreementFormDataUnexpectedStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	formData, err := client.AgreementFormData(context.Background(), "token!", "123")
	assert.Empty(t, formData)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "agreement 123")
}

func TestNewDefaultsAPIVersion(t *testing.T) {
	client := New(Config{}, zaptest.NewLogger(t))
	assert.Equal(t, "v5", client.cfg.APIVersion)
}
