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

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	webhook "gopkg.in/go-playground/webhooks.v5/github"

	"github.com/adobe/cla-bot/checker"
	"github.com/adobe/cla-bot/config"
	"github.com/adobe/cla-bot/signwebhook"
	"github.com/adobe/cla-bot/types"
)

// orchestratorStub implements githubEventHandler.
type orchestratorStub struct {
	result       checker.Result
	pullRequests []webhook.PullRequestPayload
	mergeGroups  []types.MergeGroupPayload
}

//goland:noinspection GoUnusedParameter
func (o *orchestratorStub) HandlePullRequest(ctx context.Context, payload webhook.PullRequestPayload) checker.Result {
	o.pullRequests = append(o.pullRequests, payload)
	return o.result
}

//goland:noinspection GoUnusedParameter
func (o *orchestratorStub) HandleMergeGroup(ctx context.Context, payload types.MergeGroupPayload) checker.Result {
	o.mergeGroups = append(o.mergeGroups, payload)
	return o.result
}

// signHandlerStub implements signEventHandler.
type signHandlerStub struct {
	result   checker.Result
	payloads []signwebhook.Payload
}

//goland:noinspection GoUnusedParameter
func (s *signHandlerStub) Handle(ctx context.Context, payload signwebhook.Payload) checker.Result {
	s.payloads = append(s.payloads, payload)
	return s.result
}

func setupGithubWebhookContext(t *testing.T, event, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, pathGithubWebhook, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerGithubEvent, event)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const pullRequestBody = `{
	"action": "opened",
	"pull_request": {
		"user": {"login": "hiren", "type": "User"},
		"head": {"sha": "12345"}
	},
	"repository": {"name": "photoshop", "owner": {"login": "adobe"}},
	"installation": {"id": 531387}
}`

const mergeGroupBody = `{
	"action": "checks_requested",
	"merge_group": {"head_sha": "abc123"},
	"repository": {"name": "photoshop", "owner": {"login": "adobe"}},
	"installation": {"id": 531387}
}`

func TestGithubWebhookPullRequest(t *testing.T) {
	orchestrator := &orchestratorStub{result: checker.Result{
		StatusCode: http.StatusOK,
		Outcome:    &types.EligibilityOutcome{Category: types.CategoryClaSigned, Title: "CLA Signed"},
	}}
	hook, err := webhook.New()
	assert.NoError(t, err)
	handler := githubWebhookHandler(orchestrator, hook, zaptest.NewLogger(t))

	c, rec := setupGithubWebhookContext(t, eventPullRequestName, pullRequestBody)
	assert.NoError(t, handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cla-signed")

	assert.Len(t, orchestrator.pullRequests, 1)
	payload := orchestrator.pullRequests[0]
	assert.Equal(t, "opened", payload.Action)
	assert.Equal(t, "hiren", payload.PullRequest.User.Login)
	assert.Equal(t, int64(531387), payload.Installation.ID)
	assert.Empty(t, orchestrator.mergeGroups)
}

func TestGithubWebhookPullRequestInvalidPayload(t *testing.T) {
	orchestrator := &orchestratorStub{}
	hook, err := webhook.New()
	assert.NoError(t, err)
	handler := githubWebhookHandler(orchestrator, hook, zaptest.NewLogger(t))

	c, rec := setupGithubWebhookContext(t, eventPullRequestName, "this is not json")
	assert.NoError(t, handler(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, orchestrator.pullRequests)
}

func TestGithubWebhookMergeGroup(t *testing.T) {
	orchestrator := &orchestratorStub{result: checker.Result{
		StatusCode: http.StatusOK,
		Outcome:    &types.EligibilityOutcome{Category: types.CategoryClaSigned, Title: "CLA Signed"},
	}}
	hook, err := webhook.New()
	assert.NoError(t, err)
	handler := githubWebhookHandler(orchestrator, hook, zaptest.NewLogger(t))

	c, rec := setupGithubWebhookContext(t, eventMergeGroupName, mergeGroupBody)
	assert.NoError(t, handler(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, orchestrator.mergeGroups, 1)
	payload := orchestrator.mergeGroups[0]
	assert.Equal(t, "checks_requested", payload.Action)
	assert.Equal(t, "abc123", payload.MergeGroup.HeadSHA)
	assert.Empty(t, orchestrator.pullRequests)
}

func TestGithubWebhookIgnoredEvent(t *testing.T) {
	orchestrator := &orchestratorStub{}
	hook, err := webhook.New()
	assert.NoError(t, err)
	handler := githubWebhookHandler(orchestrator, hook, zaptest.NewLogger(t))

	c, rec := setupGithubWebhookContext(t, "push", `{}`)
	assert.NoError(t, handler(c))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, orchestrator.pullRequests)
	assert.Empty(t, orchestrator.mergeGroups)
}

func TestSignWebhookHandler(t *testing.T) {
	cfg := &config.Config{SignClientID: "client!"}
	stub := &signHandlerStub{result: checker.Result{
		StatusCode: http.StatusCreated,
		Message:    "PRs set for hiren completed: adobe/photoshop#42",
	}}
	handler := signWebhookHandler(stub, cfg, zaptest.NewLogger(t))

	e := echo.New()
	body := `{"event": "AGREEMENT_WORKFLOW_COMPLETED", "agreement": {"id": "123", "name": "Adobe CLA"}}`
	req := httptest.NewRequest(http.MethodPost, pathSignWebhook, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(headerSignClientID, "client!")
	rec := httptest.NewRecorder()

	assert.NoError(t, handler(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "client!", rec.Header().Get(headerSignClientID))
	assert.Len(t, stub.payloads, 1)
	assert.Equal(t, "123", stub.payloads[0].Agreement.ID)
}

func TestSignWebhookHandlerInvalidPayload(t *testing.T) {
	cfg := &config.Config{SignClientID: "client!"}
	stub := &signHandlerStub{}
	handler := signWebhookHandler(stub, cfg, zaptest.NewLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, pathSignWebhook, strings.NewReader("this is not json"))
	rec := httptest.NewRecorder()

	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.payloads)
}

func TestSignWebhookRegistration(t *testing.T) {
	cfg := &config.Config{SignClientID: "client!"}
	handler := signWebhookRegistrationHandler(cfg)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, pathSignWebhook, nil)
	req.Header.Set(headerSignClientID, "client!")
	rec := httptest.NewRecorder()

	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "client!", rec.Header().Get(headerSignClientID))
	assert.Contains(t, rec.Body.String(), `"ClientIdHeaderStatus":true`)
}

func TestSignWebhookRegistrationWrongClientID(t *testing.T) {
	cfg := &config.Config{SignClientID: "client!"}
	handler := signWebhookRegistrationHandler(cfg)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, pathSignWebhook, nil)
	req.Header.Set(headerSignClientID, "someone else")
	rec := httptest.NewRecorder()

	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(headerSignClientID))
	assert.Contains(t, rec.Body.String(), `"ClientIdHeaderStatus":false`)
}
