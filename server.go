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
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	webhook "gopkg.in/go-playground/webhooks.v5/github"

	"github.com/adobe/cla-bot/checker"
	"github.com/adobe/cla-bot/config"
	"github.com/adobe/cla-bot/github"
	"github.com/adobe/cla-bot/lookup"
	"github.com/adobe/cla-bot/sign"
	"github.com/adobe/cla-bot/signwebhook"
	"github.com/adobe/cla-bot/types"
)

const (
	pathGithubWebhook = "/webhook"
	pathSignWebhook   = "/sign-webhook"

	headerGithubEvent    = "X-GitHub-Event"
	headerSignClientID   = "X-AdobeSign-ClientId"
	eventPullRequestName = "pull_request"
	eventMergeGroupName  = "merge_group"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	signClient := sign.New(sign.Config{
		BaseURL:      cfg.SignBaseURL,
		TokenURL:     cfg.SignTokenURL,
		APIVersion:   "v5",
		ClientID:     cfg.SignClientID,
		ClientSecret: cfg.SignClientSecret,
		RefreshToken: cfg.SignRefreshToken,
	}, logger)
	// completed-agreement notifications carry v6 agreement ids
	signClientV6 := sign.New(sign.Config{
		BaseURL:      cfg.SignBaseURL,
		TokenURL:     cfg.SignTokenURL,
		APIVersion:   "v6",
		ClientID:     cfg.SignClientID,
		ClientSecret: cfg.SignClientSecret,
		RefreshToken: cfg.SignRefreshToken,
	}, logger)

	clients := github.NewClientFactory(cfg.GithubAppID, cfg.GithubKeyFile, logger)
	engine := lookup.NewEngine(signClient, logger)
	policy := checker.NewPolicy(cfg, signClient, engine, logger)
	orchestrator := checker.NewOrchestrator(cfg, clients, policy, logger)
	signHandler := signwebhook.New(cfg, signClientV6, clients, logger)

	var hookOptions []webhook.Option
	if cfg.GithubWebhookSecret != "" {
		hookOptions = append(hookOptions, webhook.Options.Secret(cfg.GithubWebhookSecret))
	}
	hook, err := webhook.New(hookOptions...)
	if err != nil {
		logger.Fatal("failed to create webhook parser", zap.Error(err))
	}

	e := echo.New()
	e.Use(middleware.CORS())

	e.POST(pathGithubWebhook, githubWebhookHandler(orchestrator, hook, logger))
	e.POST(pathSignWebhook, signWebhookHandler(signHandler, cfg, logger))
	e.GET(pathSignWebhook, signWebhookRegistrationHandler(cfg))

	e.Logger.Fatal(e.Start(cfg.Addr))
}

// githubEventHandler is the orchestrator surface the ingress depends on.
type githubEventHandler interface {
	HandlePullRequest(ctx context.Context, payload webhook.PullRequestPayload) checker.Result
	HandleMergeGroup(ctx context.Context, payload types.MergeGroupPayload) checker.Result
}

func githubWebhookHandler(orchestrator githubEventHandler, hook *webhook.Webhook, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		switch c.Request().Header.Get(headerGithubEvent) {
		case eventPullRequestName:
			payload, err := hook.Parse(c.Request(), webhook.PullRequestEvent)
			if err != nil {
				logger.Error("failed to parse pull_request payload", zap.Error(err))
				return c.String(http.StatusBadRequest, "invalid webhook payload")
			}
			pullRequest, ok := payload.(webhook.PullRequestPayload)
			if !ok {
				return c.String(http.StatusBadRequest, "invalid webhook payload")
			}
			return respond(c, orchestrator.HandlePullRequest(ctx, pullRequest))

		case eventMergeGroupName:
			// the webhook library predates merge queues, decode directly
			var mergeGroup types.MergeGroupPayload
			if err := json.NewDecoder(c.Request().Body).Decode(&mergeGroup); err != nil {
				logger.Error("failed to parse merge_group payload", zap.Error(err))
				return c.String(http.StatusBadRequest, "invalid webhook payload")
			}
			return respond(c, orchestrator.HandleMergeGroup(ctx, mergeGroup))

		default:
			return c.String(http.StatusAccepted, "Not a pull request being (re)opened or synchronized, ignoring")
		}
	}
}

// signEventHandler is the sign-webhook surface the ingress depends on.
type signEventHandler interface {
	Handle(ctx context.Context, payload signwebhook.Payload) checker.Result
}

func signWebhookHandler(handler signEventHandler, cfg *config.Config, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		echoSignClientID(c, cfg)

		var payload signwebhook.Payload
		if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
			logger.Error("failed to parse sign webhook payload", zap.Error(err))
			return c.String(http.StatusBadRequest, "invalid webhook payload")
		}
		return respond(c, handler.Handle(c.Request().Context(), payload))
	}
}

// signWebhookRegistrationHandler completes Adobe Sign webhook registration:
// the initial GET only needs the client id echoed back.
// https://helpx.adobe.com/sign/using/adobe-sign-webhooks-api.html#VoI
func signWebhookRegistrationHandler(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		echoed := echoSignClientID(c, cfg)
		return c.JSON(http.StatusOK, map[string]bool{"ClientIdHeaderStatus": echoed})
	}
}

// echoSignClientID reflects the verification-of-intent header back to Adobe
// Sign so the webhook is not blacklisted.
func echoSignClientID(c echo.Context, cfg *config.Config) bool {
	clientID := c.Request().Header.Get(headerSignClientID)
	if clientID == "" || clientID != cfg.SignClientID {
		return false
	}
	c.Response().Header().Set(headerSignClientID, clientID)
	return true
}

func respond(c echo.Context, result checker.Result) error {
	if result.Outcome != nil {
		return c.JSON(result.StatusCode, result.Outcome)
	}
	return c.String(result.StatusCode, result.Message)
}
