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

package checker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	webhook "gopkg.in/go-playground/webhooks.v5/github"

	"github.com/adobe/cla-bot/config"
	"github.com/adobe/cla-bot/github"
	"github.com/adobe/cla-bot/types"
)

// Result is what one webhook invocation produces. StatusCode maps directly
// onto the HTTP response of the ingress.
type Result struct {
	StatusCode int
	Outcome    *types.EligibilityOutcome
	Message    string
}

const msgIgnoredEvent = "Not a pull request being (re)opened or synchronized, ignoring"

var verifiablePullRequestActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"synchronize": true,
}

// Decider is the policy surface the orchestrator drives.
type Decider interface {
	Decide(ctx context.Context, gh github.IIdentityProvider, event types.PullRequestEvent) (*types.EligibilityOutcome, error)
}

// Orchestrator drives one eligibility decision per webhook event and is the
// single error boundary for the pipeline: every failure becomes a structured
// Result, never a panic past the invocation.
type Orchestrator struct {
	cfg     *config.Config
	clients github.IClientFactory
	policy  Decider
	logger  *zap.Logger
}

func NewOrchestrator(cfg *config.Config, clients github.IClientFactory, policy Decider, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, clients: clients, policy: policy, logger: logger}
}

// HandlePullRequest runs the full decision pipeline for a pull_request
// event: filter, decide, report.
func (o *Orchestrator) HandlePullRequest(ctx context.Context, payload webhook.PullRequestPayload) Result {
	if !verifiablePullRequestActions[payload.Action] {
		return Result{StatusCode: http.StatusAccepted, Message: msgIgnoredEvent}
	}

	event := types.PullRequestEvent{
		Action: payload.Action,
		Author: types.Identity{
			Login: payload.PullRequest.User.Login,
			Type:  types.AccountType(payload.PullRequest.User.Type),
		},
		Org:            payload.Repository.Owner.Login,
		Repo:           payload.Repository.Name,
		CommitSha:      payload.PullRequest.Head.Sha,
		InstallationID: payload.Installation.ID,
	}

	logger := o.logger.With(
		zap.String("decisionId", uuid.NewString()),
		zap.String("org", event.Org),
		zap.String("repo", event.Repo),
		zap.String("login", event.Author.Login),
	)
	startedAt := time.Now()

	gh, err := o.clients.NewInstallationClient(event.InstallationID)
	if err != nil {
		return o.failed(logger, err, "Error retrieving GitHub API instance on behalf of app installation.")
	}

	outcome, err := o.policy.Decide(ctx, gh, event)
	if err != nil {
		return o.failed(logger, err, "Error deciding CLA eligibility.")
	}

	logger.Info("eligibility decided",
		zap.String("category", string(outcome.Category)),
		zap.String("evidenceOrg", outcome.EvidenceOrg),
	)

	if err := gh.CreateCheck(ctx, o.checkForOutcome(event.Org, event.Repo, event.CommitSha, outcome, startedAt)); err != nil {
		return o.failed(logger, &ReportingError{Err: err}, "Error during GitHub Check creation.")
	}

	return Result{StatusCode: http.StatusOK, Outcome: outcome, Message: outcome.Title}
}

// HandleMergeGroup short-circuits merge-queue events: the queue entry
// re-validates a commit that was already checked as a standalone PR, so the
// policy is not re-run for the queue's head commit.
func (o *Orchestrator) HandleMergeGroup(ctx context.Context, payload types.MergeGroupPayload) Result {
	if payload.Action != "checks_requested" {
		return Result{StatusCode: http.StatusAccepted, Message: msgIgnoredEvent}
	}

	logger := o.logger.With(
		zap.String("decisionId", uuid.NewString()),
		zap.String("org", payload.Repository.Owner.Login),
		zap.String("repo", payload.Repository.Name),
		zap.String("sha", payload.MergeGroup.HeadSHA),
	)

	gh, err := o.clients.NewInstallationClient(payload.Installation.ID)
	if err != nil {
		return o.failed(logger, err, "Error retrieving GitHub API instance on behalf of app installation.")
	}

	outcome := mergeQueueOutcome()
	info := o.checkForOutcome(payload.Repository.Owner.Login, payload.Repository.Name, payload.MergeGroup.HeadSHA, outcome, time.Now())
	if err := gh.CreateCheck(ctx, info); err != nil {
		return o.failed(logger, &ReportingError{Err: err}, "Error during GitHub Check creation.")
	}

	return Result{StatusCode: http.StatusOK, Outcome: outcome, Message: outcome.Title}
}

func (o *Orchestrator) checkForOutcome(org, repo, sha string, outcome *types.EligibilityOutcome, startedAt time.Time) github.CheckInfo {
	info := github.CheckInfo{
		Org:        org,
		Repo:       repo,
		Sha:        sha,
		Status:     "completed",
		Conclusion: "success",
		Title:      outcome.Title,
		Summary:    outcome.Summary,
		StartedAt:  startedAt,
	}
	if outcome.Category == types.CategoryActionRequired {
		info.Conclusion = "action_required"
		info.DetailsURL = o.cfg.ClaSignURL
	}
	return info
}

func (o *Orchestrator) failed(logger *zap.Logger, err error, reason string) Result {
	logger.Error(reason, zap.Error(err))
	return Result{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("%s %v", reason, err),
	}
}
