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

package signwebhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adobe/cla-bot/checker"
	"github.com/adobe/cla-bot/config"
	"github.com/adobe/cla-bot/github"
	"github.com/adobe/cla-bot/lookup"
	"github.com/adobe/cla-bot/sign"
)

// Payload is the Adobe Sign webhook notification body.
type Payload struct {
	Event     string `json:"event"`
	Agreement struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"agreement"`
}

const claAgreementName = "Adobe CLA"

func (p Payload) relevant() bool {
	if p.Event != "AGREEMENT_WORKFLOW_COMPLETED" && p.Event != "AGREEMENT_ACTION_COMPLETED" {
		return false
	}
	return p.Agreement.ID != "" && p.Agreement.Name == claAgreementName
}

// Handler reacts to a completed CLA agreement by re-checking every open pull
// request from the newly signed users, in every org the bot is installed in.
type Handler struct {
	cfg     *config.Config
	store   sign.IAgreementStore
	clients github.IClientFactory
	logger  *zap.Logger
}

func New(cfg *config.Config, store sign.IAgreementStore, clients github.IClientFactory, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, store: store, clients: clients, logger: logger}
}

// Handle extracts the signed usernames from the completed agreement and sets
// a success check on each of their open pull requests. Failures on one org
// are collected, not fatal to the others.
func (h *Handler) Handle(ctx context.Context, payload Payload) checker.Result {
	if !payload.relevant() {
		return checker.Result{
			StatusCode: http.StatusOK,
			Message:    "Insufficient parameters for processing, aborting.",
		}
	}

	token, err := h.store.AccessToken(ctx)
	if err != nil {
		return h.failed(err, "Error during retrieval of Adobe Sign access token.")
	}

	raw, err := h.store.AgreementFormData(ctx, token, payload.Agreement.ID)
	if err != nil {
		return h.failed(err, "Error retrieving form data for completed agreement.")
	}

	usernames, err := lookup.ParseFormData(raw)
	if err != nil {
		return h.failed(err, "Error parsing form data for completed agreement.")
	}
	usernames = dedupe(usernames)
	if len(usernames) == 0 {
		return checker.Result{
			StatusCode: http.StatusOK,
			Message:    "No usernames found in completed agreement, nothing to re-check.",
		}
	}

	var (
		mu        sync.Mutex
		errors    []string
		completed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for org, installationID := range h.cfg.InstallationIDs {
		org, installationID := org, installationID
		g.Go(func() error {
			for _, failure := range h.recheckOrg(gctx, org, installationID, usernames, &completed, &mu) {
				mu.Lock()
				errors = append(errors, failure)
				mu.Unlock()
			}
			return nil
		})
	}
	// goroutines only collect failures, Wait cannot error here
	_ = g.Wait()

	users := strings.Join(usernames, ", ")
	if len(errors) > 0 {
		return checker.Result{
			StatusCode: http.StatusCreated,
			Message:    fmt.Sprintf("PRs set for %s failed: %s", users, strings.Join(errors, "\n")),
		}
	}
	if len(completed) == 0 {
		return checker.Result{
			StatusCode: http.StatusCreated,
			Message:    fmt.Sprintf("No PRs found for %s", users),
		}
	}
	return checker.Result{
		StatusCode: http.StatusCreated,
		Message:    fmt.Sprintf("PRs set for %s completed: %s", users, strings.Join(completed, "\n")),
	}
}

// recheckOrg finds open PRs authored by any signed user in one org and marks
// each head commit green. Returned strings are per-PR failure descriptions.
func (h *Handler) recheckOrg(ctx context.Context, org string, installationID int64, usernames []string, completed *[]string, mu *sync.Mutex) []string {
	gh, err := h.clients.NewInstallationClient(installationID)
	if err != nil {
		return []string{fmt.Sprintf("Error retrieving GitHub API instance on behalf of app installation for %s: %v", org, err)}
	}

	refs, err := gh.SearchOpenPullRequests(ctx, org, usernames)
	if err != nil {
		return []string{fmt.Sprintf("Error searching open pull requests for %s: %v", org, err)}
	}

	var failures []string
	for _, ref := range refs {
		head, err := gh.GetPullRequestHead(ctx, ref.Org, ref.Repo, ref.Number)
		if err != nil {
			failures = append(failures, fmt.Sprintf("Error retrieving pull request for %s/%s#%d: %v", ref.Org, ref.Repo, ref.Number, err))
			continue
		}

		info := github.CheckInfo{
			Org:        ref.Org,
			Repo:       ref.Repo,
			Sha:        head.Sha,
			Status:     "completed",
			Conclusion: "success",
			Title:      "CLA Signed",
			Summary:    "A Signed CLA has been found for the GitHub.com user " + head.AuthorLogin,
			StartedAt:  time.Now(),
		}
		if err := gh.CreateCheck(ctx, info); err != nil {
			failures = append(failures, fmt.Sprintf("Error creating check for %s/%s#%d: %v", ref.Org, ref.Repo, ref.Number, err))
			continue
		}

		mu.Lock()
		*completed = append(*completed, fmt.Sprintf("%s/%s#%d", ref.Org, ref.Repo, ref.Number))
		mu.Unlock()
	}
	return failures
}

func (h *Handler) failed(err error, reason string) checker.Result {
	h.logger.Error(reason, zap.Error(err))
	return checker.Result{
		StatusCode: http.StatusInternalServerError,
		Message:    fmt.Sprintf("%s %v", reason, err),
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
