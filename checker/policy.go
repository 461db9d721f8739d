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
	"strings"

	"go.uber.org/zap"

	"github.com/adobe/cla-bot/config"
	"github.com/adobe/cla-bot/github"
	"github.com/adobe/cla-bot/sign"
	"github.com/adobe/cla-bot/types"
)

// ILookupEngine resolves membership of a username inside signed agreements.
type ILookupEngine interface {
	FindMatchingUsernames(ctx context.Context, token string, agreementIDs []string, target string) ([]string, error)
}

// Policy decides a pull request author's CLA eligibility. Checks run in
// strict priority order (bot, then membership, then agreements); each
// external call is made at most once per decision, and a later step starts
// only after the previous one definitively did not apply.
type Policy struct {
	cfg    *config.Config
	store  sign.IAgreementStore
	engine ILookupEngine
	logger *zap.Logger
}

func NewPolicy(cfg *config.Config, store sign.IAgreementStore, engine ILookupEngine, logger *zap.Logger) *Policy {
	return &Policy{cfg: cfg, store: store, engine: engine, logger: logger}
}

// Decide returns exactly one outcome for the event, or an error when an
// external check failed in a way that is not a policy answer.
func (p *Policy) Decide(ctx context.Context, gh github.IIdentityProvider, event types.PullRequestEvent) (*types.EligibilityOutcome, error) {
	// Bots are never asked to sign anything.
	if event.Author.Type == types.AccountTypeBot {
		return botOutcome(), nil
	}

	// Orgs that opted out of membership-based exemption: everyone signs.
	if p.cfg.RequiresUniversalSigning(event.Org) {
		return p.checkAgreements(ctx, event)
	}

	// Sibling orgs with a designated employees team check team membership
	// instead of org membership.
	if team, ok := p.cfg.TeamExemption(event.Org); ok {
		status, err := gh.TeamMembership(ctx, event.Org, team, event.Author.Login)
		if err != nil {
			return nil, &MembershipCheckError{Org: event.Org, Login: event.Author.Login, Err: err}
		}
		if status == github.Member {
			return teamMemberOutcome(event.Org, team), nil
		}
		return p.checkAgreements(ctx, event)
	}

	status, err := gh.OrgMembership(ctx, event.Org, event.Author.Login)
	if err != nil {
		return nil, &MembershipCheckError{Org: event.Org, Login: event.Author.Login, Err: err}
	}
	if status == github.Member {
		return orgMemberOutcome(event.Org), nil
	}

	// Not a member of the org the PR targets, but maybe a member of the
	// home org. Only public membership is visible through a sibling org's
	// installation.
	if event.Org != p.cfg.HomeOrg {
		status, err := gh.PublicOrgMembership(ctx, p.cfg.HomeOrg, event.Author.Login)
		if err != nil {
			return nil, &MembershipCheckError{Org: p.cfg.HomeOrg, Login: event.Author.Login, Err: err}
		}
		if status == github.Member {
			return adjacentOrgMemberOutcome(p.cfg.HomeOrg), nil
		}
	}

	return p.checkAgreements(ctx, event)
}

// checkAgreements is the CLA-lookup branch: search agreements referencing
// the author, filter to signed CLA templates, then resolve username
// membership inside them.
func (p *Policy) checkAgreements(ctx context.Context, event types.PullRequestEvent) (*types.EligibilityOutcome, error) {
	token, err := p.store.AccessToken(ctx)
	if err != nil {
		return nil, &TokenError{Err: err}
	}

	agreements, err := p.store.SearchAgreements(ctx, token, event.Author.Login)
	if err != nil {
		return nil, &LookupError{Err: err}
	}

	var agreementIDs []string
	for _, agreement := range agreements {
		if agreement.IsCLACandidate() {
			agreementIDs = append(agreementIDs, agreement.ID)
		}
	}
	if len(agreementIDs) == 0 {
		p.logger.Debug("no qualifying agreements found",
			zap.String("login", event.Author.Login),
		)
		return actionRequiredOutcome(p.cfg.ClaSignURL), nil
	}

	usernames, err := p.engine.FindMatchingUsernames(ctx, token, agreementIDs, event.Author.Login)
	if err != nil {
		return nil, &LookupError{Err: err}
	}

	for _, username := range usernames {
		if strings.EqualFold(username, event.Author.Login) {
			return claSignedOutcome(event.Author.Login), nil
		}
	}
	return actionRequiredOutcome(p.cfg.ClaSignURL), nil
}
