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

package types

// AccountType is the GitHub account type of a pull request author.
type AccountType string

const (
	AccountTypeUser AccountType = "User"
	AccountTypeBot  AccountType = "Bot"
)

// Identity is a GitHub account as seen in a webhook payload. Login comparison
// against CLA form data must be case-insensitive: usernames typed into an
// agreement form may differ in case from the GitHub login.
type Identity struct {
	Login string      `json:"login"`
	Type  AccountType `json:"type"`
}

// PullRequestEvent is the slice of a pull_request webhook payload the
// eligibility decision needs. Built once per invocation, never persisted.
type PullRequestEvent struct {
	Action         string   `json:"action"`
	Author         Identity `json:"author"`
	Org            string   `json:"org"`
	Repo           string   `json:"repo"`
	CommitSha      string   `json:"commitSha"`
	InstallationID int64    `json:"installationId"`
}

// MergeGroupPayload is the merge_group.checks_requested webhook payload.
// Declared here because the webhook parsing library predates merge queues.
type MergeGroupPayload struct {
	Action     string `json:"action"`
	MergeGroup struct {
		HeadSHA string `json:"head_sha"`
	} `json:"merge_group"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	Installation struct {
		ID int64 `json:"id"`
	} `json:"installation"`
}

type AgreementStatus string

const (
	AgreementSigned     AgreementStatus = "SIGNED"
	AgreementFormFilled AgreementStatus = "FORM_FILLED"
)

const (
	claNameLong  = "Adobe Contributor License Agreement"
	claNameShort = "Adobe CLA"
)

// Agreement is a single e-signature document instance as returned by the
// agreement search API.
type Agreement struct {
	ID     string          `json:"agreementId"`
	Status AgreementStatus `json:"status"`
	Name   string          `json:"name"`
}

// IsCLACandidate reports whether the agreement is a signed (or form-filled)
// instance of a recognized CLA template. Only candidates are worth fetching
// form data for.
func (a Agreement) IsCLACandidate() bool {
	if a.Status != AgreementSigned && a.Status != AgreementFormFilled {
		return false
	}
	return a.Name == claNameLong || a.Name == claNameShort
}

// OutcomeCategory identifies which authorization path satisfied (or failed)
// the CLA requirement.
type OutcomeCategory string

const (
	CategoryBot               OutcomeCategory = "bot"
	CategoryOrgMember         OutcomeCategory = "org-member"
	CategoryTeamMember        OutcomeCategory = "team-member"
	CategoryAdjacentOrgMember OutcomeCategory = "adjacent-org-member"
	CategoryClaSigned         OutcomeCategory = "cla-signed"
	CategoryActionRequired    OutcomeCategory = "action-required"
)

// EligibilityOutcome is the terminal result of one eligibility decision.
// Exactly one outcome is produced per decision; it is never mutated after
// creation and is consumed once by the check reporter.
type EligibilityOutcome struct {
	Category    OutcomeCategory `json:"category"`
	EvidenceOrg string          `json:"evidenceOrg,omitempty"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
}
