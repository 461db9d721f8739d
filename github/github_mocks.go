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

package github

import (
	"context"
	"net/http"

	"github.com/google/go-github/v64/github"
)

// Hand-written mocks for the go-github service interfaces and the
// installation-client surface, shared by tests across packages.

// OrganizationsMock mocks OrganizationsService.
type OrganizationsMock struct {
	IsMemberResult       bool
	IsMemberError        error
	IsMemberCalls        int
	IsPublicMemberResult bool
	IsPublicMemberError  error
	IsPublicMemberCalls  int
}

var _ OrganizationsService = (*OrganizationsMock)(nil)

//goland:noinspection GoUnusedParameter
func (o *OrganizationsMock) IsMember(ctx context.Context, org, user string) (bool, *github.Response, error) {
	o.IsMemberCalls++
	return o.IsMemberResult, nil, o.IsMemberError
}

//goland:noinspection GoUnusedParameter
func (o *OrganizationsMock) IsPublicMember(ctx context.Context, org, user string) (bool, *github.Response, error) {
	o.IsPublicMemberCalls++
	return o.IsPublicMemberResult, nil, o.IsPublicMemberError
}

// TeamsMock mocks TeamsService.
type TeamsMock struct {
	Membership         *github.Membership
	MembershipResponse *github.Response
	MembershipError    error
	Calls              int
}

var _ TeamsService = (*TeamsMock)(nil)

//goland:noinspection GoUnusedParameter
func (t *TeamsMock) GetTeamMembershipBySlug(ctx context.Context, org, slug, user string) (*github.Membership, *github.Response, error) {
	t.Calls++
	return t.Membership, t.MembershipResponse, t.MembershipError
}

// ChecksMock mocks ChecksService and records the options it was called with.
type ChecksMock struct {
	CreatedCheckRuns []github.CreateCheckRunOptions
	CreateError      error
}

var _ ChecksService = (*ChecksMock)(nil)

//goland:noinspection GoUnusedParameter
func (c *ChecksMock) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, *github.Response, error) {
	c.CreatedCheckRuns = append(c.CreatedCheckRuns, opts)
	if c.CreateError != nil {
		return nil, nil, c.CreateError
	}
	return &github.CheckRun{Name: github.String(opts.Name)}, nil, nil
}

// SearchMock mocks SearchService.
type SearchMock struct {
	Result      *github.IssuesSearchResult
	SearchError error
	Queries     []string
}

var _ SearchService = (*SearchMock)(nil)

//goland:noinspection GoUnusedParameter
func (s *SearchMock) Issues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, *github.Response, error) {
	s.Queries = append(s.Queries, query)
	return s.Result, nil, s.SearchError
}

// PullRequestsMock mocks PullRequestsService.
type PullRequestsMock struct {
	PullRequest *github.PullRequest
	GetError    error
}

var _ PullRequestsService = (*PullRequestsMock)(nil)

//goland:noinspection GoUnusedParameter
func (p *PullRequestsMock) Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error) {
	return p.PullRequest, nil, p.GetError
}

// GHMock implements GHInterface.
type GHMock struct {
	OrganizationsMock OrganizationsMock
	TeamsMock         TeamsMock
	ChecksMock        ChecksMock
	SearchMock        SearchMock
	PullRequestsMock  PullRequestsMock
}

var _ GHInterface = (*GHMock)(nil)

//goland:noinspection GoUnusedParameter
func (g *GHMock) NewClient(httpClient *http.Client) GHClient {
	return GHClient{
		Organizations: &g.OrganizationsMock,
		Teams:         &g.TeamsMock,
		Checks:        &g.ChecksMock,
		Search:        &g.SearchMock,
		PullRequests:  &g.PullRequestsMock,
	}
}

// InstallationClientMock mocks IInstallationClient for tests above the
// service layer.
type InstallationClientMock struct {
	OrgMembershipStatus      MembershipStatus
	OrgMembershipError       error
	OrgMembershipCalls       int
	PublicMembershipStatus   MembershipStatus
	PublicMembershipError    error
	PublicMembershipCalls    int
	TeamMembershipStatus     MembershipStatus
	TeamMembershipError      error
	TeamMembershipCalls      int
	CreatedChecks            []CheckInfo
	CreateCheckError         error
	SearchResults            []PullRequestRef
	SearchError              error
	SearchCalls              int
	PullRequestHeadResult    PullRequestHead
	PullRequestHeadError     error
}

var _ IInstallationClient = (*InstallationClientMock)(nil)

//goland:noinspection GoUnusedParameter
func (m *InstallationClientMock) OrgMembership(ctx context.Context, org, login string) (MembershipStatus, error) {
	m.OrgMembershipCalls++
	return m.OrgMembershipStatus, m.OrgMembershipError
}

//goland:noinspection GoUnusedParameter
func (m *InstallationClientMock) PublicOrgMembership(ctx context.Context, org, login string) (MembershipStatus, error) {
	m.PublicMembershipCalls++
	return m.PublicMembershipStatus, m.PublicMembershipError
}

//goland:noinspection GoUnusedParameter
func (m *InstallationClientMock) TeamMembership(ctx context.Context, org, teamSlug, login string) (MembershipStatus, error) {
	m.TeamMembershipCalls++
	return m.TeamMembershipStatus, m.TeamMembershipError
}

//goland:noinspection GoUnusedParameter
func (m *InstallationClientMock) CreateCheck(ctx context.Context, info CheckInfo) error {
	m.CreatedChecks = append(m.CreatedChecks, info)
	return m.CreateCheckError
}

//goland:noinspection GoUnusedParameter
func (m *InstallationClientMock) SearchOpenPullRequests(ctx context.Context, org string, authors []string) ([]PullRequestRef, error) {
	m.SearchCalls++
	return m.SearchResults, m.SearchError
}

//goland:noinspection GoUnusedParameter
func (m *InstallationClientMock) GetPullRequestHead(ctx context.Context, org, repo string, number int) (PullRequestHead, error) {
	return m.PullRequestHeadResult, m.PullRequestHeadError
}

// ClientFactoryMock mocks IClientFactory.
type ClientFactoryMock struct {
	Client       *InstallationClientMock
	FactoryError error
	Requested    []int64
}

var _ IClientFactory = (*ClientFactoryMock)(nil)

func (f *ClientFactoryMock) NewInstallationClient(installationID int64) (IInstallationClient, error) {
	f.Requested = append(f.Requested, installationID)
	if f.FactoryError != nil {
		return nil, f.FactoryError
	}
	return f.Client, nil
}
