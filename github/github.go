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
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v64/github"
)

// OrganizationsService handles communication with the organization related
// methods of the GitHub API.
// https://godoc.org/github.com/google/go-github/github#OrganizationsService
type OrganizationsService interface {
	IsMember(ctx context.Context, org, user string) (bool, *github.Response, error)
	IsPublicMember(ctx context.Context, org, user string) (bool, *github.Response, error)
}

// TeamsService handles communication with the team related methods of the
// GitHub API.
type TeamsService interface {
	GetTeamMembershipBySlug(ctx context.Context, org, slug, user string) (*github.Membership, *github.Response, error)
}

// ChecksService handles communication with the Checks API.
type ChecksService interface {
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, *github.Response, error)
}

// SearchService handles communication with the search related methods of the
// GitHub API.
type SearchService interface {
	Issues(ctx context.Context, query string, opts *github.SearchOptions) (*github.IssuesSearchResult, *github.Response, error)
}

// PullRequestsService handles communication with the pull request related
// methods of the GitHub API.
type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
}

// GHClient manages communication with the GitHub API.
// https://github.com/google/go-github/issues/113
type GHClient struct {
	Organizations OrganizationsService
	Teams         TeamsService
	Checks        ChecksService
	Search        SearchService
	PullRequests  PullRequestsService
}

// GHInterface defines all necessary methods.
// https://godoc.org/github.com/google/go-github/github#NewClient
type GHInterface interface {
	NewClient(httpClient *http.Client) GHClient
}

// GHCreator implements GHInterface.
type GHCreator struct{}

// NewClient returns a new GHClient instance.
func (g *GHCreator) NewClient(httpClient *http.Client) GHClient {
	client := github.NewClient(httpClient)
	return GHClient{
		Organizations: client.Organizations,
		Teams:         client.Teams,
		Checks:        client.Checks,
		Search:        client.Search,
		PullRequests:  client.PullRequests,
	}
}

var GHImpl GHInterface = &GHCreator{}

// MembershipStatus is the typed result of a membership check. A clean 404
// from GitHub means NotAMember; any other failure is returned as an error so
// callers never have to inspect error text to tell the two apart.
type MembershipStatus int

const (
	Member MembershipStatus = iota
	NotAMember
)

// CheckInfo is everything needed to publish one check run on a commit.
type CheckInfo struct {
	Org        string
	Repo       string
	Sha        string
	Status     string
	Conclusion string
	Title      string
	Summary    string
	DetailsURL string
	StartedAt  time.Time
}

// PullRequestRef locates one open pull request found via search.
type PullRequestRef struct {
	Org    string
	Repo   string
	Number int
}

// PullRequestHead is the head commit and author of one pull request.
type PullRequestHead struct {
	Sha         string
	AuthorLogin string
}

// IIdentityProvider is the membership-check surface the eligibility policy
// consumes.
type IIdentityProvider interface {
	OrgMembership(ctx context.Context, org, login string) (MembershipStatus, error)
	PublicOrgMembership(ctx context.Context, org, login string) (MembershipStatus, error)
	TeamMembership(ctx context.Context, org, teamSlug, login string) (MembershipStatus, error)
}

// ICheckReporter publishes check runs.
type ICheckReporter interface {
	CreateCheck(ctx context.Context, info CheckInfo) error
}

// IInstallationClient is the full per-installation GitHub surface.
type IInstallationClient interface {
	IIdentityProvider
	ICheckReporter
	SearchOpenPullRequests(ctx context.Context, org string, authors []string) ([]PullRequestRef, error)
	GetPullRequestHead(ctx context.Context, org, repo string, number int) (PullRequestHead, error)
}

// IClientFactory builds installation-scoped clients. The installation id
// arrives with every webhook event, so clients are constructed per decision.
type IClientFactory interface {
	NewInstallationClient(installationID int64) (IInstallationClient, error)
}

// ClientFactory creates InstallationClients authenticated as the GitHub App
// via its private key.
type ClientFactory struct {
	appID   int64
	keyFile string
	logger  *zap.Logger
}

var _ IClientFactory = (*ClientFactory)(nil)

func NewClientFactory(appID int64, keyFile string, logger *zap.Logger) *ClientFactory {
	return &ClientFactory{appID: appID, keyFile: keyFile, logger: logger}
}

func (f *ClientFactory) NewInstallationClient(installationID int64) (IInstallationClient, error) {
	itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, f.appID, installationID, f.keyFile)
	if err != nil {
		f.logger.Error("failed to create installation transport",
			zap.Int64("appId", f.appID),
			zap.Int64("installationId", installationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("creating GitHub App installation transport: %w", err)
	}

	return &InstallationClient{
		client: GHImpl.NewClient(&http.Client{Transport: itr}),
		logger: f.logger.With(zap.Int64("installationId", installationID)),
	}, nil
}

// InstallationClient is a GitHub client scoped to one App installation.
type InstallationClient struct {
	client GHClient
	logger *zap.Logger
}

var _ IInstallationClient = (*InstallationClient)(nil)

// OrgMembership checks whether login is a member (public or private) of org.
func (c *InstallationClient) OrgMembership(ctx context.Context, org, login string) (MembershipStatus, error) {
	member, _, err := c.client.Organizations.IsMember(ctx, org, login)
	return boolMembership(member, err)
}

// PublicOrgMembership checks public membership only. Needed when asking
// about the home org through a sibling org's installation, which has no
// permission to see private members.
func (c *InstallationClient) PublicOrgMembership(ctx context.Context, org, login string) (MembershipStatus, error) {
	member, _, err := c.client.Organizations.IsPublicMember(ctx, org, login)
	return boolMembership(member, err)
}

// boolMembership maps go-github's boolean-response convention (204 true,
// 404 false with nil error) onto MembershipStatus.
func boolMembership(member bool, err error) (MembershipStatus, error) {
	if err != nil {
		return NotAMember, err
	}
	if member {
		return Member, nil
	}
	return NotAMember, nil
}

// TeamMembership checks whether login is an active member of the named team.
func (c *InstallationClient) TeamMembership(ctx context.Context, org, teamSlug, login string) (MembershipStatus, error) {
	membership, resp, err := c.client.Teams.GetTeamMembershipBySlug(ctx, org, teamSlug, login)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return NotAMember, nil
		}
		return NotAMember, err
	}
	if membership.GetState() == "active" {
		return Member, nil
	}
	return NotAMember, nil
}

const checkName = "Adobe CLA Signed?"

// CreateCheck publishes one check run on the commit named by info.
func (c *InstallationClient) CreateCheck(ctx context.Context, info CheckInfo) error {
	opts := github.CreateCheckRunOptions{
		Name:        checkName,
		HeadSHA:     info.Sha,
		Status:      github.String(info.Status),
		Conclusion:  github.String(info.Conclusion),
		StartedAt:   &github.Timestamp{Time: info.StartedAt},
		CompletedAt: &github.Timestamp{Time: time.Now()},
		Output: &github.CheckRunOutput{
			Title:   github.String(info.Title),
			Summary: github.String(info.Summary),
		},
	}
	if info.DetailsURL != "" {
		opts.DetailsURL = github.String(info.DetailsURL)
	}

	c.logger.Debug("creating check run",
		zap.String("org", info.Org),
		zap.String("repo", info.Repo),
		zap.String("sha", info.Sha),
		zap.String("conclusion", info.Conclusion),
	)

	_, _, err := c.client.Checks.CreateCheckRun(ctx, info.Org, info.Repo, opts)
	if err != nil {
		return fmt.Errorf("creating check run for %s/%s@%s: %w", info.Org, info.Repo, info.Sha, err)
	}
	return nil
}

// SearchOpenPullRequests finds open pull requests in org authored by any of
// the given users.
// https://docs.github.com/en/rest/search#search-issues-and-pull-requests
func (c *InstallationClient) SearchOpenPullRequests(ctx context.Context, org string, authors []string) ([]PullRequestRef, error) {
	query := fmt.Sprintf("is:pr is:open org:%s", org)
	for _, author := range authors {
		query += " author:" + author
	}

	result, _, err := c.client.Search.Issues(ctx, query, &github.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("searching open pull requests in %s: %w", org, err)
	}

	var refs []PullRequestRef
	for _, issue := range result.Issues {
		// repository_url is .../repos/{org}/{repo}
		parts := strings.Split(issue.GetRepositoryURL(), "/")
		refs = append(refs, PullRequestRef{
			Org:    org,
			Repo:   parts[len(parts)-1],
			Number: issue.GetNumber(),
		})
	}
	return refs, nil
}

// GetPullRequestHead returns the head commit SHA and author login of one
// pull request.
func (c *InstallationClient) GetPullRequestHead(ctx context.Context, org, repo string, number int) (PullRequestHead, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, org, repo, number)
	if err != nil {
		return PullRequestHead{}, fmt.Errorf("retrieving pull request %s/%s#%d: %w", org, repo, number, err)
	}
	return PullRequestHead{
		Sha:         pr.GetHead().GetSHA(),
		AuthorLogin: pr.GetUser().GetLogin(),
	}, nil
}
