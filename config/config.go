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

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config carries everything the bot reads from the environment. It is built
// once in main and handed to constructors; nothing reads ambient state after
// startup.
type Config struct {
	Addr string `env:"ADDR" envDefault:":4200"`

	GithubAppID         int64  `env:"APP_ID_GITHUB"`
	GithubKeyFile       string `env:"APP_KEY_GITHUB" envDefault:"cla-bot.pem"`
	GithubWebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`

	// HomeOrg is the canonical organization whose membership exempts an
	// author on any sibling org's repositories.
	HomeOrg string `env:"CLA_HOME_ORG" envDefault:"adobe"`

	// UniversalSignOrgs opt out of membership-based exemption entirely:
	// every author must have a signed agreement.
	UniversalSignOrgs []string `env:"CLA_UNIVERSAL_SIGN_ORGS" envSeparator:","`

	// TeamExemptions maps a sibling org to the team slug whose members are
	// treated as employees for that org.
	TeamExemptions map[string]string `env:"CLA_TEAM_EXEMPTIONS" envSeparator:"," envDefault:"magento:employees"`

	// InstallationIDs maps each org we operate in to the GitHub App
	// installation scoped to it. Used by the sign-webhook flow to re-check
	// open pull requests across all orgs.
	InstallationIDs map[string]int64 `env:"GITHUB_INSTALLATION_IDS" envSeparator:"," envDefault:"adobe:531387,AdobeDocs:574581,hubblestack:840208,magento:1375071"`

	SignClientID     string `env:"SIGN_CLIENT_ID"`
	SignClientSecret string `env:"SIGN_CLIENT_SECRET"`
	SignRefreshToken string `env:"SIGN_REFRESH_TOKEN"`
	SignBaseURL      string `env:"SIGN_BASE_URL" envDefault:"https://api.na1.echosign.com/api/rest"`
	SignTokenURL     string `env:"SIGN_TOKEN_URL" envDefault:"https://api.na2.echosign.com/oauth/refresh"`

	// ClaSignURL is where contributors are sent to sign.
	ClaSignURL string `env:"CLA_SIGN_URL" envDefault:"https://opensource.adobe.com/cla.html"`
}

// Load reads .env (if present) and then the process environment.
func Load(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration from environment: %w", err)
	}
	return cfg, nil
}

// RequiresUniversalSigning reports whether every author on org must sign,
// regardless of membership.
func (c *Config) RequiresUniversalSigning(org string) bool {
	for _, o := range c.UniversalSignOrgs {
		if o == org {
			return true
		}
	}
	return false
}

// TeamExemption returns the employee team slug for org, if the org uses the
// team-membership exemption model.
func (c *Config) TeamExemption(org string) (string, bool) {
	team, ok := c.TeamExemptions[org]
	return team, ok
}
