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

package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FormDataFetcher is the one agreement-store call the engine needs.
type FormDataFetcher interface {
	AgreementFormData(ctx context.Context, token, agreementID string) (string, error)
}

// Engine resolves whether any of a set of signed agreements lists a target
// GitHub username. All per-agreement fetches run concurrently; the first
// match wins and cancels the rest.
type Engine struct {
	store  FormDataFetcher
	logger *zap.Logger
}

func NewEngine(store FormDataFetcher, logger *zap.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// FindMatchingUsernames fetches and parses the form data of every agreement
// and tests target against the extracted usernames, case-insensitively.
// It returns []string{target} as soon as any agreement matches, or an empty
// result only after every fetch has settled. Cancellation of the losing
// fetches is advisory: a fetch that already produced a response is simply
// discarded.
//
// A fetch or parse failure before any match fails the whole call. A failure
// after the match has latched never overrides the success.
func (e *Engine) FindMatchingUsernames(ctx context.Context, token string, agreementIDs []string, target string) ([]string, error) {
	if len(agreementIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var matched atomic.Bool
	g, gctx := errgroup.WithContext(ctx)

	for _, agreementID := range agreementIDs {
		agreementID := agreementID
		g.Go(func() error {
			raw, err := e.store.AgreementFormData(gctx, token, agreementID)
			if err != nil {
				if matched.Load() {
					// the result already latched; this fetch was cancelled
					// or lost the race, either way it no longer matters
					return nil
				}
				return fmt.Errorf("agreement %s: %w", agreementID, err)
			}

			usernames, err := ParseFormData(raw)
			if err != nil {
				if matched.Load() {
					return nil
				}
				return fmt.Errorf("agreement %s: %w", agreementID, err)
			}

			for _, username := range usernames {
				if strings.EqualFold(username, target) {
					e.logger.Debug("username found in agreement",
						zap.String("agreementId", agreementID),
					)
					matched.Store(true)
					cancel()
					return nil
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if matched.Load() {
		return []string{target}, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}
