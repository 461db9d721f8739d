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
	"fmt"

	"github.com/adobe/cla-bot/types"
)

func botOutcome() *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category: types.CategoryBot,
		Title:    "✓ Bot",
		Summary:  "Pull request issued by a bot account, carry on.",
	}
}

func orgMemberOutcome(org string) *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category:    types.CategoryOrgMember,
		EvidenceOrg: org,
		Title:       "✓ Adobe Employee",
		Summary:     fmt.Sprintf("Pull request issued by an Adobe Employee (based on membership in github.com/%s), carry on.", org),
	}
}

func teamMemberOutcome(org, team string) *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category:    types.CategoryTeamMember,
		EvidenceOrg: org,
		Title:       "✓ Adobe Employee",
		Summary:     fmt.Sprintf("Pull request issued by an Adobe Employee (based on membership in the %s/%s team), carry on.", org, team),
	}
}

func adjacentOrgMemberOutcome(homeOrg string) *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category:    types.CategoryAdjacentOrgMember,
		EvidenceOrg: homeOrg,
		Title:       "✓ Adobe Employee",
		Summary:     fmt.Sprintf("Pull request issued by an Adobe Employee (based on membership in github.com/%s), carry on.", homeOrg),
	}
}

func claSignedOutcome(login string) *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category: types.CategoryClaSigned,
		Title:    "CLA Signed",
		Summary:  "A Signed CLA has been found for the GitHub.com user " + login,
	}
}

func mergeQueueOutcome() *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category: types.CategoryClaSigned,
		Title:    "CLA Signed",
		Summary:  "Merge queue entry for a previously verified pull request, carry on.",
	}
}

func actionRequiredOutcome(signURL string) *types.EligibilityOutcome {
	return &types.EligibilityOutcome{
		Category: types.CategoryActionRequired,
		Title:    "Sign the Adobe CLA!",
		Summary: fmt.Sprintf(`
No signed agreements were found. Please [sign the Adobe CLA](%s)! Once signed, close and re-open your pull request to run the check again.

If you have any questions, contact Adobe's Open Source Office by mentioning them on the pull request with **@adobe/open-source-office** or via email <grp-opensourceoffice@adobe.com>.

If you believe this was a mistake, please report an issue at [adobe/cla-bot](https://github.com/adobe/cla-bot/issues).`, signURL),
	}
}
