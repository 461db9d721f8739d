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
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
)

// Form-data column names vary by agreement template. CCLA forms collect
// multiple employee usernames in a text area, ICLA forms a single username,
// and newer templates use a dedicated column.
const (
	fieldCorporateUsernames = "Custom Field 8"
	fieldIndividualUsername = "Custom Field 1"
	fieldGithubUsername     = "githubUsername"
)

var multiValueSeparator = regexp.MustCompile(`[\s,]+`)

// ParseFormData extracts GitHub usernames from an agreement's exported form
// data. All populated fields contribute (they are unioned, not exclusive);
// empty or whitespace-only values and missing columns are ignored. Zero
// usernames is a valid result, not an error.
func ParseFormData(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing agreement form data: %w", err)
	}
	if len(records) < 2 {
		// header row only, nothing was filled in
		return nil, nil
	}

	header := records[0]
	row := records[1]
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		}
	}

	var usernames []string
	if v := strings.TrimSpace(fields[fieldCorporateUsernames]); v != "" {
		usernames = append(usernames, multiValueSeparator.Split(v, -1)...)
	}
	if v := strings.TrimSpace(fields[fieldIndividualUsername]); v != "" {
		usernames = append(usernames, v)
	}
	if v := strings.TrimSpace(fields[fieldGithubUsername]); v != "" {
		usernames = append(usernames, v)
	}
	return usernames, nil
}
