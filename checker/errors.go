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

import "fmt"

// MembershipCheckError is an unexpected failure from a membership call. A
// clean "not a member" is never an error; it is a policy branch.
type MembershipCheckError struct {
	Org   string
	Login string
	Err   error
}

func (e *MembershipCheckError) Error() string {
	return fmt.Sprintf("checking membership of %s in %s: %v", e.Login, e.Org, e.Err)
}

func (e *MembershipCheckError) Unwrap() error { return e.Err }

// TokenError means the agreement-store access token could not be retrieved.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("retrieving agreement store access token: %v", e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// LookupError is a failed agreement search or form-data lookup, surfaced
// before any match was found.
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("looking up signed agreements: %v", e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// ReportingError means the eligibility decision was computed but publishing
// the check failed.
type ReportingError struct {
	Err error
}

func (e *ReportingError) Error() string {
	return fmt.Sprintf("reporting check: %v", e.Err)
}

func (e *ReportingError) Unwrap() error { return e.Err }
