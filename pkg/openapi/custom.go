/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package openapi

import (
	"errors"
	"regexp"
)

// ErrNoAccessToken is raised when authentication succeeds without issuing a usable token.
var ErrNoAccessToken = errors.New("no access token was issued")

var accessTokenValidationRegex = regexp.MustCompile(`^\S+$`)

// AccessToken is an opaque bearer credential.  Any string decodes, use
// Valid to decide whether it can be sent as a bearer token.
type AccessToken struct {
	Value string
}

func (t *AccessToken) UnmarshalText(text []byte) error {
	*t = AccessToken{
		Value: string(text),
	}

	return nil
}

func (t AccessToken) MarshalText() ([]byte, error) {
	return []byte(t.Value), nil
}

func (t AccessToken) String() string {
	return t.Value
}

// Valid reports whether the token is non-empty and free of whitespace.
func (t AccessToken) Valid() bool {
	return accessTokenValidationRegex.MatchString(t.Value)
}

// Token returns the bearer token carried by the response, or ErrNoAccessToken
// when it is missing, null or unusable.
func (r *TokenResponse) Token() (string, error) {
	if r == nil || r.AccessToken == nil || !r.AccessToken.Valid() {
		return "", ErrNoAccessToken
	}

	return r.AccessToken.Value, nil
}
