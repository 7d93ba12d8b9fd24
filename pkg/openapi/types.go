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
	"encoding/json"
)

// AuthenticateRequest is the body of POST /api/v1/authenticate.
type AuthenticateRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful authentication.  Fields are
// pointers so callers can tell a missing or null token from a present one.
type TokenResponse struct {
	AccessToken  *AccessToken `json:"access_token,omitempty"`
	RefreshToken *string      `json:"refresh_token,omitempty"`
}

// PostWrite is used to create a post, and to fully replace one on update.
type PostWrite struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsPrivate   bool     `json:"is_private"`
	Tags        []string `json:"tags"`
}

// PostRead is a post as returned by the server.  Timestamps are kept raw,
// only their presence is checked, their format is left to schema validation.
type PostRead struct {
	Id          *string         `json:"id,omitempty"` //nolint:revive,stylecheck // matches generated naming
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	CreatorId   *string         `json:"creator_id,omitempty"` //nolint:revive,stylecheck // matches generated naming
	IsPrivate   *bool           `json:"is_private,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	CreatedAt   json.RawMessage `json:"created_at,omitempty"`
	UpdatedAt   json.RawMessage `json:"updated_at,omitempty"`
}

// PostList is a page of posts.  Paging fields are kept raw, a present but
// null or non-numeric value is still a present field.
type PostList struct {
	Posts      *[]PostRead     `json:"posts,omitempty"`
	TotalCount json.RawMessage `json:"total_count,omitempty"`
	Page       json.RawMessage `json:"page,omitempty"`
	PageSize   json.RawMessage `json:"page_size,omitempty"`
}

// ListPostsParams defines parameters for listing posts.
type ListPostsParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int `form:"page_size,omitempty" json:"page_size,omitempty"`
}

// Error is the generic error body returned by the gateway.
type Error struct {
	Error string `json:"error"`
}
