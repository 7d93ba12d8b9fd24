/*
Copyright 2024-2025 the Unikorn Authors.
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

package api

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/nscaledev/posts-api-conformance/pkg/openapi"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Authentication endpoints.
func (e *Endpoints) Authenticate() string {
	return "/api/v1/authenticate"
}

// Post management endpoints.
func (e *Endpoints) CreatePost() string {
	return "/api/v1/posts"
}

func (e *Endpoints) ListPosts(params *openapi.ListPostsParams) (string, error) {
	path := "/api/v1/posts"

	if params == nil {
		return path, nil
	}

	query := url.Values{}

	if params.Page != nil {
		if err := addQueryParam(query, "page", *params.Page); err != nil {
			return "", err
		}
	}

	if params.PageSize != nil {
		if err := addQueryParam(query, "page_size", *params.PageSize); err != nil {
			return "", err
		}
	}

	if len(query) == 0 {
		return path, nil
	}

	return path + "?" + query.Encode(), nil
}

func (e *Endpoints) GetPost(postID string) (string, error) {
	return postPath(postID)
}

func (e *Endpoints) UpdatePost(postID string) (string, error) {
	return postPath(postID)
}

func (e *Endpoints) DeletePost(postID string) (string, error) {
	return postPath(postID)
}

func postPath(postID string) (string, error) {
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "postID", runtime.ParamLocationPath, postID)
	if err != nil {
		return "", fmt.Errorf("styling post ID: %w", err)
	}

	return fmt.Sprintf("/api/v1/posts/%s", pathParam), nil
}

// addQueryParam styles a parameter as form/explode and merges it into query.
func addQueryParam(query url.Values, name string, value any) error {
	fragment, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("styling %s: %w", name, err)
	}

	parsed, err := url.ParseQuery(fragment)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	for k, v := range parsed {
		for _, v2 := range v {
			query.Add(k, v2)
		}
	}

	return nil
}
