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

package api

import (
	"slices"

	"github.com/nscaledev/posts-api-conformance/pkg/openapi"
)

// Canonical scenario payloads.
const (
	TestPostTitle       = "Test Post"
	TestPostDescription = "This is a test post"

	UpdatedPostTitle       = "Updated Test Post"
	UpdatedPostDescription = "This is an updated test post"
)

// PostPayloadBuilder builds post payloads for testing.
type PostPayloadBuilder struct {
	payload openapi.PostWrite
}

// NewPostPayload creates a new post payload builder with the scenario defaults.
func NewPostPayload() *PostPayloadBuilder {
	return &PostPayloadBuilder{
		payload: openapi.PostWrite{
			Title:       TestPostTitle,
			Description: TestPostDescription,
			IsPrivate:   false,
			Tags:        []string{"test", "integration"},
		},
	}
}

// UpdatedPostPayload creates a builder holding the full replacement used by the update step.
func UpdatedPostPayload() *PostPayloadBuilder {
	return NewPostPayload().
		WithTitle(UpdatedPostTitle).
		WithDescription(UpdatedPostDescription).
		WithPrivate(true).
		WithTags("updated", "test")
}

// WithTitle sets the post title.
func (b *PostPayloadBuilder) WithTitle(title string) *PostPayloadBuilder {
	b.payload.Title = title
	return b
}

// WithDescription sets the post description.
func (b *PostPayloadBuilder) WithDescription(desc string) *PostPayloadBuilder {
	b.payload.Description = desc
	return b
}

// WithPrivate sets the post visibility.
func (b *PostPayloadBuilder) WithPrivate(private bool) *PostPayloadBuilder {
	b.payload.IsPrivate = private
	return b
}

// WithTags replaces the post tags.
func (b *PostPayloadBuilder) WithTags(tags ...string) *PostPayloadBuilder {
	b.payload.Tags = slices.Clone(tags)
	return b
}

// Build returns the completed post payload.
func (b *PostPayloadBuilder) Build() openapi.PostWrite {
	payload := b.payload
	payload.Tags = slices.Clone(b.payload.Tags)

	return payload
}
