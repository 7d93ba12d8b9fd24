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
	"context"
	"errors"
	"fmt"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"

	"github.com/nscaledev/posts-api-conformance/pkg/openapi"

	"k8s.io/utils/ptr"
)

var (
	// ErrNoPost is raised by steps that need a created post when there is none.
	// It marks the step as skipped, not failed.
	ErrNoPost = errors.New("no post was created")

	// ErrNotAuthenticated is raised by steps run without a session.
	ErrNotAuthenticated = errors.New("authentication failed")

	// ErrAssertion is raised when a response is delivered but has the wrong content.
	ErrAssertion = errors.New("assertion failed")
)

// Outcome is how a step is reported.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// OutcomeOf classifies the error returned by a step.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomePassed
	case errors.Is(err, ErrNoPost), errors.Is(err, ErrNotAuthenticated):
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// Step is one request/assert stage of the post lifecycle.
type Step struct {
	Name string
	Run  func(s *Scenario, ctx context.Context) error
}

// StepResult records what happened to a step.
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// LifecycleSteps run in order after authentication.
//
//nolint:gochecknoglobals
var LifecycleSteps = []Step{
	{Name: "create a post", Run: (*Scenario).CreatePost},
	{Name: "list posts", Run: (*Scenario).ListPosts},
	{Name: "get a post", Run: (*Scenario).GetPost},
	{Name: "update a post", Run: (*Scenario).UpdatePost},
	{Name: "delete every created post", Run: (*Scenario).DeletePosts},
}

// Scenario holds the session shared by every step of a run: one client, one
// token fetched once, and the registry of posts created along the way.
type Scenario struct {
	client   *APIClient
	config   *TestConfig
	registry *PostRegistry
	authErr  error
	token    string
}

// NewScenario returns an unauthenticated scenario.
func NewScenario(client *APIClient, config *TestConfig) *Scenario {
	return &Scenario{
		client:   client,
		config:   config,
		registry: NewPostRegistry(),
		authErr:  ErrNotAuthenticated,
	}
}

func (s *Scenario) Registry() *PostRegistry {
	return s.registry
}

// Authenticate logs in with the configured credentials and installs the token
// on the client.  The outcome is remembered, see AuthError.
func (s *Scenario) Authenticate(ctx context.Context) error {
	s.authErr = s.authenticate(ctx)

	return s.authErr
}

func (s *Scenario) authenticate(ctx context.Context) error {
	response, err := s.client.Authenticate(ctx, s.config.Login, s.config.Password)
	if err != nil {
		return err
	}

	token, err := response.Token()
	if err != nil {
		return err
	}

	s.token = token
	s.client.SetAuthToken(token)

	return nil
}

// AuthError is nil once authentication has succeeded.
func (s *Scenario) AuthError() error {
	return s.authErr
}

// Authenticated reports whether a session token is held.
func (s *Scenario) Authenticated() bool {
	return s.authErr == nil && s.token != ""
}

// CreatePost creates the canonical post and registers its ID.
func (s *Scenario) CreatePost(ctx context.Context) error {
	payload := NewPostPayload().Build()

	post, err := s.client.CreatePost(ctx, payload)
	if err != nil {
		return err
	}

	if err := check(func(g types.Gomega) { checkPostEchoes(g, post, payload) }); err != nil {
		return err
	}

	s.registry.Add(*post.Id)

	return nil
}

// ListPosts lists the first page of ten posts.
func (s *Scenario) ListPosts(ctx context.Context) error {
	params := &openapi.ListPostsParams{
		Page:     ptr.To(0),
		PageSize: ptr.To(10),
	}

	list, err := s.client.ListPosts(ctx, params)
	if err != nil {
		return err
	}

	return check(func(g types.Gomega) { checkPostList(g, list) })
}

// GetPost reads back the first created post.
func (s *Scenario) GetPost(ctx context.Context) error {
	postID, ok := s.registry.First()
	if !ok {
		return ErrNoPost
	}

	post, err := s.client.GetPost(ctx, postID)
	if err != nil {
		return err
	}

	return check(func(g types.Gomega) { checkPostFields(g, post, postID) })
}

// UpdatePost fully replaces the first created post.
func (s *Scenario) UpdatePost(ctx context.Context) error {
	postID, ok := s.registry.First()
	if !ok {
		return ErrNoPost
	}

	payload := UpdatedPostPayload().Build()

	post, err := s.client.UpdatePost(ctx, postID, payload)
	if err != nil {
		return err
	}

	return check(func(g types.Gomega) { checkPostUpdated(g, post, payload) })
}

// DeletePosts deletes every created post and confirms each is gone.
func (s *Scenario) DeletePosts(ctx context.Context) error {
	if s.registry.Empty() {
		return ErrNoPost
	}

	return DeleteRegisteredPosts(ctx, s.client, s.registry)
}

// Run executes authentication then every lifecycle step.  When authentication
// fails every step is skipped, otherwise a failing step does not stop later ones.
func (s *Scenario) Run(ctx context.Context) []StepResult {
	results := make([]StepResult, 0, len(LifecycleSteps)+1)

	if err := s.Authenticate(ctx); err != nil {
		results = append(results, StepResult{Name: "authenticate", Outcome: OutcomeFailed, Err: err})

		for _, step := range LifecycleSteps {
			results = append(results, StepResult{Name: step.Name, Outcome: OutcomeSkipped, Err: fmt.Errorf("%w: %w", ErrNotAuthenticated, err)})
		}

		return results
	}

	results = append(results, StepResult{Name: "authenticate", Outcome: OutcomePassed})

	for _, step := range LifecycleSteps {
		err := step.Run(s, ctx)

		results = append(results, StepResult{Name: step.Name, Outcome: OutcomeOf(err), Err: err})
	}

	return results
}

type assertionFailure string

// check runs gomega assertions against a private instance and returns the
// first failure as an error, so steps can run with or without ginkgo.
func check(assertions func(g types.Gomega)) (err error) {
	g := gomega.NewGomega(func(message string, _ ...int) {
		panic(assertionFailure(message))
	})

	defer func() {
		if r := recover(); r != nil {
			failure, ok := r.(assertionFailure)
			if !ok {
				panic(r)
			}

			err = fmt.Errorf("%w: %s", ErrAssertion, string(failure))
		}
	}()

	assertions(g)

	return nil
}
