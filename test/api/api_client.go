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

//nolint:revive // naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/onsi/ginkgo/v2"

	"github.com/nscaledev/posts-api-conformance/pkg/openapi"
)

// ErrUnexpectedStatus is wrapped by every StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// StatusError is returned when the server answers with a status other than
// the one the operation requires.
type StatusError struct {
	Method   string
	Path     string
	Expected int
	Actual   int
	Body     string
	TraceID  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: expected %d, got %d, body: %s (trace ID: %s)", e.Expected, e.Actual, e.Body, e.TraceID)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// IsClientError reports whether the status is in the 4xx range.
func IsClientError(status int) bool {
	return status >= http.StatusBadRequest && status < http.StatusInternalServerError
}

// RejectedStatus returns the status of a request the server refused with a
// client error.  Successes and server errors are not rejections.
func RejectedStatus(err error) (int, bool) {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || !IsClientError(statusErr.Actual) {
		return 0, false
	}

	return statusErr.Actual, true
}

type APIClient struct {
	baseURL   string
	client    *http.Client
	authToken string
	config    *TestConfig
	endpoints *Endpoints
	logger    logr.Logger
	validator *openapi.Validator
}

// Option customizes an APIClient.
type Option func(*APIClient)

// WithLogger replaces the default ginkgo logger.
func WithLogger(logger logr.Logger) Option {
	return func(c *APIClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *APIClient) {
		c.client = client
	}
}

func NewAPIClientWithConfig(config *TestConfig, options ...Option) (*APIClient, error) {
	return newAPIClientWithConfig(config, config.BaseURL, options...)
}

// common constructor logic.
func newAPIClientWithConfig(config *TestConfig, baseURL string, options ...Option) (*APIClient, error) {
	c := &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		config:    config,
		endpoints: NewEndpoints(),
		logger:    ginkgo.GinkgoLogr,
	}

	for _, o := range options {
		o(c)
	}

	if config.ValidateResponses {
		validator, err := openapi.NewValidator(c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("creating response validator: %w", err)
		}

		c.validator = validator
	}

	return c, nil
}

func (c *APIClient) SetAuthToken(token string) {
	c.authToken = token
}

// logError logs a generic error with trace context.
func (c *APIClient) logError(method, path string, duration time.Duration, traceParent string, err error, context string) {
	c.logger.Error(err, context, "method", method, "path", path, "duration", duration, "traceID", extractTraceID(traceParent))
}

// logUnexpectedStatus logs an unexpected HTTP status code.
func (c *APIClient) logUnexpectedStatus(method, path string, expectedStatus, actualStatus int, body, traceParent string) {
	c.logger.Info("unexpected status", "method", method, "path", path, "expected", expectedStatus, "got", actualStatus, "body", body, "traceID", extractTraceID(traceParent))
}

// generateTraceID creates a new W3C trace ID.
// A fresh trace ID per request lets a failure be found in the server logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

//nolint:cyclop // test code complexity is acceptable
func (c *APIClient) doRequest(ctx context.Context, method, path string, body any, expectedStatus int) (*http.Response, []byte, error) {
	fullURL := c.baseURL + path

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=ginkgo")
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logError(method, path, duration, traceParent, err, "http request failed")
		return nil, nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logError(method, path, duration, traceParent, err, "reading response body")
		return resp, nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		c.logger.Info("request completed", "method", method, "path", path, "status", resp.StatusCode, "duration", duration, "traceID", extractTraceID(traceParent))
	}

	if c.config.LogResponses && len(respBody) > 0 {
		c.logger.Info("response body", "method", method, "path", path, "body", string(respBody))
	}

	if expectedStatus > 0 && resp.StatusCode != expectedStatus {
		c.logUnexpectedStatus(method, path, expectedStatus, resp.StatusCode, string(respBody), traceParent)

		return resp, respBody, &StatusError{
			Method:   method,
			Path:     path,
			Expected: expectedStatus,
			Actual:   resp.StatusCode,
			Body:     string(respBody),
			TraceID:  extractTraceID(traceParent),
		}
	}

	if c.validator != nil {
		if err := c.validator.ValidateResponse(ctx, req, resp.StatusCode, resp.Header, respBody); err != nil {
			c.logError(method, path, duration, traceParent, err, "response failed schema validation")
			return resp, respBody, fmt.Errorf("%w (trace ID: %s)", err, extractTraceID(traceParent))
		}
	}

	return resp, respBody, nil
}

// decodeResponse unmarshals a response body into a new T.
func decodeResponse[T any](respBody []byte, what string) (*T, error) {
	var result T
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling %s response: %w", what, err)
	}

	return &result, nil
}

// Authenticate exchanges credentials for a token.  The token is not retained,
// callers decide whether to use it via SetAuthToken.
func (c *APIClient) Authenticate(ctx context.Context, login, password string) (*openapi.TokenResponse, error) {
	body := &openapi.AuthenticateRequest{
		Login:    login,
		Password: password,
	}

	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodPost, c.endpoints.Authenticate(), body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	return decodeResponse[openapi.TokenResponse](respBody, "token")
}

// CreatePost creates a new post.
func (c *APIClient) CreatePost(ctx context.Context, body openapi.PostWrite) (*openapi.PostRead, error) {
	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodPost, c.endpoints.CreatePost(), body, http.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	return decodeResponse[openapi.PostRead](respBody, "post")
}

// ListPosts lists a page of posts.
func (c *APIClient) ListPosts(ctx context.Context, params *openapi.ListPostsParams) (*openapi.PostList, error) {
	path, err := c.endpoints.ListPosts(params)
	if err != nil {
		return nil, err
	}

	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	return decodeResponse[openapi.PostList](respBody, "post list")
}

// ListPostsStatus lists posts and returns only the status code, whatever it is.
func (c *APIClient) ListPostsStatus(ctx context.Context, params *openapi.ListPostsParams) (int, error) {
	path, err := c.endpoints.ListPosts(params)
	if err != nil {
		return 0, err
	}

	//nolint:bodyclose // response body is closed in doRequest
	resp, _, err := c.doRequest(ctx, http.MethodGet, path, nil, 0)
	if err != nil {
		return 0, fmt.Errorf("listing posts: %w", err)
	}

	return resp.StatusCode, nil
}

// GetPost retrieves a specific post.
func (c *APIClient) GetPost(ctx context.Context, postID string) (*openapi.PostRead, error) {
	path, err := c.endpoints.GetPost(postID)
	if err != nil {
		return nil, err
	}

	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}

	return decodeResponse[openapi.PostRead](respBody, "post")
}

// GetPostStatus reads a post and returns only the status code, whatever it is.
// This is how deletion is confirmed.
func (c *APIClient) GetPostStatus(ctx context.Context, postID string) (int, error) {
	path, err := c.endpoints.GetPost(postID)
	if err != nil {
		return 0, err
	}

	//nolint:bodyclose // response body is closed in doRequest
	resp, _, err := c.doRequest(ctx, http.MethodGet, path, nil, 0)
	if err != nil {
		return 0, fmt.Errorf("getting post: %w", err)
	}

	return resp.StatusCode, nil
}

// UpdatePost fully replaces the writable fields of a post.
func (c *APIClient) UpdatePost(ctx context.Context, postID string, body openapi.PostWrite) (*openapi.PostRead, error) {
	path, err := c.endpoints.UpdatePost(postID)
	if err != nil {
		return nil, err
	}

	//nolint:bodyclose // response body is closed in doRequest
	_, respBody, err := c.doRequest(ctx, http.MethodPut, path, body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	return decodeResponse[openapi.PostRead](respBody, "post")
}

// DeletePost deletes a post.
func (c *APIClient) DeletePost(ctx context.Context, postID string) error {
	path, err := c.endpoints.DeletePost(postID)
	if err != nil {
		return err
	}

	//nolint:bodyclose // response body is closed in doRequest
	if _, _, err := c.doRequest(ctx, http.MethodDelete, path, nil, http.StatusNoContent); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	return nil
}
