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

// Package api provides integration test utilities for the Posts API.
//
// # Separate Client Implementation
//
// The APIClient here is written by hand rather than generated from the
// API document in pkg/openapi.  Any legitimate change to the API must have a
// compensating change in this client, which keeps API evolution explicit and
// reviewable.  The client also carries features tailored for testing:
//   - W3C trace context propagation for request correlation
//   - structured logging through logr, ginkgo's logger by default
//   - optional validation of every response against the API document
//   - direct access to HTTP status codes where the contract only
//     constrains what a status must not be
//
// # Configuration
//
// Tests are configured from the environment, optionally seeded from a
// .test.env file:
//
//	TEST_API_BASE_URL          API root, defaults to http://localhost
//	TEST_API_LOGIN             required
//	TEST_API_PASSWORD          required
//	TEST_API_REQUEST_TIMEOUT   per request timeout, none by default
//	TEST_API_LOG_REQUESTS      log every request
//	TEST_API_LOG_RESPONSES     log every response body
//	TEST_API_VALIDATE_SCHEMA   validate responses against the API document
package api
