/*
Copyright 2025 the Unikorn Authors.
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

//nolint:testpackage,revive // test package in suites is standard for these tests
package suites

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/posts-api-conformance/test/api"
)

var _ = Describe("Post Lifecycle", Ordered, ContinueOnFailure, func() {
	BeforeAll(func() {
		// Given: the session established once for the run
		// When: authentication did not yield a token
		// Then: this fails and every lifecycle step is skipped
		Expect(scenario.AuthError()).NotTo(HaveOccurred(), "Authentication should succeed (HTTP 200) and issue an access token")

		api.DeferRegistryCleanup(client, ctx, scenario.Registry())
	})

	for _, step := range api.LifecycleSteps {
		It("should "+step.Name, func() {
			runStep(step)
		})
	}
})
