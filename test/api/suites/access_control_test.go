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
	"net/http"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/posts-api-conformance/test/api"
)

var _ = Describe("Security and Authentication", func() {
	Context("When accessing the API without valid credentials", func() {
		var anonymous *api.APIClient

		BeforeEach(func() {
			var err error

			anonymous, err = api.NewAPIClientWithConfig(config)
			Expect(err).NotTo(HaveOccurred(), "Failed to create API client")
		})

		It("should reject requests with missing authentication", func() {
			// Given: no bearer token
			// When: I list posts
			// Then: the request is refused as a client error
			status, err := anonymous.ListPostsStatus(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(api.IsClientError(status)).To(BeTrue(), "Unauthenticated list should be refused with a 4xx, got %d", status)
		})

		It("should reject an incorrect password", func() {
			// Given: a valid login with the wrong password
			// When: I authenticate
			// Then: no token is issued and the refusal is a client error
			token, err := anonymous.Authenticate(ctx, config.Login, config.Password+"-incorrect")
			Expect(err).To(MatchError(api.ErrUnexpectedStatus), "Authentication with a bad password should not return 200")
			Expect(token).To(BeNil())

			status, rejected := api.RejectedStatus(err)
			Expect(rejected).To(BeTrue(), "Bad credentials should be refused with a 4xx: %v", err)
			GinkgoWriter.Printf("Bad credentials refused with status %d\n", status)
		})
	})
})

var _ = Describe("Post Consistency", func() {
	BeforeEach(func() {
		requireSession()
	})

	Context("When reading a post that never existed", func() {
		It("should not return the post", func() {
			status, err := client.GetPostStatus(ctx, uuid.NewString())
			Expect(err).NotTo(HaveOccurred())
			Expect(status).NotTo(BeElementOf(http.StatusOK, http.StatusCreated), "A random post ID should not resolve")
		})
	})

	Context("When reading back a created post", func() {
		It("should return what was written", func() {
			payload := api.NewPostPayload().
				WithTitle("Read Back Post").
				WithDescription("This post is read back after creation").
				WithTags("readback", "test").
				Build()

			_, postID := api.CreatePostWithCleanup(client, ctx, payload)

			post, err := client.GetPost(ctx, postID)
			Expect(err).NotTo(HaveOccurred(), "Should get the post (HTTP 200)")
			api.VerifyPostFields(post, postID)
			api.VerifyPostUpdated(post, payload)
		})
	})
})
