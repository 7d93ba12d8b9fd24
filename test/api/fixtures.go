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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"
	"github.com/spjmurray/go-util/pkg/set"

	"github.com/nscaledev/posts-api-conformance/pkg/openapi"

	"k8s.io/utils/ptr"
)

// ErrPostStillExists is raised when a deleted post can still be read.
var ErrPostStillExists = errors.New("post was not deleted")

// PostRegistry tracks the IDs of posts created during a run, in creation order,
// so later steps can chain reads, updates and deletes onto a known resource.
type PostRegistry struct {
	ids  []string
	lock sync.Mutex
}

// NewPostRegistry returns an empty registry.
func NewPostRegistry() *PostRegistry {
	return &PostRegistry{}
}

// Add appends an ID.
func (r *PostRegistry) Add(id string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.ids = append(r.ids, id)
}

// First returns the oldest registered ID.
func (r *PostRegistry) First() (string, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.ids) == 0 {
		return "", false
	}

	return r.ids[0], true
}

// Remove deletes the first occurrence of an ID, reporting whether it was present.
func (r *PostRegistry) Remove(id string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	i := slices.Index(r.ids, id)
	if i < 0 {
		return false
	}

	r.ids = slices.Delete(r.ids, i, i+1)

	return true
}

// IDs returns a snapshot copy, safe to iterate while removing.
func (r *PostRegistry) IDs() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	return slices.Clone(r.ids)
}

func (r *PostRegistry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.ids)
}

func (r *PostRegistry) Empty() bool {
	return r.Len() == 0
}

//go:generate go tool mockgen -source=fixtures.go -destination=mock/interfaces.go -package=mock

// PostDeleter is the subset of the client used to tear posts down.
type PostDeleter interface {
	DeletePost(ctx context.Context, postID string) error
	GetPostStatus(ctx context.Context, postID string) (int, error)
}

// DeleteRegisteredPosts deletes every registered post and confirms each is gone.
// A post counts as gone when reading it returns anything but 200 or 201, the
// gateway is not specific about which not-found status it uses.  IDs are
// removed only once confirmed, so on error the remainder stays registered.
func DeleteRegisteredPosts(ctx context.Context, client PostDeleter, registry *PostRegistry) error {
	for _, postID := range registry.IDs() {
		if err := client.DeletePost(ctx, postID); err != nil {
			return fmt.Errorf("post %s: %w", postID, err)
		}

		status, err := client.GetPostStatus(ctx, postID)
		if err != nil {
			return fmt.Errorf("post %s: %w", postID, err)
		}

		if status == http.StatusOK || status == http.StatusCreated {
			return fmt.Errorf("%w: post %s returned status %d after deletion", ErrPostStillExists, postID, status)
		}

		registry.Remove(postID)
	}

	return nil
}

// DeferRegistryCleanup schedules deletion of anything left in the registry,
// whether the run passes or fails, so failed runs don't leak posts.
func DeferRegistryCleanup(client *APIClient, ctx context.Context, registry *PostRegistry) {
	DeferCleanup(func() {
		for _, postID := range registry.IDs() {
			GinkgoWriter.Printf("Cleaning up post: %s\n", postID)

			if err := client.DeletePost(ctx, postID); err != nil {
				GinkgoWriter.Printf("Warning: Failed to delete post %s: %v\n", postID, err)
				continue
			}

			registry.Remove(postID)
		}
	})
}

// CreatePostWithCleanup creates a post, verifies the echo and schedules automatic cleanup.
func CreatePostWithCleanup(client *APIClient, ctx context.Context, payload openapi.PostWrite) (*openapi.PostRead, string) {
	post, err := client.CreatePost(ctx, payload)
	Expect(err).NotTo(HaveOccurred(), "Failed to create post")
	VerifyPostEchoes(post, payload)

	postID := *post.Id

	GinkgoWriter.Printf("Created post with ID: %s\n", postID)

	// Schedule cleanup - this runs whether the test passes or fails so we don't need to clean up manually
	DeferCleanup(func() {
		GinkgoWriter.Printf("Cleaning up post: %s\n", postID)

		if deleteErr := client.DeletePost(ctx, postID); deleteErr != nil {
			GinkgoWriter.Printf("Warning: Failed to delete post %s: %v\n", postID, deleteErr)
		} else {
			GinkgoWriter.Printf("Successfully deleted post: %s\n", postID)
		}
	})

	return post, postID
}

// VerifyPostEchoes verifies a created post carries an ID and echoes the title and description.
func VerifyPostEchoes(post *openapi.PostRead, payload openapi.PostWrite) {
	checkPostEchoes(Default, post, payload)
}

// VerifyPostFields verifies a read post has the expected ID and carries a title and description.
func VerifyPostFields(post *openapi.PostRead, postID string) {
	checkPostFields(Default, post, postID)
}

// VerifyPostUpdated verifies every writable field reflects a full replacement.
func VerifyPostUpdated(post *openapi.PostRead, payload openapi.PostWrite) {
	checkPostUpdated(Default, post, payload)
}

// VerifyPostList verifies the shape of a list response.
func VerifyPostList(list *openapi.PostList) {
	checkPostList(Default, list)
}

func checkPostEchoes(g types.Gomega, post *openapi.PostRead, payload openapi.PostWrite) {
	g.Expect(post).NotTo(BeNil())
	g.Expect(post.Id).NotTo(BeNil(), "Post ID was not returned")
	g.Expect(*post.Id).NotTo(BeEmpty(), "Post ID was empty")
	g.Expect(post.Title).To(HaveValue(Equal(payload.Title)), "Incorrect post title")
	g.Expect(post.Description).To(HaveValue(Equal(payload.Description)), "Incorrect post description")
}

func checkPostFields(g types.Gomega, post *openapi.PostRead, postID string) {
	g.Expect(post).NotTo(BeNil())
	g.Expect(post.Id).To(HaveValue(Equal(postID)), "Incorrect post ID")
	g.Expect(post.Title).NotTo(BeNil(), "Post title was not returned")
	g.Expect(post.Description).NotTo(BeNil(), "Post description was not returned")
}

func checkPostUpdated(g types.Gomega, post *openapi.PostRead, payload openapi.PostWrite) {
	g.Expect(post).NotTo(BeNil())
	g.Expect(post.Title).To(HaveValue(Equal(payload.Title)), "Title was not updated")
	g.Expect(post.Description).To(HaveValue(Equal(payload.Description)), "Description was not updated")
	g.Expect(post.IsPrivate).To(HaveValue(Equal(payload.IsPrivate)), "Privacy was not updated")
	g.Expect(ptr.Deref(post.Tags, nil)).To(MatchTagSet(payload.Tags), "Tags were not updated")
}

func checkPostList(g types.Gomega, list *openapi.PostList) {
	g.Expect(list).NotTo(BeNil())
	g.Expect(list.Posts).NotTo(BeNil(), "Post list was not returned")
	g.Expect(list.TotalCount).NotTo(BeEmpty(), "Total post count was not returned")
}

// TagsEqual reports whether two tag lists hold the same set of tags,
// ignoring order and duplicates.
func TagsEqual(a, b []string) bool {
	left := set.New[string](a...)
	right := set.New[string](b...)

	return isEmpty(left.Difference(right)) && isEmpty(right.Difference(left))
}

func isEmpty(s set.Set[string]) bool {
	for range s.All() {
		return false
	}

	return true
}

// MatchTagSet succeeds when the actual tags equal expected as a set.
func MatchTagSet(expected []string) types.GomegaMatcher {
	return gcustom.MakeMatcher(func(actual []string) (bool, error) {
		return TagsEqual(actual, expected), nil
	}).WithMessage(fmt.Sprintf("equal the tag set %v", expected))
}
