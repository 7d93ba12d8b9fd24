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

package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nscaledev/posts-api-conformance/pkg/openapi"

	"k8s.io/utils/ptr"
)

const (
	fakeLogin    = "alice"
	fakePassword = "secret"
	fakeToken    = "fake-access-token"
)

// fakeProvider is an in-process stand in for the gateway, used only to exercise
// the client helpers.  It follows the gateway's observable behaviour.
type fakeProvider struct {
	posts map[string]openapi.PostRead
	order []string
	lock  sync.Mutex

	// authenticateStatus and createStatus force a failure when non-zero.
	authenticateStatus int
	createStatus       int

	authentications atomic.Int32
}

type fakeOption func(*fakeProvider)

// withAuthenticateStatus makes every authentication fail with the status.
func withAuthenticateStatus(status int) fakeOption {
	return func(p *fakeProvider) {
		p.authenticateStatus = status
	}
}

// withCreateStatus makes every post creation fail with the status.
func withCreateStatus(status int) fakeOption {
	return func(p *fakeProvider) {
		p.createStatus = status
	}
}

func newFakeProvider(t *testing.T, options ...fakeOption) *httptest.Server {
	t.Helper()

	server, _ := newFakeProviderWithState(t, options...)

	return server
}

func newFakeProviderWithState(t *testing.T, options ...fakeOption) (*httptest.Server, *fakeProvider) {
	t.Helper()

	p := &fakeProvider{
		posts: map[string]openapi.PostRead{},
	}

	for _, option := range options {
		option(p)
	}

	router := chi.NewRouter()
	router.Post("/api/v1/authenticate", p.authenticate)
	router.Route("/api/v1/posts", func(r chi.Router) {
		r.Use(requireBearer)
		r.Post("/", p.create)
		r.Get("/", p.list)
		r.Get("/{postID}", p.get)
		r.Put("/{postID}", p.update)
		r.Delete("/{postID}", p.remove)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, p
}

func timestamp(t time.Time) json.RawMessage {
	data, _ := json.Marshal(t)

	return data
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &openapi.Error{Error: message})
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+fakeToken {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (p *fakeProvider) authenticate(w http.ResponseWriter, r *http.Request) {
	p.authentications.Add(1)

	if p.authenticateStatus != 0 {
		writeError(w, p.authenticateStatus, "authentication unavailable")
		return
	}

	var request openapi.AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if request.Login != fakeLogin || request.Password != fakePassword {
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  fakeToken,
		"refresh_token": "fake-refresh-token",
	})
}

func decodeWrite(w http.ResponseWriter, r *http.Request) (*openapi.PostWrite, bool) {
	var request openapi.PostWrite
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return &request, true
}

func (p *fakeProvider) create(w http.ResponseWriter, r *http.Request) {
	if p.createStatus != 0 {
		writeError(w, p.createStatus, "post storage unavailable")
		return
	}

	request, ok := decodeWrite(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()

	post := openapi.PostRead{
		Id:          ptr.To(uuid.NewString()),
		Title:       ptr.To(request.Title),
		Description: ptr.To(request.Description),
		CreatorId:   ptr.To(fakeLogin),
		IsPrivate:   ptr.To(request.IsPrivate),
		Tags:        ptr.To(slices.Clone(request.Tags)),
		CreatedAt:   timestamp(now),
		UpdatedAt:   timestamp(now),
	}

	p.lock.Lock()
	p.posts[*post.Id] = post
	p.order = append(p.order, *post.Id)
	p.lock.Unlock()

	writeJSON(w, http.StatusCreated, post)
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return defaultValue
	}

	return value
}

func (p *fakeProvider) list(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	pageSize := queryInt(r, "page_size", 10)

	p.lock.Lock()
	defer p.lock.Unlock()

	posts := make([]openapi.PostRead, 0, pageSize)

	start := page * pageSize
	for i := start; i < len(p.order) && i < start+pageSize; i++ {
		posts = append(posts, p.posts[p.order[i]])
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts":       posts,
		"total_count": len(p.order),
		"page":        page,
		"page_size":   pageSize,
	})
}

func (p *fakeProvider) get(w http.ResponseWriter, r *http.Request) {
	p.lock.Lock()
	post, ok := p.posts[chi.URLParam(r, "postID")]
	p.lock.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (p *fakeProvider) update(w http.ResponseWriter, r *http.Request) {
	request, ok := decodeWrite(w, r)
	if !ok {
		return
	}

	postID := chi.URLParam(r, "postID")

	p.lock.Lock()
	defer p.lock.Unlock()

	post, ok := p.posts[postID]
	if !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	post.Title = ptr.To(request.Title)
	post.Description = ptr.To(request.Description)
	post.IsPrivate = ptr.To(request.IsPrivate)
	post.Tags = ptr.To(slices.Clone(request.Tags))
	post.UpdatedAt = timestamp(time.Now().UTC())

	p.posts[postID] = post

	writeJSON(w, http.StatusOK, post)
}

func (p *fakeProvider) remove(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	p.lock.Lock()
	defer p.lock.Unlock()

	if _, ok := p.posts[postID]; !ok {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	delete(p.posts, postID)
	p.order = slices.DeleteFunc(p.order, func(id string) bool {
		return id == postID
	})

	w.WriteHeader(http.StatusNoContent)
}
