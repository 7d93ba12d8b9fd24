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
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

var (
	// ErrUnknownRoute is raised when a request matches no operation in the document.
	ErrUnknownRoute = errors.New("request does not match any documented operation")

	// ErrResponseInvalid is raised when a response violates the document.
	ErrResponseInvalid = errors.New("response does not conform to the API document")
)

//go:embed posts.spec.yaml
var document []byte

// GetSwagger loads and validates the embedded posts API document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("loading API document: %w", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validating API document: %w", err)
	}

	return doc, nil
}

// Validator checks live responses against the posts API document.
type Validator struct {
	router routers.Router
}

// NewValidator returns a validator whose routes are rooted at serverURL.
func NewValidator(serverURL string) (*Validator, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}

	doc.Servers = openapi3.Servers{
		&openapi3.Server{
			URL: serverURL,
		},
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	return &Validator{
		router: router,
	}, nil
}

// ValidateResponse checks the status, headers and body of a response to req.
// Status codes the document does not declare are accepted, only the shape of
// documented responses is enforced.
func (v *Validator) ValidateResponse(ctx context.Context, req *http.Request, status int, header http.Header, body []byte) error {
	route, pathParams, err := v.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnknownRoute, req.Method, req.URL.Path, err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: status,
		Header: header,
		Options: &openapi3filter.Options{
			IncludeResponseStatus: false,
			MultiError:            true,
		},
	}

	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("%w: %s %s status %d: %w", ErrResponseInvalid, req.Method, req.URL.Path, status, err)
	}

	return nil
}
