package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/rcflow/api"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// specRouter matches requests to operations of the embedded OpenAPI document.
var specRouter = sync.OnceValues(func() (routers.Router, error) {
	doc, err := api.Load(context.Background())
	if err != nil {
		return nil, err
	}
	return legacy.NewRouter(doc)
})

// WithRequestValidation toggles checking requests against the OpenAPI
// document. It is on by default.
func WithRequestValidation(enabled bool) Option {
	return func(s *Server) {
		s.validateRequests = enabled
	}
}

// requestValidator rejects requests whose parameters or JSON body do not
// match the operation they are routed to. Requests the document does not
// describe are passed through to the router.
func (s *Server) requestValidator(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				s.badRequest(w, r, err.Error(), err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.Spec())
}

// pathParam binds a simple-style path parameter the way generated chi
// servers do, unescaping it. It writes a 400 and reports false on failure.
func (s *Server) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Required:      true,
	})
	if err != nil {
		s.badRequest(w, r, fmt.Sprintf("invalid path parameter %s", name), err)
		return "", false
	}
	return v, true
}

// queryParam binds an optional form-style query parameter.
func (s *Server) queryParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		s.badRequest(w, r, fmt.Sprintf("invalid query parameter %s", name), err)
		return "", false
	}
	return v, true
}
