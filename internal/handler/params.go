package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/couplemap/couplemap/internal/domain"
)

// pathID binds the {id} path parameter. A malformed id cannot name a row the
// caller owns, so it is reported as domain.ErrNotFound rather than a 400.
func pathID(r *http.Request) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return openapi_types.UUID{}, fmt.Errorf("%w: malformed id", domain.ErrNotFound)
	}
	return id, nil
}

// queryString binds an optional string query parameter; absent means "".
func queryString(r *http.Request, name string) string {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil || v == nil {
		return ""
	}
	return *v
}

// queryInt binds an optional integer query parameter. Absent or malformed
// values yield 0 so callers can apply their own default.
func queryInt(r *http.Request, name string) int {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil || v == nil {
		return 0
	}
	return *v
}
