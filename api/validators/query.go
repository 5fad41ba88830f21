package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeBadRequest, "Invalid "+key).WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// ParseOptionalIDQuery reads a positive integer query parameter. Absent yields nil.
func ParseOptionalIDQuery(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "query parameter must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

// ParseOptionalBoolQuery reads a boolean query parameter. Absent yields nil.
func ParseOptionalBoolQuery(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "query parameter must be a boolean").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}
