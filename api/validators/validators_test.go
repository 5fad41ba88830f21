package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/backoffice/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeJSONBodyValidatesStructs(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"secret1"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "email must be a valid email", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyRejectsMalformedAndUnknown(t *testing.T) {
	for _, raw := range []string{`{"email":`, `{"email":"a@b.co","password":"secret1","extra":1}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		var body loginBody
		err := DecodeJSONBody(req, &body)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest), "body %q: %v", raw, err)
	}
}

func TestDecodeJSONBodyAcceptsArrays(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1,2,3]`))
	var got []int
	require.NoError(t, DecodeJSONBody(req, &got))
	assert.Equal(t, []int{1, 2, 3}, got)
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParseIDParam(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	id, err := ParseIDParam(req, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", raw)
		_, err := ParseIDParam(req, "id")
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest), raw)
	}
}

func TestOptionalQueries(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?productId=7&inInventory=false", nil)
	id, err := ParseOptionalIDQuery(req, "productId")
	require.NoError(t, err)
	assert.EqualValues(t, 7, *id)
	flag, err := ParseOptionalBoolQuery(req, "inInventory")
	require.NoError(t, err)
	assert.False(t, *flag)

	missing, err := ParseOptionalIDQuery(httptest.NewRequest(http.MethodGet, "/", nil), "productId")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseOptionalBoolQuery(httptest.NewRequest(http.MethodGet, "/?inInventory=maybe", nil), "inInventory")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeBadRequest))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
