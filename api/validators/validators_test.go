package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
)

type itemBody struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":"7","quantity":2}`))
	var body itemBody
	require.NoError(t, DecodeJSONBody(req, &body))
	require.Equal(t, itemBody{ProductID: "7", Quantity: 2}, body)
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"product_id":"7","extra":true}`,
		"malformed":     `{"product_id":`,
		"missing":       `{"quantity":1}`,
		"negative":      `{"product_id":"7","quantity":-1}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
			var body itemBody
			err := DecodeJSONBody(req, &body)
			require.Error(t, err)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestParseQueryIntAndList(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&tags=vegan,%20gluten-free&tags=nut-free,", nil)

	limit, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 5, limit)

	_, err = ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=500", nil), "limit", 20, 1, 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.Equal(t, []string{"vegan", "gluten-free", "nut-free"}, ParseQueryList(req, "tags"))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc")
	require.Equal(t, "abc", BearerToken(req))

	ws := httptest.NewRequest(http.MethodGet, "/?access_token=xyz", nil)
	require.Equal(t, "xyz", BearerToken(ws))
}
