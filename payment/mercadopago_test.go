package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetPayment(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 123456,
			"status": "approved",
			"additional_info": {"items": [
				{"id": "sku-1", "title": "Agua (Torre Norte)", "quantity": "2"},
				{"title": "Jugo (Torre Norte)", "quantity": 1}
			]}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "TEST-token", time.Second)
	p, err := c.GetPayment(context.Background(), "123456")
	require.NoError(t, err)

	assert.Equal(t, "Bearer TEST-token", gotAuth)
	assert.Equal(t, "/v1/payments/123456", gotPath)
	assert.Equal(t, "123456", p.ID.String())
	assert.Equal(t, StatusApproved, p.Status)
	require.Len(t, p.AdditionalInfo.Items, 2)
	assert.Equal(t, Quantity(2), p.AdditionalInfo.Items[0].Quantity)
	assert.Equal(t, Quantity(1), p.AdditionalInfo.Items[1].Quantity)
}

func TestClient_GetPaymentErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Payment not found","error":"not_found","status":404}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TEST-token", time.Second)

	_, err := c.GetPayment(context.Background(), "1")
	assert.ErrorIs(t, err, ErrGatewayRequestFailed)
	assert.Contains(t, err.Error(), "Payment not found")

	_, err = c.GetPayment(context.Background(), "")
	assert.ErrorIs(t, err, ErrGatewayRequestFailed)

	srv.Close()
	_, err = c.GetPayment(context.Background(), "1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
