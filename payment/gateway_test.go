package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateIntentMockMode(t *testing.T) {
	c := NewClient(Config{Mode: ModeMock, Currency: "INR"}, zap.NewNop())

	intent, err := c.CreateIntent(context.Background(), 4750, "20260801-abc")
	require.NoError(t, err)
	assert.NotEmpty(t, intent.IntentRef)
	assert.Equal(t, int64(4750), intent.Amount)
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, ModeMock, intent.Mode)

	// refs are unique per intent
	second, err := c.CreateIntent(context.Background(), 4750, "20260801-abc")
	require.NoError(t, err)
	assert.NotEqual(t, intent.IntentRef, second.IntentRef)
}

func TestCreateIntentLiveMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "create", payload["method"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"order": map[string]string{"ref": "gw-ref-1", "url": "https://gateway.example/pay"},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{Mode: ModeLive, APIURL: srv.URL, StoreID: "1001", AuthKey: "k", Currency: "INR"}, zap.NewNop())
	intent, err := c.CreateIntent(context.Background(), 100, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, "gw-ref-1", intent.IntentRef)
	assert.Equal(t, ModeLive, intent.Mode)
}

func TestCreateIntentLiveGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "E04", "message": "invalid store"},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{Mode: ModeLive, APIURL: srv.URL, StoreID: "1001", AuthKey: "k"}, zap.NewNop())
	_, err := c.CreateIntent(context.Background(), 100, "ref-1")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "invalid store")
	assert.False(t, perr.Retryable)
}

func TestCreateIntentUnreachableGatewayIsRetryable(t *testing.T) {
	c := NewClient(Config{Mode: ModeLive, APIURL: "http://127.0.0.1:1", StoreID: "1001", AuthKey: "k"}, zap.NewNop())
	_, err := c.CreateIntent(context.Background(), 100, "ref-1")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Retryable)
}

func TestVerifySignature(t *testing.T) {
	live := NewClient(Config{Mode: ModeLive, WebhookKey: "secret"}, zap.NewNop())

	good := Sign("secret", "intent-1", "pay-1")
	res := live.VerifySignature("intent-1", "pay-1", good)
	assert.Equal(t, ResultOK, res.Status)
	assert.Equal(t, "pay-1", res.PaymentRef)

	res = live.VerifySignature("intent-1", "pay-1", "deadbeef")
	assert.Equal(t, ResultFailed, res.Status)
	assert.NotEmpty(t, res.Reason)

	// mock mode accepts any well-formed response but still rejects
	// missing references
	mock := NewClient(Config{Mode: ModeMock}, zap.NewNop())
	assert.Equal(t, ResultOK, mock.VerifySignature("intent-1", "pay-1", "").Status)
	assert.Equal(t, ResultFailed, mock.VerifySignature("", "pay-1", "").Status)
	assert.Equal(t, ResultFailed, mock.VerifySignature("intent-1", "", "").Status)
}

func TestConfigFromEnvDefaultsToMock(t *testing.T) {
	t.Setenv("GATEWAY_MODE", "")
	t.Setenv("GATEWAY_API_URL", "")
	t.Setenv("GATEWAY_STORE_ID", "")
	t.Setenv("GATEWAY_AUTH_KEY", "")
	t.Setenv("GATEWAY_CURRENCY", "")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, "INR", cfg.Currency)
}

func TestConfigFromEnvLiveRequiresCredentials(t *testing.T) {
	t.Setenv("GATEWAY_MODE", "live")
	t.Setenv("GATEWAY_API_URL", "")
	t.Setenv("GATEWAY_STORE_ID", "")
	t.Setenv("GATEWAY_AUTH_KEY", "")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}
