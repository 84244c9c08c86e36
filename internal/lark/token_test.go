package lark

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lark-base-gateway/internal/config"
)

func TestTokenBrokerExchangeAndReuse(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "app-id", body["app_id"])
		assert.Equal(t, "app-secret", body["app_secret"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":                0,
			"msg":                 "ok",
			"tenant_access_token": "t-abc",
			"expire":              7200,
		})
	}))
	defer ts.Close()

	broker, err := NewTokenBroker(&config.LarkConfig{
		AppID:     "app-id",
		AppSecret: "app-secret",
		AuthURL:   ts.URL,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	tok, err := broker.Token()
	require.NoError(t, err)
	assert.Equal(t, "t-abc", tok.AccessToken)
	assert.True(t, tok.Valid())
	assert.WithinDuration(t, time.Now().Add(7200*time.Second-tokenSafetyMargin), tok.Expiry, 5*time.Second)

	// second call is served from the cache within the validity window
	_, err = broker.Token()
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestTokenBrokerApplicationError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 99991663,
			"msg":  "app not found",
		})
	}))
	defer ts.Close()

	broker, err := NewTokenBroker(&config.LarkConfig{
		AppID:     "app-id",
		AppSecret: "app-secret",
		AuthURL:   ts.URL,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)

	_, err = broker.Token()
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestTokenBrokerTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	broker, err := NewTokenBroker(&config.LarkConfig{
		AppID:     "app-id",
		AppSecret: "app-secret",
		AuthURL:   ts.URL,
		Timeout:   time.Second,
	})
	require.NoError(t, err)

	_, err = broker.Token()
	assert.True(t, errors.Is(err, ErrAuth))
}

func TestTokenBrokerMissingCredentials(t *testing.T) {
	_, err := NewTokenBroker(&config.LarkConfig{})
	assert.True(t, errors.Is(err, ErrConfig))
}
