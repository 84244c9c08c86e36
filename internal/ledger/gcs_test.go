package ledger

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"lark-base-gateway/internal/config"
)

func newTestGCSStore(t *testing.T, handler http.HandlerFunc) *GCSStore {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	store, err := NewGCSStore(context.Background(), &config.LedgerConfig{
		Bucket:     "bot-bucket",
		ObjectName: "processed_messages.json",
	}, option.WithEndpoint(ts.URL), option.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return store
}

func TestGCSStoreLoad(t *testing.T) {
	store := newTestGCSStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/b/bot-bucket/o/processed_messages.json")

		w.Write([]byte(`["om_1","om_2"]`))
	})

	ids, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"om_1": {}, "om_2": {}}, ids)
}

func TestGCSStoreLoadAbsentObject(t *testing.T) {
	store := newTestGCSStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	ids, err := store.Load(context.Background())
	require.NoError(t, err, "absent object means no history, not an error")
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestGCSStoreLoadUndecodableObject(t *testing.T) {
	store := newTestGCSStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	ids, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGCSStoreSaveUploadsSortedList(t *testing.T) {
	var uploadedPath, uploadedBody string
	store := newTestGCSStore(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		uploadedPath = r.URL.Path
		uploadedBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"processed_messages.json"}`))
	})

	err := store.Save(context.Background(), map[string]struct{}{
		"om_2": {},
		"om_1": {},
	})
	require.NoError(t, err)

	assert.Contains(t, uploadedPath, "/b/bot-bucket/o")
	// the blob is the full id list, sorted
	assert.Contains(t, uploadedBody, `["om_1","om_2"]`)
}

func TestGCSStoreSaveFailure(t *testing.T) {
	store := newTestGCSStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			http.Error(w, "quota exceeded", http.StatusForbidden)
			return
		}
		w.Write([]byte(`[]`))
	})

	err := store.Save(context.Background(), map[string]struct{}{"om_1": {}})
	require.Error(t, err)
}
