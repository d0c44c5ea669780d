package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsByKey(t *testing.T) {
	assert.IsType(t, Local{}, New(Config{}))
	assert.IsType(t, &Voyage{}, New(Config{APIKey: "k"}))
	assert.False(t, HasRemoteKey(Config{}))
	assert.True(t, HasRemoteKey(Config{APIKey: "k"}))
}

func TestLocal_Embed(t *testing.T) {
	ctx := context.Background()

	got, err := Local{}.Embed(ctx, "abc")
	require.NoError(t, err)
	// 'a'=97 'b'=98 'c'=99, cycled over 8 slots
	assert.Equal(t, []float64{0.97, 0.98, 0.99, 0.97, 0.98, 0.99, 0.97, 0.98}, got)

	again, err := Local{}.Embed(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, got, again)

	empty, err := Local{}.Embed(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, make([]float64, LocalDimensions), empty)
}

func TestVoyage_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hello"}, req.Input)
		assert.Equal(t, "voyage-3-lite", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	v := NewVoyage(Config{APIKey: "secret", BaseURL: srv.URL})
	got, err := v.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got)
	assert.Equal(t, "voyage-3-lite", v.Model())
}

func TestVoyage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewVoyage(Config{APIKey: "secret", BaseURL: srv.URL}).Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 2}))
}
