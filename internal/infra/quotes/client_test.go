package quotes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicenav/internal/infra/quotes"
)

func TestClient_Random(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/random" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"q":"Well begun is half done.","a":"Aristotle","h":"<blockquote/>"}]`))
	}))
	defer server.Close()

	q, err := quotes.NewClientWithURL(server.URL).Random(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Well begun is half done.", q.Text)
	assert.Equal(t, "Aristotle", q.Author)
}

func TestClient_RandomEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := quotes.NewClientWithURL(server.URL).Random(context.Background())
	assert.Error(t, err)
}
