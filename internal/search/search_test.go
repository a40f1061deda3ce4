package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunu-rekolt/marketplace/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	indexed  map[string]document
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		var hits []map[string]any
		for _, d := range f.indexed {
			hits = append(hits, map[string]any{"_source": d})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"total": map[string]any{"value": len(hits)}, "hits": hits},
		})
	case strings.Contains(r.URL.Path, "/_doc/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if r.Method == http.MethodDelete {
			if _, ok := f.indexed[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"result":"not_found"}`)
				return
			}
			delete(f.indexed, id)
			_, _ = io.WriteString(w, `{"result":"deleted"}`)
			return
		}
		var d document
		_ = json.NewDecoder(r.Body).Decode(&d)
		f.indexed[id] = d
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeES) {
	t.Helper()
	fake := &fakeES{indexed: map[string]document{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return c, fake
}

func TestSync_IndexesOnlyPublicProducts(t *testing.T) {
	t.Parallel()

	c, fake := newTestClient(t)
	ctx := context.Background()

	p := &models.Product{ID: uuid.New(), Name: "Tomates", Price: 1000, Unit: "kg", Category: models.CategoryVegetables, IsApproved: true}
	require.NoError(t, c.Sync(ctx, p))
	assert.Contains(t, fake.indexed, p.ID.String())

	total, items, err := c.Search(ctx, "tomates", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ID)
	assert.True(t, items[0].Public())

	p.IsArchived = true
	require.NoError(t, c.Sync(ctx, p))
	assert.NotContains(t, fake.indexed, p.ID.String())
}

func TestDelete_MissingDocumentIsNotAnError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t)
	assert.NoError(t, c.Delete(context.Background(), uuid.New()))
}

func TestNewClient_UnreachableCluster(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(context.Background(), Config{URL: url})
	assert.Error(t, err)
}
