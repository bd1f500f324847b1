package knowledge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/chunk"
	"github.com/fyrsmithlabs/knowledged/internal/embeddings"
	"github.com/fyrsmithlabs/knowledged/internal/generation"
	"github.com/fyrsmithlabs/knowledged/internal/registry"
	"github.com/fyrsmithlabs/knowledged/internal/vectorstore"
)

// mockStore records calls and returns scripted results.
type mockStore struct {
	docs        []vectorstore.Document
	createCalls int
	deleteCalls int
	created     bool

	addErr    error
	searchErr error
	createErr error
	deleteErr error

	searchResults []vectorstore.SearchResult
}

func (m *mockStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) ([]string, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.docs = append(m.docs, docs...)
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (m *mockStore) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.searchResults) > k {
		return m.searchResults[:k], nil
	}
	return m.searchResults, nil
}

func (m *mockStore) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if m.created {
		return vectorstore.ErrCollectionExists
	}
	m.created = true
	return nil
}

func (m *mockStore) DeleteCollection(ctx context.Context, name string) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.created = false
	m.docs = nil
	return nil
}

func (m *mockStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return m.created, nil
}

func (m *mockStore) GetCollectionInfo(ctx context.Context, name string) (*vectorstore.CollectionInfo, error) {
	if !m.created {
		return nil, vectorstore.ErrCollectionNotFound
	}
	return &vectorstore.CollectionInfo{Name: name, PointCount: len(m.docs)}, nil
}

func (m *mockStore) Close() error { return nil }

var _ vectorstore.Store = (*mockStore)(nil)

// mockGenerator captures the prompt it was handed.
type mockGenerator struct {
	system   string
	user     string
	response string
	err      error
}

func (m *mockGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	m.system = system
	m.user = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func newTestService(t *testing.T, store vectorstore.Store, gen Generator) *Service {
	t.Helper()
	splitter, err := chunk.NewSplitter(chunk.Config{})
	require.NoError(t, err)

	svc, err := NewService(store, gen, registry.New(), splitter, Config{
		CollectionName: "test_knowledge",
		VectorSize:     4,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores chunks then catalogs the source", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(t, store, &mockGenerator{})

		res, err := svc.Ingest(ctx, IngestRequest{
			Type:    registry.SourceTypeText,
			Title:   "Go Notes",
			Content: "Interfaces are satisfied implicitly.",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, res.ChunkCount)
		assert.Equal(t, 1, res.TotalSources)
		assert.Equal(t, "Go Notes", res.Source.Title)
		assert.NotEmpty(t, res.Source.ID)

		require.Len(t, store.docs, 1)
		meta := store.docs[0].Metadata
		assert.Equal(t, res.Source.ID, meta[vectorstore.MetaSourceID])
		assert.Equal(t, "text", meta[vectorstore.MetaSourceType])
		assert.Equal(t, "Go Notes", meta[vectorstore.MetaTitle])
		assert.Equal(t, 0, meta[vectorstore.MetaChunkIndex])

		assert.Equal(t, 1, svc.TotalSources())
	})

	t.Run("store failure leaves no ghost entry", func(t *testing.T) {
		store := &mockStore{addErr: vectorstore.ErrUnavailable}
		svc := newTestService(t, store, &mockGenerator{})

		_, err := svc.Ingest(ctx, IngestRequest{
			Type:    registry.SourceTypeText,
			Title:   "Go Notes",
			Content: "Some content.",
		})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, 0, svc.TotalSources())
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(t, &mockStore{}, &mockGenerator{})

		tests := []struct {
			name string
			req  IngestRequest
		}{
			{"unknown type", IngestRequest{Type: "docx", Title: "t", Content: "c"}},
			{"missing title", IngestRequest{Type: registry.SourceTypeText, Content: "c"}},
			{"missing content", IngestRequest{Type: registry.SourceTypeText, Title: "t"}},
			{"whitespace content", IngestRequest{Type: registry.SourceTypeText, Title: "t", Content: "  \n "}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Ingest(ctx, tt.req)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
		assert.Equal(t, 0, svc.TotalSources())
	})

	t.Run("missing credential", func(t *testing.T) {
		svc := newTestService(t, nil, nil)

		_, err := svc.Ingest(ctx, IngestRequest{
			Type:    registry.SourceTypeText,
			Title:   "t",
			Content: "c",
		})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("existing collection is tolerated on repeat ingests", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(t, store, &mockGenerator{})

		for i := 0; i < 3; i++ {
			_, err := svc.Ingest(ctx, IngestRequest{
				Type:    registry.SourceTypeText,
				Title:   fmt.Sprintf("note %d", i),
				Content: "Some content.",
			})
			require.NoError(t, err)
		}
		assert.Equal(t, 3, store.createCalls)
		assert.Equal(t, 3, svc.TotalSources())
	})

	t.Run("rate limited embedding", func(t *testing.T) {
		store := &mockStore{addErr: fmt.Errorf("%w: 429", embeddings.ErrRateLimited)}
		svc := newTestService(t, store, &mockGenerator{})

		_, err := svc.Ingest(ctx, IngestRequest{
			Type:    registry.SourceTypeText,
			Title:   "t",
			Content: "c",
		})
		assert.ErrorIs(t, err, ErrRateLimited)
	})
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("grounded answer with attributions", func(t *testing.T) {
		store := &mockStore{
			created: true,
			searchResults: []vectorstore.SearchResult{
				{
					ID:      "c1",
					Content: "Go 1.24 added generic type aliases.",
					Score:   0.9,
					Metadata: map[string]interface{}{
						vectorstore.MetaSourceID:   "s1",
						vectorstore.MetaTitle:      "Release Blog",
						vectorstore.MetaSourceType: "url",
					},
				},
				{
					ID:      "c2",
					Content: "More release notes.",
					Score:   0.8,
					Metadata: map[string]interface{}{
						vectorstore.MetaSourceID:   "s1",
						vectorstore.MetaTitle:      "Release Blog",
						vectorstore.MetaSourceType: "url",
					},
				},
			},
		}
		gen := &mockGenerator{response: "Generic type aliases landed in Go 1.24."}
		svc := newTestService(t, store, gen)

		ans, err := svc.Answer(ctx, "What changed in Go 1.24?")
		require.NoError(t, err)

		assert.Equal(t, "Generic type aliases landed in Go 1.24.", ans.Response)

		// Raw fragments come back in ranking order.
		require.Len(t, ans.Sources, 2)
		assert.Equal(t, "c1", ans.Sources[0].ID)
		assert.Equal(t, "Go 1.24 added generic type aliases.", ans.Sources[0].Content)
		assert.Equal(t, "Release Blog", ans.Sources[0].Metadata[vectorstore.MetaTitle])
		assert.Equal(t, "c2", ans.Sources[1].ID)

		assert.Contains(t, gen.system, "Go 1.24 added generic type aliases.")
		assert.Equal(t, "What changed in Go 1.24?", gen.user)
	})

	t.Run("missing collection is treated as empty knowledge", func(t *testing.T) {
		store := &mockStore{searchErr: vectorstore.ErrCollectionNotFound}
		gen := &mockGenerator{response: "I have no information about that."}
		svc := newTestService(t, store, gen)

		ans, err := svc.Answer(ctx, "Anything?")
		require.NoError(t, err)

		assert.Empty(t, ans.Sources)
		assert.Contains(t, gen.system, "(no relevant fragments found)")
	})

	t.Run("empty question", func(t *testing.T) {
		svc := newTestService(t, &mockStore{}, &mockGenerator{})
		_, err := svc.Answer(ctx, "  ")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing credential", func(t *testing.T) {
		svc := newTestService(t, nil, nil)
		_, err := svc.Answer(ctx, "q")
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("store unavailable", func(t *testing.T) {
		store := &mockStore{searchErr: fmt.Errorf("%w: dial refused", vectorstore.ErrUnavailable)}
		svc := newTestService(t, store, &mockGenerator{})

		_, err := svc.Answer(ctx, "q")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("generation failure yields no partial answer", func(t *testing.T) {
		gen := &mockGenerator{err: errors.New("boom")}
		svc := newTestService(t, &mockStore{}, gen)

		ans, err := svc.Answer(ctx, "q")
		assert.Error(t, err)
		assert.Nil(t, ans)
	})

	t.Run("generation rate limited", func(t *testing.T) {
		gen := &mockGenerator{err: fmt.Errorf("%w: 429", generation.ErrRateLimited)}
		svc := newTestService(t, &mockStore{}, gen)

		_, err := svc.Answer(ctx, "q")
		assert.ErrorIs(t, err, ErrRateLimited)
	})
}

func TestRemoveSource(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc := newTestService(t, store, &mockGenerator{})

	res, err := svc.Ingest(ctx, IngestRequest{
		Type:    registry.SourceTypeText,
		Title:   "Go Notes",
		Content: "Some content.",
	})
	require.NoError(t, err)

	remaining, err := svc.RemoveSource(res.Source.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	// Vectors stay behind until a full clear.
	assert.Len(t, store.docs, 1)

	_, err = svc.RemoveSource("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	ctx := context.Background()

	t.Run("destroys collection and catalog together", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(t, store, &mockGenerator{})

		_, err := svc.Ingest(ctx, IngestRequest{
			Type:    registry.SourceTypeText,
			Title:   "Go Notes",
			Content: "Some content.",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Clear(ctx))
		assert.Equal(t, 0, svc.TotalSources())
		assert.Empty(t, store.docs)
		assert.Equal(t, 1, store.deleteCalls)

		// An empty collection is recreated so retrieval keeps working.
		assert.True(t, store.created)
		assert.Equal(t, 2, store.createCalls)
	})

	t.Run("store failure preserves the catalog", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(t, store, &mockGenerator{})

		_, err := svc.Ingest(ctx, IngestRequest{
			Type:    registry.SourceTypeText,
			Title:   "Go Notes",
			Content: "Some content.",
		})
		require.NoError(t, err)
		store.deleteErr = vectorstore.ErrUnavailable

		err = svc.Clear(ctx)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, 1, svc.TotalSources())
	})

	t.Run("missing collection clears the catalog", func(t *testing.T) {
		store := &mockStore{deleteErr: vectorstore.ErrCollectionNotFound}
		svc := newTestService(t, store, &mockGenerator{})
		require.NoError(t, svc.Clear(ctx))
	})
}

func TestEnsureCollection(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc := newTestService(t, store, &mockGenerator{})

	require.NoError(t, svc.EnsureCollection(ctx))
	require.NoError(t, svc.EnsureCollection(ctx))
	assert.Equal(t, 2, store.createCalls)
	assert.True(t, store.created)

	t.Run("unconfigured", func(t *testing.T) {
		svc := newTestService(t, nil, nil)
		assert.ErrorIs(t, svc.EnsureCollection(ctx), ErrConfiguration)
	})
}
