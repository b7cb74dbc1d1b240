package indexer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	stored  *domain.Index
	loadErr error
	saveErr error

	loads int
	saves int
}

func (m *mockStore) Load(_ context.Context) (domain.Index, bool, error) {
	m.loads++
	if m.loadErr != nil {
		return domain.Index{}, false, m.loadErr
	}
	if m.stored == nil {
		return domain.Index{}, false, nil
	}
	return *m.stored, true, nil
}

func (m *mockStore) Save(_ context.Context, ix domain.Index) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = &ix
	return nil
}

type mockEmbedder struct {
	calls int
	err   error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

// --- Tests ---

func TestGetOrBuild_BuildsAndPersists(t *testing.T) {
	store := &mockStore{}
	emb := &mockEmbedder{}
	svc := New(store, emb, 10, 2, zap.NewNop())

	docs := []domain.Document{{ID: "a.txt", Text: "abcdefghijklmnopqrst"}}

	ix, err := svc.GetOrBuild(context.Background(), docs)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if len(ix.Fragments) == 0 {
		t.Fatal("expected fragments")
	}
	if ix.StrategyTag != StrategyTag {
		t.Errorf("strategy tag = %q, want %q", ix.StrategyTag, StrategyTag)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	for i, f := range ix.Fragments {
		if f.SourceID != "a.txt" {
			t.Errorf("fragment %d source = %q, want a.txt", i, f.SourceID)
		}
		if len(f.Vector) == 0 {
			t.Errorf("fragment %d has no vector", i)
		}
	}
}

func TestGetOrBuild_ReusesFreshPersistedIndex(t *testing.T) {
	docs := []domain.Document{{ID: "a.txt", Text: "hello world content"}}

	store := &mockStore{}
	first := &mockEmbedder{}
	svc := New(store, first, 10, 2, zap.NewNop())
	if _, err := svc.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Fresh service, same store: must load, not re-embed.
	second := &mockEmbedder{}
	svc2 := New(store, second, 10, 2, zap.NewNop())
	ix, err := svc2.GetOrBuild(context.Background(), docs)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if second.calls != 0 {
		t.Errorf("embedder called %d times for a fresh persisted index", second.calls)
	}
	if len(ix.Fragments) == 0 {
		t.Error("expected fragments from persisted index")
	}
}

func TestGetOrBuild_RebuildsOnChunkParamChange(t *testing.T) {
	docs := []domain.Document{{ID: "a.txt", Text: "hello world content"}}

	store := &mockStore{}
	svc := New(store, &mockEmbedder{}, 10, 2, zap.NewNop())
	if _, err := svc.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("seed: %v", err)
	}

	emb := &mockEmbedder{}
	svc2 := New(store, emb, 12, 3, zap.NewNop())
	if _, err := svc2.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if emb.calls == 0 {
		t.Error("expected rebuild after chunk parameter change")
	}
}

func TestGetOrBuild_RebuildsOnDocumentSetChange(t *testing.T) {
	store := &mockStore{}
	svc := New(store, &mockEmbedder{}, 10, 2, zap.NewNop())
	if _, err := svc.GetOrBuild(context.Background(), []domain.Document{{ID: "a.txt", Text: "hello world"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	emb := &mockEmbedder{}
	svc2 := New(store, emb, 10, 2, zap.NewNop())
	docs := []domain.Document{{ID: "a.txt", Text: "hello world"}, {ID: "b.txt", Text: "more content"}}
	if _, err := svc2.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if emb.calls == 0 {
		t.Error("expected rebuild after source id set change")
	}
}

func TestGetOrBuild_CachedIndexSkipsStore(t *testing.T) {
	store := &mockStore{}
	svc := New(store, &mockEmbedder{}, 10, 2, zap.NewNop())
	docs := []domain.Document{{ID: "a.txt", Text: "hello world"}}

	if _, err := svc.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loadsAfterSeed := store.loads

	if _, err := svc.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if store.loads != loadsAfterSeed {
		t.Errorf("fresh in-memory index hit the store (%d extra loads)", store.loads-loadsAfterSeed)
	}
}

func TestGetOrBuild_SaveFailureIsNotFatal(t *testing.T) {
	store := &mockStore{saveErr: errors.New("disk full")}
	svc := New(store, &mockEmbedder{}, 10, 2, zap.NewNop())

	ix, err := svc.GetOrBuild(context.Background(), []domain.Document{{ID: "a.txt", Text: "hello world"}})
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if len(ix.Fragments) == 0 {
		t.Error("expected in-memory index despite persistence failure")
	}
}

func TestGetOrBuild_EmbedFailureIsIndexUnavailable(t *testing.T) {
	store := &mockStore{}
	svc := New(store, &mockEmbedder{err: errors.New("provider down")}, 10, 2, zap.NewNop())

	_, err := svc.GetOrBuild(context.Background(), []domain.Document{{ID: "a.txt", Text: "hello world"}})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("got %v, want ErrIndexUnavailable", err)
	}
}

func TestGetOrBuild_EmptyDocumentSet(t *testing.T) {
	svc := New(&mockStore{}, &mockEmbedder{}, 10, 2, zap.NewNop())

	ix, err := svc.GetOrBuild(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	if len(ix.Fragments) != 0 {
		t.Errorf("expected empty index, got %d fragments", len(ix.Fragments))
	}
}

func TestInvalidate_ForcesRevalidation(t *testing.T) {
	store := &mockStore{}
	svc := New(store, &mockEmbedder{}, 10, 2, zap.NewNop())
	docs := []domain.Document{{ID: "a.txt", Text: "hello world"}}

	if _, err := svc.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loadsBefore := store.loads

	svc.Invalidate()
	if _, err := svc.GetOrBuild(context.Background(), docs); err != nil {
		t.Fatalf("after invalidate: %v", err)
	}
	if store.loads == loadsBefore {
		t.Error("expected a store load after Invalidate")
	}
}
