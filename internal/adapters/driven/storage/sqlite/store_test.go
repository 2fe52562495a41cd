package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "docqa-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func newDoc(id, owner string, created time.Time) *domain.Document {
	return &domain.Document{
		ID:        id,
		OwnerID:   owner,
		Title:     "Animals",
		Content:   "The cat sat. The dog ran. Birds fly south.",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func newChunks(docID, owner string, texts ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Text: text, Ordinal: i, DocumentID: docID, OwnerID: owner}
	}
	return chunks
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.Equal(t, dbFileName, filepath.Base(store.Path()))
	_, err := os.Stat(store.Path())
	assert.NoError(t, err)

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, newDoc("doc-1", "alice", time.Now()), nil))
	require.NoError(t, store.Close())

	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.OwnerID)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestMigrate_SkipsAppliedAndRecordsNew(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	fsys := fstest.MapFS{
		"001_initial.up.sql": {Data: []byte("CREATE TABLE must_not_run (id INTEGER);")},
		"002_extra.up.sql":   {Data: []byte("CREATE TABLE extra (id INTEGER);")},
		"002_extra.down.sql": {Data: []byte("DROP TABLE extra;")},
		"README.md":          {Data: []byte("ignored")},
	}
	require.NoError(t, store.migrate(fsys))

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	var n int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE name = 'must_not_run'").Scan(&n))
	assert.Zero(t, n)

	// Running again is a no-op.
	require.NoError(t, store.migrate(fsys))
}

func TestMigrate_FailedMigrationNotRecorded(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("THIS IS NOT SQL;")},
	}
	err := store.migrate(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	version, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

// ==================== Document Store ====================

func TestDocumentStore_SaveDocument_Success(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()
	created := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	err := docs.SaveDocument(ctx, newDoc("doc-1", "alice", created),
		newChunks("doc-1", "alice", "The cat sat.", "The dog ran.", "Birds fly south."))
	require.NoError(t, err)

	doc, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Animals", doc.Title)
	assert.True(t, created.Equal(doc.CreatedAt))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, "doc-1", chunk.DocumentID)
		assert.Equal(t, "alice", chunk.OwnerID)
	}
	assert.Equal(t, "The dog ran.", chunks[1].Text)
}

func TestDocumentStore_SaveDocument_ReplacesChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()
	now := time.Now()

	require.NoError(t, docs.SaveDocument(ctx, newDoc("doc-1", "alice", now), newChunks("doc-1", "alice", "a", "b", "c")))
	require.NoError(t, docs.SaveDocument(ctx, newDoc("doc-1", "alice", now), newChunks("doc-1", "alice", "only")))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "only", chunks[0].Text)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_GetChunks_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	chunks, err := store.DocumentStore().GetChunks(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestDocumentStore_UpdateSummary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, docs.SaveDocument(ctx, newDoc("doc-1", "alice", created), nil))
	require.NoError(t, docs.UpdateSummary(ctx, "doc-1", "Animals move about.", created.Add(time.Hour)))

	doc, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Animals move about.", doc.Summary)
	assert.True(t, created.Add(time.Hour).Equal(doc.UpdatedAt))

	assert.ErrorIs(t, docs.UpdateSummary(ctx, "missing", "x", created), domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument_CascadesChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()

	require.NoError(t, docs.SaveDocument(ctx, newDoc("doc-1", "alice", time.Now()), newChunks("doc-1", "alice", "a", "b")))
	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, docs.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	docs := store.DocumentStore()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, docs.SaveDocument(ctx, newDoc("first", "alice", base), nil))
	require.NoError(t, docs.SaveDocument(ctx, newDoc("second", "alice", base.Add(time.Minute)), nil))
	require.NoError(t, docs.SaveDocument(ctx, newDoc("bobs", "bob", base.Add(time.Hour)), nil))

	list, err := docs.ListDocuments(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID)
	assert.Equal(t, "first", list[1].ID)
}

// ==================== History Store ====================

func turnPair(question, answer, model string) []domain.Turn {
	now := time.Now()
	return []domain.Turn{
		{Role: domain.RoleUser, Type: domain.RoleUser, Content: question, Model: model, DocumentID: "doc-1", CreatedAt: now},
		{Role: domain.RoleAssistant, Type: domain.RoleAssistant, Content: answer, Model: model, DocumentID: "doc-1", CreatedAt: now},
	}
}

func TestHistoryStore_Read_UnknownOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	turns, err := store.HistoryStore().Read(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestHistoryStore_AppendAndRead(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	history := store.HistoryStore()

	require.NoError(t, history.Append(ctx, "alice", turnPair("What did the dog do?", "It ran.", "openai/gpt-3.5-turbo")))
	require.NoError(t, history.Append(ctx, "alice", turnPair("And the cat?", "It sat.", "google/gemini-pro")))

	turns, err := history.Read(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "It ran.", turns[1].Content)
	assert.Equal(t, "google/gemini-pro", turns[3].Model)
	assert.Equal(t, "doc-1", turns[2].DocumentID)
	assert.False(t, turns[0].CreatedAt.IsZero())
}

func TestHistoryStore_Replace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	history := store.HistoryStore()

	require.NoError(t, history.Append(ctx, "alice", turnPair("q1", "a1", "")))
	require.NoError(t, history.Replace(ctx, "alice", []domain.Turn{
		{Role: domain.RoleUser, Content: "imported"},
	}))

	turns, err := history.Read(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "imported", turns[0].Content)
	assert.True(t, turns[0].CreatedAt.IsZero())

	// Appending after a replace continues the sequence.
	require.NoError(t, history.Append(ctx, "alice", turnPair("q2", "a2", "")))
	turns, err = history.Read(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "a2", turns[2].Content)

	require.NoError(t, history.Replace(ctx, "alice", nil))
	turns, err = history.Read(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestHistoryStore_OwnersIsolated(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	history := store.HistoryStore()

	require.NoError(t, history.Append(ctx, "alice", turnPair("q", "a", "")))
	require.NoError(t, history.Replace(ctx, "bob", nil))

	turns, err := history.Read(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestHistoryStore_ConcurrentAppend(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	history := store.HistoryStore()
	const n = 20

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- history.Append(ctx, "alice", turnPair(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), ""))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	turns, err := history.Read(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, turns, 2*n)
	for i := 0; i < len(turns); i += 2 {
		require.Equal(t, domain.RoleUser, turns[i].Role)
		require.Equal(t, domain.RoleAssistant, turns[i+1].Role)
		assert.Equal(t, "a"+turns[i].Content[1:], turns[i+1].Content)
	}
}

// ==================== Share Store ====================

func TestShareStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	shares := store.ShareStore()
	created := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	require.NoError(t, shares.SaveShare(ctx, domain.SharedAnswer{
		Token: "tok-1", OwnerID: "alice", Answer: "It ran.", Model: "openai/gpt-3.5-turbo", CreatedAt: created,
	}))

	share, err := shares.GetShare(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "It ran.", share.Answer)
	assert.Equal(t, "alice", share.OwnerID)
	assert.True(t, created.Equal(share.CreatedAt))
}

func TestShareStore_GetShare_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.ShareStore().GetShare(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
