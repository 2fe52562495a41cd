package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const catsText = "Cats purr when they are content. Cats also sleep for most of the day. " +
	"Dogs bark at strangers. Birds sing in the morning."

func TestIngestCmd_File(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "cats.md")
	require.NoError(t, os.WriteFile(path, []byte("# All About Cats\n\n"+catsText), 0o600))

	out, err := execute("ingest", "--owner", "alice", "--id", "cats", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested cats")
	assert.Contains(t, out, "Title: All About Cats")

	doc, err := env.docs.GetDocument(t.Context(), "cats")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.OwnerID)
	assert.Contains(t, doc.Content, "Cats purr")
}

func TestIngestCmd_StdinJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeWithInput(catsText, "ingest", "--owner", "alice", "--id", "cats", "--json", "-")

	require.NoError(t, err)
	var result domain.IngestResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "cats", result.DocumentID)
	assert.Greater(t, result.Chunks, 1)
}

func TestIngestCmd_BlankIsInvalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeWithInput("   \n", "ingest", "--owner", "alice", "-")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 2, ExitCode(err))
}

func TestIngestCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ingest", filepath.Join(t.TempDir(), "nope.txt"))

	assert.Error(t, err)
}

func TestIngestCmd_RequiresArg(t *testing.T) {
	_, err := execute("ingest")

	assert.ErrorContains(t, err, "accepts 1 arg(s)")
}
