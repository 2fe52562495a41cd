package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ingestCats stores catsText as document "cats" for alice.
func ingestCats(t *testing.T) {
	t.Helper()
	_, err := executeWithInput(catsText, "ingest", "--owner", "alice", "--id", "cats", "-")
	require.NoError(t, err)
	resetFlags()
}

func TestAskCmd_Answers(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestCats(t)

	out, err := execute("ask", "--owner", "alice", "-m", string(domain.ModelClaude3Haiku), "cats", "Why do cats purr?")

	require.NoError(t, err)
	assert.Contains(t, out, "Cats purr when content.")
	assert.Equal(t, []string{string(domain.ModelClaude3Haiku)}, env.llm.models)

	turns, err := env.history.Read(t.Context(), "alice")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "Why do cats purr?", turns[0].Content)
	assert.Equal(t, string(domain.ModelClaude3Haiku), turns[1].Model)
}

func TestAskCmd_QuestionFromStdin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestCats(t)

	out, err := executeWithInput("Do dogs bark?\n", "ask", "--owner", "alice", "cats")

	require.NoError(t, err)
	assert.Contains(t, out, "Cats purr when content.")
	assert.Equal(t, []string{string(domain.DefaultModel)}, env.llm.models)
}

func TestAskCmd_JSONWithContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestCats(t)

	out, err := execute("ask", "--owner", "alice", "--json", "-k", "1", "cats", "Do birds sing?")

	require.NoError(t, err)
	var got struct {
		Answer  string   `json:"answer"`
		Model   string   `json:"model"`
		Context []string `json:"context"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Cats purr when content.", got.Answer)
	assert.Equal(t, string(domain.DefaultModel), got.Model)
	assert.Len(t, got.Context, 1)
}

func TestAskCmd_UnsupportedModel(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestCats(t)

	_, err := execute("ask", "--owner", "alice", "-m", "openai/gpt-4", "cats", "Why?")

	assert.ErrorIs(t, err, domain.ErrUnsupportedModel)
	assert.Equal(t, 4, ExitCode(err))
	assert.Empty(t, env.llm.models)
}

func TestAskCmd_OtherOwnersDocumentIsNotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestCats(t)

	_, err := execute("ask", "--owner", "bob", "cats", "Why do cats purr?")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 3, ExitCode(err))
}

func TestAskCmd_GenerationFailureKeepsHistory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestCats(t)
	env.llm.err = errors.New("upstream 502")

	_, err := execute("ask", "--owner", "alice", "cats", "Why do cats purr?")

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, 6, ExitCode(err))
	turns, err := env.history.Read(t.Context(), "alice")
	require.NoError(t, err)
	assert.Empty(t, turns)
}
