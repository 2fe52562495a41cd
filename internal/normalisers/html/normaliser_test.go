package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Cats &amp; Dogs</title><style>p { color: red; }</style></head>
<body>
<!-- navigation -->
<h1>Pets</h1>
<p>The cat   sat.</p><p>The dog ran.<br>Fast.</p>
<script>alert("x")</script>
<ul><li>one</li><li>two &lt;3</li></ul>
</body>
</html>`

func TestNormalise(t *testing.T) {
	raw := &domain.RawDocument{URI: "/web/pets.html", Content: []byte(page)}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Cats & Dogs", result.Title)
	assert.Equal(t, "Pets\nThe cat sat.\nThe dog ran.\nFast.\none\ntwo <3", result.Content)
}

func TestNormalise_TitleFallsBackToFileName(t *testing.T) {
	raw := &domain.RawDocument{URI: "/web/field-notes.html", Content: []byte("<p>Hi</p>")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "field notes", result.Title)
	assert.Equal(t, "Hi", result.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
