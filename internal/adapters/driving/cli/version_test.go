package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestVersionCmd(t *testing.T) {
	defer setupTestServices()()
	original := version
	version = "1.2.3"
	defer func() { version = original }()

	out, err := execute("version")
	require.NoError(t, err)

	assert.Contains(t, out, "docqa version 1.2.3")
	for _, m := range domain.SupportedModels() {
		assert.Contains(t, out, m.String())
	}
	assert.Contains(t, out, "* "+domain.DefaultModel.String())
}

func TestVersionCmd_Short(t *testing.T) {
	defer setupTestServices()()
	original := version
	version = "dev"
	defer func() { version = original }()

	out, err := execute("version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev", strings.TrimSpace(out))
}
