package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestLoadPrompt(t *testing.T) {
	store := stubPrompts{
		driven.PromptSystem:    "Custom system.",
		driven.PromptSummarize: "   ",
	}

	assert.Equal(t, "Custom system.", loadPrompt(store, driven.PromptSystem))
	assert.Equal(t, builtinPrompts[driven.PromptSummarize], loadPrompt(store, driven.PromptSummarize))
	assert.Equal(t, builtinPrompts[driven.PromptEntities], loadPrompt(store, driven.PromptEntities))
	assert.Equal(t, builtinPrompts[driven.PromptSystem], loadPrompt(nil, driven.PromptSystem))
}

func TestFillTemplate(t *testing.T) {
	assert.Equal(t, "Sum: text, 100% done", fillTemplate("Sum: %s, 100% done", "text"))
	assert.Equal(t, "A %s B", fillTemplate("%s %s B", "A"))
	assert.Equal(t, "No placeholder\n\ntext", fillTemplate("No placeholder", "text"))
}
