package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptStyle_Instruction(t *testing.T) {
	for _, s := range AllPromptStyles() {
		assert.True(t, s.IsValid())
		assert.NotEmpty(t, s.Instruction(), string(s))
	}
}

func TestPromptStyle_UnknownHasNoInstruction(t *testing.T) {
	assert.False(t, PromptStyle("pirate").IsValid())
	assert.Empty(t, PromptStyle("pirate").Instruction())
	assert.Empty(t, PromptStyle("").Instruction())
}

func TestPromptStyle_InstructionsDiffer(t *testing.T) {
	assert.NotEqual(t, StyleConcise.Instruction(), StyleTechnical.Instruction())
	assert.NotEqual(t, StyleTechnical.Instruction(), StyleCasual.Instruction())
}
