package services

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// builtinPrompts back services that run without a prompt store, and any
// store that fails to load.
var builtinPrompts = map[string]string{
	driven.PromptSystem: "You are a helpful research assistant.",
	driven.PromptSummarize: "Summarize the following research paper in a short paragraph. " +
		"Then, list 3-5 key points and highlight the most important sentences.\n\n%s",
	driven.PromptEntities: "Extract the key entities from the following text and the relationships " +
		"between them. Respond with JSON only, in the form " +
		`{"nodes":[{"id":"...","label":"..."}],"edges":[{"source":"...","target":"...","label":"..."}]}.` +
		"\n\n%s",
}

// loadPrompt returns the named template from store, or the built-in one.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		tpl, err := store.Load(name)
		if err == nil && strings.TrimSpace(tpl) != "" {
			return tpl
		}
		if err != nil {
			logger.Warn("Prompt %q unavailable, using built-in: %v", name, err)
		}
	}
	return builtinPrompts[name]
}

// fillTemplate substitutes text for the first %s in tpl. Templates without
// a placeholder get the text appended.
func fillTemplate(tpl, text string) string {
	if !strings.Contains(tpl, "%s") {
		return tpl + "\n\n" + text
	}
	return strings.Replace(tpl, "%s", text, 1)
}

// BuildPrompt lays out the user message for a question: the style
// instruction if the style has one, then the retrieved context, then the
// question.
func BuildPrompt(style domain.PromptStyle, context, question string) string {
	parts := make([]string, 0, 4)
	if instruction := style.Instruction(); instruction != "" {
		parts = append(parts, instruction)
	}
	parts = append(parts,
		"Context: "+context,
		"Question: "+question,
		"Answer:",
	)
	return strings.Join(parts, "\n\n")
}
