package driven

// Prompt names understood by PromptStore.
const (
	// PromptSystem is the system message sent with every chat request.
	PromptSystem = "system"

	// PromptSummarize is the summary instruction; %s receives the document text.
	PromptSummarize = "summarize"

	// PromptEntities is the entity graph instruction; %s receives the document text.
	PromptEntities = "entities"
)

// PromptStore loads user-editable prompt templates.
type PromptStore interface {
	// Load returns the template for name, falling back to the built-in default.
	Load(name string) (string, error)
}
