package domain

// PromptStyle selects the tone instruction prepended to a prompt.
type PromptStyle string

const (
	StyleConcise   PromptStyle = "concise"
	StyleTechnical PromptStyle = "technical"
	StyleCasual    PromptStyle = "casual"
)

var styleInstructions = map[PromptStyle]string{
	StyleConcise:   "Answer concisely in a few sentences.",
	StyleTechnical: "Answer with technical depth, using precise terminology and citing details from the context.",
	StyleCasual:    "Answer in a friendly, casual tone as if explaining to a colleague.",
}

// Instruction returns the instruction fragment for the style.
// Unknown styles have no instruction.
func (s PromptStyle) Instruction() string {
	return styleInstructions[s]
}

// IsValid returns true if the style has an instruction.
func (s PromptStyle) IsValid() bool {
	_, ok := styleInstructions[s]
	return ok
}

// String returns the string representation of the style.
func (s PromptStyle) String() string {
	return string(s)
}

// AllPromptStyles returns the known styles.
func AllPromptStyles() []PromptStyle {
	return []PromptStyle{StyleConcise, StyleTechnical, StyleCasual}
}
