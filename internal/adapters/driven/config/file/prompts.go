package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk, with
// built-in defaults as fallback. Files are created lazily on first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are a helpful research assistant.`,

	driven.PromptSummarize: `Summarize the following research paper in a short paragraph. Then, list 3-5 key points and highlight the most important sentences.

%s`,

	driven.PromptEntities: `Extract the key entities (people, organisations, concepts, methods) from the following text and the relationships between them.
Respond with JSON only, in the form {"nodes":[{"id":"...","label":"..."}],"edges":[{"source":"...","target":"...","label":"..."}]}.

%s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.docqa/prompts/.
// No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".docqa", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. The first call
// writes the default files; a missing, unreadable or blank file falls
// back to the built-in default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	fallback, known := defaultPrompts[name]

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt := ""
	if s.initErr == nil {
		if loaded, err := s.loadFromFile(name); err == nil {
			prompt = loaded
		}
	}
	if prompt == "" {
		if !known {
			return "", fmt.Errorf("unknown prompt %q", name)
		}
		prompt = fallback
	}

	s.mu.Lock()
	if existing, ok := s.cache[name]; ok {
		prompt = existing
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory, the default files that do
// not exist yet, and the README.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		if err := writeIfMissing(filepath.Join(s.promptDir, name+".txt"), content); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	content := `# docqa Prompts

This directory contains customisable prompts used by docqa's LLM features.

## Files

- ` + "`system.txt`" + ` - System message sent with every question
- ` + "`summarize.txt`" + ` - Document summaries
- ` + "`entities.txt`" + ` - Entity graph extraction (must ask for JSON)

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command or after restarting the chat UI.

The question prompt itself (style, context, question) is fixed.

## Format Placeholders

` + "`summarize.txt`" + ` and ` + "`entities.txt`" + ` receive the document text through a single
` + "`%s`" + ` placeholder. Keep it in place when editing.
`
	return writeIfMissing(filepath.Join(s.promptDir, "README.md"), content)
}
