// Package chunker splits extracted document text into bounded chunks.
//
// Chunks break only on whitespace. Whole sentences are packed together
// while they fit; a sentence longer than the limit is word-wrapped, and a
// single word longer than the limit becomes a chunk of its own rather than
// being cut.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultMaxChars is the default chunk size limit in characters.
const DefaultMaxChars = 1024

// Processor turns document text into domain chunks.
type Processor struct {
	maxChars int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the chunk size limit in characters.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxChars returns the configured chunk size limit.
func (p *Processor) MaxChars() int {
	return p.maxChars
}

// Chunk splits text into chunks belonging to documentID.
// Empty text yields no chunks and no error.
func (p *Processor) Chunk(ownerID, documentID, text string) ([]domain.Chunk, error) {
	parts, err := Split(text, p.maxChars)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = domain.Chunk{
			Text:       part,
			Ordinal:    i,
			DocumentID: documentID,
			OwnerID:    ownerID,
		}
	}
	return chunks, nil
}

// Split breaks text into chunks of at most maxChars runes, joined
// internally by single spaces. Joining the result with spaces reproduces
// the text with its whitespace collapsed.
func Split(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars must be positive, got %d", domain.ErrInvalidInput, maxChars)
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{}, nil
	}

	var b builder
	b.max = maxChars

	for _, sentence := range sentences(words) {
		joined := strings.Join(sentence, " ")
		n := utf8.RuneCountInString(joined)

		if b.fits(n) {
			b.add(joined, n)
			continue
		}
		if n <= maxChars {
			b.flush()
			b.add(joined, n)
			continue
		}

		// Sentence alone is too long: wrap it word by word.
		for _, w := range sentence {
			wn := utf8.RuneCountInString(w)
			if !b.fits(wn) {
				b.flush()
			}
			b.add(w, wn)
		}
	}
	b.flush()

	return b.chunks, nil
}

// builder accumulates words into the current chunk.
type builder struct {
	max    int
	cur    strings.Builder
	n      int
	chunks []string
}

// fits reports whether a piece of n runes can join the current chunk.
// An empty chunk accepts anything.
func (b *builder) fits(n int) bool {
	if b.n == 0 {
		return n <= b.max
	}
	return b.n+1+n <= b.max
}

func (b *builder) add(piece string, n int) {
	if b.n > 0 {
		b.cur.WriteByte(' ')
		b.n++
	}
	b.cur.WriteString(piece)
	b.n += n
}

func (b *builder) flush() {
	if b.n == 0 {
		return
	}
	b.chunks = append(b.chunks, b.cur.String())
	b.cur.Reset()
	b.n = 0
}

// sentences groups words into sentences. A word ending in terminal
// punctuation, optionally followed by closing quotes or brackets, ends one.
func sentences(words []string) [][]string {
	var out [][]string
	start := 0
	for i, w := range words {
		if endsSentence(w) {
			out = append(out, words[start:i+1])
			start = i + 1
		}
	}
	if start < len(words) {
		out = append(out, words[start:])
	}
	return out
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]}’”»`)
	if trimmed == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}
