package subtitle

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxCharsPerBlock keeps each caption under the 500 character limit
// most editors import without truncation.
const DefaultMaxCharsPerBlock = 499

// SplitTextIntoBlocks cuts narration into blocks of at most maxChars runes.
// Sentences are packed greedily; a sentence longer than maxChars is packed
// word by word. A single word longer than maxChars becomes its own block.
// Whitespace runs inside a block collapse to one space, so a block never
// carries a line break. Blank text yields no blocks.
func SplitTextIntoBlocks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxCharsPerBlock
	}

	flat := collapseSpace(text)
	if flat == "" {
		return nil
	}
	if utf8.RuneCountInString(flat) <= maxChars {
		return []string{flat}
	}

	p := &packer{maxChars: maxChars}
	for _, sentence := range splitSentences(text) {
		if utf8.RuneCountInString(sentence) <= maxChars {
			p.add(sentence)
			continue
		}
		p.flush()
		for _, word := range strings.Fields(sentence) {
			p.add(word)
		}
	}
	p.flush()
	return p.blocks
}

// packer accumulates pieces into space-joined blocks, starting a new block
// whenever the next piece would push the current one past maxChars.
type packer struct {
	maxChars int
	blocks   []string
	current  string
}

func (p *packer) add(piece string) {
	if p.current == "" {
		p.current = piece
		return
	}
	candidate := p.current + " " + piece
	if utf8.RuneCountInString(candidate) > p.maxChars {
		p.flush()
		p.current = piece
		return
	}
	p.current = candidate
}

func (p *packer) flush() {
	if p.current != "" {
		p.blocks = append(p.blocks, p.current)
		p.current = ""
	}
}

// splitSentences cuts text at every whitespace run that follows '.', '!' or
// '?'. Returned sentences are space-collapsed and never empty.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	appendSentence := func(end int) {
		if s := collapseSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
	}

	for i := 1; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) || !isSentenceEnd(runes[i-1]) {
			continue
		}
		appendSentence(i)
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j
	}
	if start < len(runes) {
		appendSentence(len(runes))
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compactLines trims every line of s and drops the empty ones, keeping
// single line breaks.
func compactLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
