package chunker

import (
	"strings"
	"unicode/utf8"

	"ayurdiag/internal/domain"
)

// DefaultSeparators are tried in order: paragraphs, lines, sentences, words, runes.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// RecursiveChunker splits text into windows of at most size runes, preferring
// the coarsest separator that keeps pieces small, and carries up to overlap
// runes of trailing context into the next window.
type RecursiveChunker struct {
	size       int
	overlap    int
	separators []string
}

func NewRecursiveChunker(size, overlap int) *RecursiveChunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &RecursiveChunker{size: size, overlap: overlap, separators: DefaultSeparators}
}

func (c *RecursiveChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	texts := c.SplitText(document.Content)
	return buildChunks(document, texts), nil
}

// SplitText splits raw text without attaching document metadata.
func (c *RecursiveChunker) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, c.separators)
}

func (c *RecursiveChunker) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, good []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) < c.size {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, c.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, c.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, c.merge(good, sep)...)
	}
	return out
}

// merge joins small pieces into windows no longer than size, keeping a tail
// of at most overlap runes from the previous window.
func (c *RecursiveChunker) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		out     []string
		current []string
		total   int
	)
	joinLen := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}
	for _, p := range pieces {
		n := runeLen(p)
		if total+n+joinLen() > c.size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				out = append(out, doc)
			}
			for total > c.overlap || (total+n+joinLen() > c.size && total > 0) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		total += n + joinLen()
		current = append(current, p)
	}
	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		out = append(out, doc)
	}
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
