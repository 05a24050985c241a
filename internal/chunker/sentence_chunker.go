package chunker

import (
	"regexp"
	"strings"

	"ayurdiag/internal/domain"
)

// sentenceEnd matches terminal punctuation followed by whitespace, or a blank line.
var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*\s+|\n\s*\n`)

// SentenceChunker packs whole sentences into chunks, repeating the last
// overlap sentences of each chunk at the start of the next.
type SentenceChunker struct {
	perChunk int
	overlap  int
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 || overlapSentences >= sentencesPerChunk {
		overlapSentences = 0
	}
	return &SentenceChunker{perChunk: sentencesPerChunk, overlap: overlapSentences}
}

func (c *SentenceChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	sentences := splitSentences(document.Content)
	if len(sentences) == 0 {
		return nil, nil
	}
	var texts []string
	for start := 0; ; start += c.perChunk - c.overlap {
		end := min(start+c.perChunk, len(sentences))
		texts = append(texts, strings.Join(sentences[start:end], " "))
		if end == len(sentences) {
			break
		}
	}
	return buildChunks(document, texts), nil
}

// splitSentences keeps the terminal punctuation with each sentence and keeps
// a trailing fragment that has none. Internal whitespace is collapsed.
func splitSentences(text string) []string {
	var out []string
	add := func(s string) {
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			out = append(out, s)
		}
	}
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		add(text[last:loc[1]])
		last = loc[1]
	}
	add(text[last:])
	return out
}
