package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/domain"
)

func doc(content string) domain.Document {
	return domain.Document{ID: "d1", Name: "vata.txt", Path: "data/raw/vata.txt", Type: "txt", Content: content, Metadata: map[string]string{"title": "vata"}}
}

func TestRecursiveChunkerShortText(t *testing.T) {
	chunks, err := NewRecursiveChunker(100, 20).Chunk(doc("Vata is dry and cold."))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "Vata is dry and cold.", c.Text)
	assert.Equal(t, "vata.txt_chunk_0", c.ChunkID)
	assert.Equal(t, "vata.txt", c.Source)
	assert.Equal(t, "txt", c.FileType)
	assert.Equal(t, 1, c.Total)
	assert.Equal(t, "vata", c.Metadata["title"])
}

func TestRecursiveChunkerEmpty(t *testing.T) {
	chunks, err := NewRecursiveChunker(100, 20).Chunk(doc(" \n\n "))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRecursiveChunkerRespectsSize(t *testing.T) {
	var paras []string
	for i := 0; i < 20; i++ {
		paras = append(paras, strings.Repeat("Pitta governs digestion and metabolism. ", 3))
	}
	text := strings.Join(paras, "\n\n") + strings.Repeat("ä", 250)

	c := NewRecursiveChunker(120, 30)
	pieces := c.SplitText(text)
	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 120)
		assert.NotEmpty(t, strings.TrimSpace(p))
	}
}

func TestRecursiveChunkerOverlap(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "w" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")
	pieces := NewRecursiveChunker(30, 10).SplitText(text)
	require.Greater(t, len(pieces), 2)
	for i := 1; i < len(pieces); i++ {
		prevWords := strings.Fields(pieces[i-1])
		first := strings.Fields(pieces[i])[0]
		assert.Contains(t, prevWords[len(prevWords)-3:], first, "chunk %d should start inside the previous tail", i)
	}
}

func TestRecursiveChunkerPrefersParagraphs(t *testing.T) {
	text := "Vata paragraph one.\n\nPitta paragraph two.\n\nKapha paragraph three."
	pieces := NewRecursiveChunker(25, 0).SplitText(text)
	assert.Equal(t, []string{"Vata paragraph one.", "Pitta paragraph two.", "Kapha paragraph three."}, pieces)
}

func TestSentenceChunker(t *testing.T) {
	d := doc("One. Two. Three. Four. Five.")
	chunks, err := NewSentenceChunker(2, 1).Chunk(d)
	require.NoError(t, err)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		assert.Equal(t, len(chunks), c.Total)
	}
	assert.Equal(t, []string{"One. Two.", "Two. Three.", "Three. Four.", "Four. Five."}, texts)
}

func TestSentenceChunkerOverlapClamped(t *testing.T) {
	chunks, err := NewSentenceChunker(2, 5).Chunk(doc("A. B. C."))
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Vata is dry!  Pitta is hot?\nKapha is heavy.\n\nHeading\n\nno full stop")
	assert.Equal(t, []string{"Vata is dry!", "Pitta is hot?", "Kapha is heavy.", "Heading", "no full stop"}, got)
	assert.Empty(t, splitSentences("   "))
}

func TestStatisticsAndFilters(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "short", Source: "a.txt", Total: 3},
		{Text: strings.Repeat("x", 60), Source: "a.txt", Total: 3},
		{Text: strings.Repeat("y", 200), Source: "b.txt", Total: 1},
	}
	s := Statistics(chunks)
	assert.Equal(t, 3, s.TotalChunks)
	assert.Equal(t, 5, s.MinLength)
	assert.Equal(t, 200, s.MaxLength)
	assert.Equal(t, map[string]int{"a.txt": 2, "b.txt": 1}, s.Sources)

	assert.Len(t, FilterByLength(chunks, 50, 0), 2)
	assert.Len(t, FilterByLength(chunks, 50, 100), 1)

	merged := MergeSmall(chunks, 100)
	require.Len(t, merged, 2)
	assert.Equal(t, "short\n\n"+strings.Repeat("x", 60), merged[0].Text)
	assert.Equal(t, "b.txt", merged[1].Source)
	assert.Nil(t, MergeSmall(nil, 10))
}
