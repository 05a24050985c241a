package chunker

import (
	"fmt"
	"maps"

	"ayurdiag/internal/domain"
)

func buildChunks(doc domain.Document, texts []string) []domain.Chunk {
	if len(texts) == 0 {
		return nil
	}
	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			ChunkID:    fmt.Sprintf("%s_chunk_%d", name, i),
			Text:       text,
			Index:      i,
			Total:      len(texts),
			Source:     name,
			Path:       doc.Path,
			FileType:   doc.Type,
			Metadata:   maps.Clone(doc.Metadata),
		}
	}
	return chunks
}

// Stats summarises a chunk set.
type Stats struct {
	TotalChunks   int            `json:"total_chunks"`
	TotalChars    int            `json:"total_characters"`
	AverageLength float64        `json:"average_chunk_size"`
	MinLength     int            `json:"min_chunk_size"`
	MaxLength     int            `json:"max_chunk_size"`
	Sources       map[string]int `json:"chunks_per_source"`
}

// Statistics computes Stats using rune lengths.
func Statistics(chunks []domain.Chunk) Stats {
	s := Stats{TotalChunks: len(chunks), Sources: map[string]int{}}
	for i, c := range chunks {
		n := runeLen(c.Text)
		s.TotalChars += n
		if i == 0 || n < s.MinLength {
			s.MinLength = n
		}
		if n > s.MaxLength {
			s.MaxLength = n
		}
		s.Sources[c.Source]++
	}
	if len(chunks) > 0 {
		s.AverageLength = float64(s.TotalChars) / float64(len(chunks))
	}
	return s
}

// FilterByLength keeps chunks with at least minLen runes and, when maxLen > 0,
// at most maxLen runes.
func FilterByLength(chunks []domain.Chunk, minLen, maxLen int) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		n := runeLen(c.Text)
		if n < minLen || (maxLen > 0 && n > maxLen) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MergeSmall appends each chunk shorter than minLen to its successor when both
// come from the same source file.
func MergeSmall(chunks []domain.Chunk, minLen int) []domain.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]domain.Chunk, 0, len(chunks))
	cur := chunks[0]
	for _, next := range chunks[1:] {
		if runeLen(cur.Text) < minLen && next.Source == cur.Source {
			cur.Text += "\n\n" + next.Text
			cur.Total = next.Total
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}
