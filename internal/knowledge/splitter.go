package knowledge

import "strings"

const (
	chunkSize    = 100
	chunkOverlap = 20
)

// SplitMarkdown breaks a document into overlapping chunks suitable for
// embedding. Splits prefer paragraph then word boundaries; a chunk carries
// the tail of its predecessor so answers spanning a boundary stay findable.
func SplitMarkdown(text string) []string {
	paragraphs := strings.Split(strings.TrimSpace(text), "\n\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk == "" {
			return
		}
		chunks = append(chunks, chunk)
		current.Reset()
		current.WriteString(overlapTail(chunk))
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, word := range strings.Fields(para) {
			if current.Len() > 0 && current.Len()+len(word)+1 > chunkSize {
				flush()
			}
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(word)
		}
		// Paragraph boundary: flush if the chunk is already substantial.
		if current.Len() >= chunkSize-chunkOverlap {
			flush()
		}
	}

	final := strings.TrimSpace(current.String())
	if final != "" && (len(chunks) == 0 || final != overlapTail(chunks[len(chunks)-1])) {
		chunks = append(chunks, final)
	}
	return chunks
}

// overlapTail returns the last few words of a chunk, up to chunkOverlap
// characters, to seed the next chunk.
func overlapTail(chunk string) string {
	words := strings.Fields(chunk)
	var tail []string
	size := 0
	for i := len(words) - 1; i >= 0; i-- {
		if size+len(words[i])+1 > chunkOverlap {
			break
		}
		size += len(words[i]) + 1
		tail = append([]string{words[i]}, tail...)
	}
	return strings.Join(tail, " ")
}
