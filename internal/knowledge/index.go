// Package knowledge holds the retrieval side of the assistant: a markdown
// corpus split into chunks, embedded once at startup, and searched by
// cosine similarity per query.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/autostream-ai/concierge/internal/engine"
)

// topK is how many snippets a search returns, matching the retriever
// configuration the answer prompts were tuned against.
const topK = 4

// Index is an in-memory embedding index over the knowledge corpus.
type Index struct {
	embedder Embedder
	chunks   []string
	vectors  [][]float64
	logger   *slog.Logger
}

// BuildIndex splits the corpus, embeds every chunk, and returns a
// searchable index.
func BuildIndex(ctx context.Context, embedder Embedder, corpus string, logger *slog.Logger) (*Index, error) {
	chunks := SplitMarkdown(corpus)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("knowledge corpus is empty")
	}

	vectors, err := embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	logger.Info("knowledge index built", "chunks", len(chunks))
	return &Index{embedder: embedder, chunks: chunks, vectors: vectors, logger: logger}, nil
}

// BuildIndexFromFile reads a markdown file and builds the index from it.
func BuildIndexFromFile(ctx context.Context, embedder Embedder, path string, logger *slog.Logger) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return BuildIndex(ctx, embedder, string(raw), logger)
}

// Search embeds the query and returns the top-k most similar chunks,
// best first.
func (ix *Index) Search(ctx context.Context, query string) (engine.SearchResult, error) {
	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return engine.SearchResult{}, fmt.Errorf("embed query: %w", err)
	}
	qv := vectors[0]

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(ix.chunks))
	for i, v := range ix.vectors {
		ranked[i] = scored{idx: i, score: cosine(qv, v)}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	k := topK
	if k > len(ranked) {
		k = len(ranked)
	}
	snippets := make([]string, 0, k)
	for _, r := range ranked[:k] {
		snippets = append(snippets, ix.chunks[r.idx])
	}
	return engine.SearchResult{Query: query, Snippets: snippets}, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
