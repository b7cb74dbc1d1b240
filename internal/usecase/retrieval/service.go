// Package retrieval implements cosine-similarity context search over the
// embedding index, with a lexical fallback for questions where semantic
// search underperforms.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/domain"
)

// Embedder vectorizes the question. It must be the same model and
// configuration used at indexing time; that precondition is wired at the
// composition root, not re-validated per query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Params holds search tuning.
type Params struct {
	TopK             int
	MinSimilarity    float64
	MaxFragmentChars int
}

// Service retrieves relevant context for a question.
type Service struct {
	embed  Embedder
	params Params
	logger *zap.Logger
}

// New creates a retrieval service.
func New(embed Embedder, params Params, logger *zap.Logger) *Service {
	return &Service{embed: embed, params: params, logger: logger}
}

// Search embeds the question, ranks it against the index fragments, filters
// by the similarity threshold, and assembles the surviving fragment text.
//
// When every ranked score is below the threshold but the index is non-empty,
// the single best fragment is kept anyway so the caller always sees some
// signal about the closest available content.
func (s *Service) Search(ctx context.Context, question string, ix *domain.Index) (domain.QueryResult, error) {
	if ix == nil || len(ix.Fragments) == 0 {
		return domain.QueryResult{}, nil
	}

	embRes, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed question: %w: %w", err, domain.ErrEmbeddingFailure)
	}

	vectors := make([][]float32, len(ix.Fragments))
	for i := range ix.Fragments {
		vectors[i] = ix.Fragments[i].Vector
	}

	ranked, err := Rank(embRes.Embedding, vectors, s.params.TopK)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("rank fragments: %w", err)
	}
	if len(ranked) == 0 {
		return domain.QueryResult{}, nil
	}

	bestScore := ranked[0].Score

	surviving := ranked[:0:0]
	for _, r := range ranked {
		if r.Score >= s.params.MinSimilarity {
			surviving = append(surviving, r)
		}
	}
	if len(surviving) == 0 {
		surviving = ranked[:1]
	}

	parts := make([]string, 0, len(surviving))
	scores := make([]float64, 0, len(surviving))
	refs := make([]int, 0, len(surviving))
	for _, r := range surviving {
		parts = append(parts, truncate(ix.Fragments[r.Index].Text, s.params.MaxFragmentChars))
		scores = append(scores, r.Score)
		refs = append(refs, r.Index)
	}

	return domain.QueryResult{
		Context:            strings.Join(parts, "\n\n"),
		Scores:             scores,
		FragmentRefs:       refs,
		HasRelevantContent: true,
		BestScore:          bestScore,
	}, nil
}

// truncate cuts fragment text at assembly time only, never during selection.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
