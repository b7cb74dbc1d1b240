package chat

import (
	"context"

	"github.com/origenlabs/origen/internal/domain"
)

// DocumentSource loads the raw knowledge documents.
type DocumentSource interface {
	Load() ([]domain.Document, error)
}

// Indexer serves the embedding index for the current document set.
type Indexer interface {
	GetOrBuild(ctx context.Context, docs []domain.Document) (*domain.Index, error)
	Invalidate()
}

// Retriever searches the index for question-relevant context.
type Retriever interface {
	Search(ctx context.Context, question string, ix *domain.Index) (domain.QueryResult, error)
}

// Memory is the semantic answer cache.
type Memory interface {
	Lookup(ctx context.Context, question string) (answer string, score float64, hit bool, err error)
	Insert(ctx context.Context, question, answer string) error
	IsNegative(answer string) bool
}

// Classifier decides whether a question is general knowledge.
type Classifier interface {
	Classify(question string, bestSimilarity float64, hasContext bool) domain.ClassificationResult
}

// SafetyEvaluator runs the crisis-detection machine over the raw question.
type SafetyEvaluator interface {
	Evaluate(message string) domain.SafetyDecision
}

// Generator produces the answer text from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	IsConfigured() bool
}

// History records and replays session transcripts.
type History interface {
	Append(ctx context.Context, sessionID, role, content string) error
	Recent(ctx context.Context, sessionID string, limit int) ([]domain.ChatTurn, error)
}
