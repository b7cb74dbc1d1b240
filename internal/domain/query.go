package domain

// QueryResult is the outcome of a context retrieval. Transient, produced per
// query, never persisted.
type QueryResult struct {
	// Context is the assembled fragment text, blank-line separated.
	Context string
	// Scores holds the similarity of each surviving fragment, best first.
	Scores []float64
	// FragmentRefs holds the index-positions of the surviving fragments.
	FragmentRefs []int
	// HasRelevantContent is true iff at least one fragment survived.
	HasRelevantContent bool
	// BestScore is the similarity of the single best-ranked fragment,
	// 0.0 when the index is empty.
	BestScore float64
}

// ClassificationResult is the knowledge-source verdict for one question.
type ClassificationResult struct {
	IsGeneralKnowledge bool
	Category           string
	// Confidence is clamp(score/3, 0, 1).
	Confidence float64
	Reason     string
}

// ChatTurn is one message in a session history.
type ChatTurn struct {
	Role    string
	Content string
}
