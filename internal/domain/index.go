package domain

// Document is a source text known to the system, identified by a stable id.
// The id ties fragments back to their origin but is never surfaced to users.
type Document struct {
	ID   string
	Text string
}

// Fragment is one chunked, embedded slice of a source document.
// Immutable once created; replaced wholesale when its source changes.
type Fragment struct {
	SourceID string    `json:"source_id"`
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector"`
}

// Index holds the full fragment set plus the chunking parameters used to
// build it. An index whose parameters or source-id set no longer match the
// current configuration and document set is stale and must be regenerated.
type Index struct {
	Fragments    []Fragment `json:"fragments"`
	StrategyTag  string     `json:"strategy_tag"`
	ChunkSize    int        `json:"chunk_size"`
	ChunkOverlap int        `json:"chunk_overlap"`
}

// SourceIDs returns the set of document ids covered by the index fragments.
func (ix *Index) SourceIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(ix.Fragments))
	for _, f := range ix.Fragments {
		ids[f.SourceID] = struct{}{}
	}
	return ids
}

// Fresh reports whether the index matches the given chunking configuration
// and covers exactly the given document set.
func (ix *Index) Fresh(strategyTag string, chunkSize, chunkOverlap int, docs []Document) bool {
	if ix.StrategyTag != strategyTag || ix.ChunkSize != chunkSize || ix.ChunkOverlap != chunkOverlap {
		return false
	}
	covered := ix.SourceIDs()
	current := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		current[d.ID] = struct{}{}
	}
	if len(covered) != len(current) {
		return false
	}
	for id := range current {
		if _, ok := covered[id]; !ok {
			return false
		}
	}
	return true
}
