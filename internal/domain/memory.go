package domain

import "time"

// MemoryEntry is one cached question/answer pair. The vector is L2-normalized
// at insertion so lookup similarity is a plain dot product. Usage fields are
// mutated in place on every hit; entries are never deleted automatically.
type MemoryEntry struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Vector     []float32 `json:"vector"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	UsageCount int       `json:"usage_count"`
	LastScore  float64   `json:"last_score"`
}
