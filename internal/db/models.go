package db

// Node represents a row in the nodes table
type Node struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"` // "paper", "method", "dataset", "task", "model", "area", "collection", "context"
	Name  string  `json:"name"`
	Year  *int    `json:"year"`  // papers only
	Month *int    `json:"month"` // papers only
	Day   *int    `json:"day"`   // papers only
	Attrs *string `json:"attrs"` // JSON object with type-specific extras
}

// Edge represents a row in the edges table
type Edge struct {
	SourceID string `json:"source_id"` // tail
	TargetID string `json:"target_id"` // head
	Type     string `json:"type"`      // "used_in_paper", "evaluated_on", "has_task", ...
}

// Run is one persisted sampling run
type Run struct {
	ID        string
	CreatedAt int64 // Unix millis
	Seed      *int64
	Requested int
	IndexSize int
	Samples   []SampleRow
}

// SampleRow is the manifest entry of one sample
type SampleRow struct {
	ID         string
	Label      string // "pos" or "neg"
	Position   int
	E1, E2     string
	Year       int
	Month      int
	CoocPapers []string
	NodeCount  int
	EdgeCount  int
}
