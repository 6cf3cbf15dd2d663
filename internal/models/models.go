package models

// Segment is a chapter-labeled span of memoir text produced by the chunker.
// Immutable once created.
type Segment struct {
	Text        string `json:"text"`
	SourceLabel string `json:"source_label"`
}

// EmbeddingRecord pairs a segment with its embedding vector. One per segment,
// created at ingestion, read-only afterwards.
type EmbeddingRecord struct {
	ID      string
	Segment Segment
	Vector  []float32
}

// ScoredSegment is a single retrieval hit. Score is the similarity between
// the query embedding and the segment embedding.
type ScoredSegment struct {
	Segment Segment
	Score   float32
}

// QueryRequest is the body of POST /ask.
type QueryRequest struct {
	Question string `json:"question"`
}

// SpeakRequest is the body of POST /speak.
type SpeakRequest struct {
	Text string `json:"text"`
}

// Excerpt is a trimmed citation returned alongside the answer.
type Excerpt struct {
	Text    string `json:"text"`
	Chapter string `json:"chapter"`
}

// AnswerResponse is the body of a successful POST /ask.
type AnswerResponse struct {
	Summary  string    `json:"summary"`
	Excerpts []Excerpt `json:"excerpts"`
}
