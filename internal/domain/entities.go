package domain

// Document is one input row. ID is dense and zero-based over the input, in input order.
type Document struct {
	ID    int
	Title string
	Text  string
}

// Chunk is a window of consecutive sentences from a single document.
type Chunk struct {
	DocumentID int    `json:"document_id"`
	Title      string `json:"title"`
	Text       string `json:"chunk_text"`
}

// ChunkVector pairs a chunk with its embedding.
type ChunkVector struct {
	Chunk  Chunk
	Vector []float32
}

// SearchHit is one ranked query result.
type SearchHit struct {
	Rank       int     `json:"rank"`
	Distance   float32 `json:"distance"`
	DocumentID int     `json:"document_id"`
	Title      string  `json:"title"`
	Text       string  `json:"chunk_text"`
}
