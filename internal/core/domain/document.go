package domain

import "time"

// Document is the extracted plain text of an uploaded file.
// Text extraction happens before a document reaches the core.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID is the user that ingested the document.
	OwnerID string

	// Title is the human-readable title, usually the file name.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Summary is the cached LLM summary. Empty until summarised.
	Summary string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested or summarised.
	UpdatedAt time.Time
}

// Chunk is a bounded, contiguous piece of a document's text.
// A document's chunks are produced in one pass and replaced as a set.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Ordinal is the 0-based position of the chunk within its document.
	Ordinal int

	// DocumentID links to the parent Document.
	DocumentID string

	// OwnerID is the owner of the parent Document.
	OwnerID string
}

// IngestResult reports what an ingestion produced.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`

	// Indexed is true when the vector index was built during ingestion.
	Indexed bool `json:"indexed"`
}

// EntityGraph is the entity/relationship graph extracted from a document.
type EntityGraph struct {
	Nodes []EntityNode `json:"nodes"`
	Edges []EntityEdge `json:"edges"`
}

// EntityNode is a single entity in an EntityGraph.
type EntityNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// EntityEdge is a labelled relationship between two nodes.
type EntityEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}
