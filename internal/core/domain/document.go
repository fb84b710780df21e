package domain

import "strings"

// Unit is one physical source document placed in the three-level hierarchy.
// It is created during the ingestion scan and never mutated afterwards.
type Unit struct {
	// Collection is the top-level grouping (e.g. an academic term).
	Collection string `json:"collection"`

	// Subcollection is the second level within a collection (e.g. a subject).
	Subcollection string `json:"subcollection"`

	// UnitID identifies the unit directory inside the sub-collection.
	UnitID string `json:"unit_id"`

	// Title is the human-readable title, derived from the file name.
	Title string `json:"title"`

	// SourcePath is the stable identifier relative to the content root.
	SourcePath string `json:"source_path"`

	// Tenant is the owning user when the index is shared between users.
	Tenant string `json:"tenant,omitempty"`
}

// Path returns the collection/sub-collection path used in citations.
func (u Unit) Path() string {
	return u.Collection + "/" + u.Subcollection
}

// Field returns the value of a filterable field.
func (u Unit) Field(f Field) string {
	switch f {
	case FieldCollection:
		return u.Collection
	case FieldSubcollection:
		return u.Subcollection
	case FieldUnit:
		return u.UnitID
	case FieldTenant:
		return u.Tenant
	default:
		return ""
	}
}

// Page is the text extracted from one page (or the whole body) of a unit.
type Page struct {
	// Number is the 1-based page number. Zero means the format has no pages.
	Number int

	// Text is the extracted text.
	Text string
}

// Chunk is a contiguous slice of a unit's text, the atomic retrieval granule.
// Every chunk carries a copy of the owning unit's identifying attributes.
type Chunk struct {
	// ID is deterministic for a given source path and position.
	ID string

	// Unit is the owning unit.
	Unit Unit

	// Page is the originating page number.
	Page int

	// Position is the ordinal position within the unit.
	Position int

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// RetrievalHit is a single ranked result returned by a vector index query.
type RetrievalHit struct {
	// Unit is the metadata of the unit the chunk belongs to.
	Unit Unit

	// Page is the originating page number.
	Page int

	// Text is the chunk content.
	Text string

	// Score is the cosine similarity to the query vector.
	Score float64
}

// UnitDescriptor is the catalog view of a unit.
type UnitDescriptor struct {
	UnitID        string `json:"unit_id"`
	Title         string `json:"title"`
	Collection    string `json:"collection"`
	Subcollection string `json:"subcollection"`
}

// SourceItem is a document discovered by a content source scan.
type SourceItem struct {
	// Collection, Subcollection and UnitID locate the item in the hierarchy.
	Collection    string
	Subcollection string
	UnitID        string

	// Name is the file name including extension.
	Name string

	// SourcePath is relative to the content root and uses forward slashes.
	SourcePath string

	// Size is the content length in bytes.
	Size int64
}

// Title returns the file stem used as the unit title.
func (i SourceItem) Title() string {
	name := i.Name
	if dot := strings.LastIndex(name, "."); dot > 0 {
		name = name[:dot]
	}
	return name
}

// Extension returns the lower-case file extension including the dot.
func (i SourceItem) Extension() string {
	dot := strings.LastIndex(i.Name, ".")
	if dot < 0 {
		return ""
	}
	return strings.ToLower(i.Name[dot:])
}

// SourceInfo describes an existence/size check against a content source.
type SourceInfo struct {
	Exists bool
	Size   int64
}

// RetrievalStatus distinguishes an empty result from a failed retrieval.
type RetrievalStatus string

// Retrieval outcomes.
const (
	RetrievalFound  RetrievalStatus = "found"
	RetrievalEmpty  RetrievalStatus = "empty"
	RetrievalFailed RetrievalStatus = "failed"
)

// RetrievalResult is the formatted outcome of one retrieval tool call.
type RetrievalResult struct {
	// Status is found, empty or failed.
	Status RetrievalStatus

	// Text is the formatted block handed to the completion service.
	Text string

	// Hits are the ranked results behind Text.
	Hits []RetrievalHit

	// Err is set when Status is failed and wraps ErrRetrievalFailure.
	Err error
}
