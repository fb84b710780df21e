package domain

import (
	"sort"
	"time"
)

// HierarchySnapshot maps collection -> units discovered by a scan.
type HierarchySnapshot map[string][]Unit

// Collections returns the snapshot's collection names, sorted.
func (h HierarchySnapshot) Collections() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnitCount returns the total number of units in the snapshot.
func (h HierarchySnapshot) UnitCount() int {
	n := 0
	for _, units := range h {
		n += len(units)
	}
	return n
}

// LoadFailureRecord is a per-candidate failure kept in the run summary.
type LoadFailureRecord struct {
	SourcePath string `json:"source_path"`
	Error      string `json:"error"`
}

// IngestionRun is the persisted summary of one ingestion invocation.
type IngestionRun struct {
	ID                string              `json:"id"`
	Timestamp         time.Time           `json:"timestamp"`
	Force             bool                `json:"force"`
	UnitsProcessed    int                 `json:"units_processed"`
	UnitsSkipped      int                 `json:"units_skipped"`
	UnitsFailed       int                 `json:"units_failed"`
	TotalChunks       int                 `json:"total_chunks"`
	Failures          []LoadFailureRecord `json:"failures,omitempty"`
	HierarchySnapshot HierarchySnapshot   `json:"hierarchy_snapshot"`
}
