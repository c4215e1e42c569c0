// Package index persists extracted block structures for a workspace so the
// CLI can answer "what does this codebase look like" queries without
// re-parsing every file.
package index

import "time"

// FileRecord stores per-file annotation metadata.
type FileRecord struct {
	ID             string    `json:"id"`
	Path           string    `json:"path"`
	RelativePath   string    `json:"relative_path"`
	Language       string    `json:"language"`
	LineCount      int       `json:"line_count"`
	StructureCount int       `json:"structure_count"`
	ContentHash    string    `json:"content_hash"`
	AnnotatedAt    time.Time `json:"annotated_at"`
}

// StructureRecord is one persisted block structure.
type StructureRecord struct {
	ID           string `json:"id"`
	FileID       string `json:"file_id"`
	Kind         string `json:"kind"`
	Subkind      string `json:"subkind"`
	Name         string `json:"name"`
	StartLine    int    `json:"start_line"`
	StartColumn  int    `json:"start_column"`
	EndLine      int    `json:"end_line"`
	ChainEndLine int    `json:"chain_end_line"`
}

// StructureQuery filters persisted structures.
type StructureQuery struct {
	Kinds       []string
	NamePattern string
	FileIDs     []string
	Limit       int
	Offset      int
}

// Stats aggregates counts over the whole index.
type Stats struct {
	TotalFiles       int
	TotalStructures  int
	StructuresByKind map[string]int
	DatabaseSize     int64
}

// Store persists annotation records.
type Store interface {
	SaveFile(record *FileRecord) error
	GetFileByPath(path string) (*FileRecord, error)
	ListFiles() ([]*FileRecord, error)
	DeleteFile(fileID string) error
	SaveStructures(structures []*StructureRecord) error
	StructuresByFile(fileID string) ([]*StructureRecord, error)
	SearchStructures(query StructureQuery) ([]*StructureRecord, error)
	GetStats() (*Stats, error)
	Close() error
}
