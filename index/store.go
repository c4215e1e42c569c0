package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists annotation records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		relative_path TEXT,
		language TEXT,
		line_count INTEGER,
		structure_count INTEGER,
		content_hash TEXT,
		annotated_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS structures (
		id TEXT PRIMARY KEY,
		file_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		subkind TEXT,
		name TEXT,
		start_line INTEGER,
		start_column INTEGER,
		end_line INTEGER,
		chain_end_line INTEGER,
		FOREIGN KEY(file_id) REFERENCES files(id) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveFile upserts file metadata.
func (s *SQLiteStore) SaveFile(record *FileRecord) error {
	if record == nil {
		return errors.New("file record required")
	}
	query := `
	INSERT INTO files (
		id, path, relative_path, language, line_count,
		structure_count, content_hash, annotated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		path=excluded.path,
		relative_path=excluded.relative_path,
		language=excluded.language,
		line_count=excluded.line_count,
		structure_count=excluded.structure_count,
		content_hash=excluded.content_hash,
		annotated_at=excluded.annotated_at
	`
	_, err := s.db.Exec(query,
		record.ID,
		record.Path,
		record.RelativePath,
		record.Language,
		record.LineCount,
		record.StructureCount,
		record.ContentHash,
		record.AnnotatedAt,
	)
	return err
}

// GetFileByPath looks up the record for an absolute path.
func (s *SQLiteStore) GetFileByPath(path string) (*FileRecord, error) {
	row := s.db.QueryRow(`SELECT id, path, relative_path, language, line_count,
		structure_count, content_hash, annotated_at FROM files WHERE path = ?`, path)
	return scanFile(row)
}

// ListFiles returns every indexed file.
func (s *SQLiteStore) ListFiles() ([]*FileRecord, error) {
	rows, err := s.db.Query(`SELECT id, path, relative_path, language, line_count,
		structure_count, content_hash, annotated_at FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]*FileRecord, 0)
	for rows.Next() {
		record := &FileRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.Path,
			&record.RelativePath,
			&record.Language,
			&record.LineCount,
			&record.StructureCount,
			&record.ContentHash,
			&record.AnnotatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteFile removes a file and, via cascade, its structures.
func (s *SQLiteStore) DeleteFile(fileID string) error {
	_, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, fileID)
	return err
}

// SaveStructures batch-inserts structures in one transaction.
func (s *SQLiteStore) SaveStructures(structures []*StructureRecord) error {
	if len(structures) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO structures (
		id, file_id, kind, subkind, name,
		start_line, start_column, end_line, chain_end_line
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, structure := range structures {
		if structure == nil {
			continue
		}
		if _, err := stmt.Exec(
			structure.ID,
			structure.FileID,
			structure.Kind,
			structure.Subkind,
			structure.Name,
			structure.StartLine,
			structure.StartColumn,
			structure.EndLine,
			structure.ChainEndLine,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// StructuresByFile fetches every structure of one file in document order.
func (s *SQLiteStore) StructuresByFile(fileID string) ([]*StructureRecord, error) {
	rows, err := s.db.Query(`SELECT id, file_id, kind, subkind, name,
		start_line, start_column, end_line, chain_end_line
		FROM structures WHERE file_id = ? ORDER BY start_line, start_column`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStructures(rows)
}

// SearchStructures filters structures by kind and name pattern.
func (s *SQLiteStore) SearchStructures(query StructureQuery) ([]*StructureRecord, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0)
	builder.WriteString(`SELECT id, file_id, kind, subkind, name,
		start_line, start_column, end_line, chain_end_line
		FROM structures WHERE 1=1`)
	if len(query.Kinds) > 0 {
		builder.WriteString(" AND kind IN (")
		builder.WriteString(placeholders(len(query.Kinds)))
		builder.WriteString(")")
		for _, kind := range query.Kinds {
			args = append(args, kind)
		}
	}
	if len(query.FileIDs) > 0 {
		builder.WriteString(" AND file_id IN (")
		builder.WriteString(placeholders(len(query.FileIDs)))
		builder.WriteString(")")
		for _, id := range query.FileIDs {
			args = append(args, id)
		}
	}
	if query.NamePattern != "" {
		builder.WriteString(" AND name LIKE ?")
		args = append(args, query.NamePattern)
	}
	builder.WriteString(" ORDER BY file_id, start_line")
	if query.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", query.Limit))
	}
	if query.Offset > 0 {
		builder.WriteString(fmt.Sprintf(" OFFSET %d", query.Offset))
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStructures(rows)
}

// GetStats aggregates counts.
func (s *SQLiteStore) GetStats() (*Stats, error) {
	stats := &Stats{StructuresByKind: make(map[string]int)}
	s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&stats.TotalFiles)
	s.db.QueryRow(`SELECT COUNT(*) FROM structures`).Scan(&stats.TotalStructures)
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM structures GROUP BY kind`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var kind string
			var count int
			rows.Scan(&kind, &count)
			stats.StructuresByKind[kind] = count
		}
	}
	var pageCount, pageSize int
	s.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount)
	s.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize)
	stats.DatabaseSize = int64(pageCount * pageSize)
	return stats, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ",")
}

func scanFile(row *sql.Row) (*FileRecord, error) {
	record := &FileRecord{}
	err := row.Scan(
		&record.ID,
		&record.Path,
		&record.RelativePath,
		&record.Language,
		&record.LineCount,
		&record.StructureCount,
		&record.ContentHash,
		&record.AnnotatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func scanStructures(rows *sql.Rows) ([]*StructureRecord, error) {
	records := make([]*StructureRecord, 0)
	for rows.Next() {
		record := &StructureRecord{}
		if err := rows.Scan(
			&record.ID,
			&record.FileID,
			&record.Kind,
			&record.Subkind,
			&record.Name,
			&record.StartLine,
			&record.StartColumn,
			&record.EndLine,
			&record.ChainEndLine,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
