package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Store is a SQLite database that serves the vector index and the run log.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.studyrag/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".studyrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorIndex returns a VectorIndex backed by this store.
func (s *Store) VectorIndex() *VectorIndex {
	return &VectorIndex{store: s}
}

// RunLogStore returns a RunLogStore backed by this store.
func (s *Store) RunLogStore() driven.RunLogStore {
	return &runLogStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_chunks.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// VectorIndex implements driven.VectorIndex on the chunks table.
type VectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*VectorIndex)(nil)

// Upsert replaces every chunk of each source path present in chunks.
// The whole batch is one transaction: a failure leaves the index unchanged.
func (v *VectorIndex) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	replaced := make(map[string]bool)
	for _, c := range chunks {
		if replaced[c.Unit.SourcePath] {
			continue
		}
		replaced[c.Unit.SourcePath] = true
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE source_path = ?", c.Unit.SourcePath); err != nil {
			return fmt.Errorf("clearing %s: %w", c.Unit.SourcePath, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_path, collection, subcollection, unit_id, title, tenant,
			page, position, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			page = excluded.page,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		u := c.Unit
		if _, err := stmt.ExecContext(ctx, c.ID, u.SourcePath, u.Collection, u.Subcollection, u.UnitID,
			u.Title, u.Tenant, c.Page, c.Position, c.Text, float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns the k chunks most similar to vector among those matching filter.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.RetrievalHit, error) {
	where, args, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT source_path, collection, subcollection, unit_id, title, tenant, page, content, embedding
		FROM chunks WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	ranker := similarity.NewRanker(k)
	for rows.Next() {
		var (
			hit  domain.RetrievalHit
			blob []byte
		)
		u := &hit.Unit
		if err := rows.Scan(&u.SourcePath, &u.Collection, &u.Subcollection, &u.UnitID, &u.Title, &u.Tenant,
			&hit.Page, &hit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		hit.Score = similarity.Cosine(vector, bytesToFloat32Slice(blob))
		ranker.Offer(hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return ranker.Hits(), nil
}

// Scan returns one unit per indexed source path matching filter, ordered by source path.
func (v *VectorIndex) Scan(ctx context.Context, filter domain.Filter) ([]domain.Unit, error) {
	where, args, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT DISTINCT source_path, collection, subcollection, unit_id, title, tenant
		FROM chunks WHERE `+where+` ORDER BY source_path`, args...)
	if err != nil {
		return nil, fmt.Errorf("scanning units: %w", err)
	}
	defer rows.Close()

	var units []domain.Unit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var u domain.Unit
		if err := rows.Scan(&u.SourcePath, &u.Collection, &u.Subcollection, &u.UnitID, &u.Title, &u.Tenant); err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating units: %w", err)
	}
	return units, nil
}

// SourcePaths returns up to limit indexed source paths matching filter. Zero means no limit.
func (v *VectorIndex) SourcePaths(ctx context.Context, filter domain.Filter, limit int) (map[string]struct{}, error) {
	where, args, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT DISTINCT source_path FROM chunks WHERE " + where + " ORDER BY source_path"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying source paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning source path: %w", err)
		}
		paths[p] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source paths: %w", err)
	}
	return paths, nil
}

// ChunkCount returns the number of stored chunks.
func (v *VectorIndex) ChunkCount(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the connection.
func (v *VectorIndex) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// filterColumns maps filter fields to chunk columns.
var filterColumns = map[domain.Field]string{
	domain.FieldCollection:    "collection",
	domain.FieldSubcollection: "subcollection",
	domain.FieldUnit:          "unit_id",
	domain.FieldTenant:        "tenant",
}

// compileFilter renders f as a WHERE clause with positional arguments.
// A nil filter matches every row.
func compileFilter(f domain.Filter) (string, []any, error) {
	if f == nil {
		return "1 = 1", nil, nil
	}
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	return compileTerm(f)
}

func compileTerm(f domain.Filter) (string, []any, error) {
	switch t := f.(type) {
	case domain.Eq:
		return filterColumns[t.Field] + " = ?", []any{t.Value}, nil
	case domain.In:
		args := make([]any, len(t.Values))
		for i, v := range t.Values {
			args[i] = v
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Values)), ", ")
		return filterColumns[t.Field] + " IN (" + placeholders + ")", args, nil
	case domain.And:
		parts := make([]string, 0, len(t.Terms))
		var args []any
		for _, term := range t.Terms {
			clause, termArgs, err := compileTerm(term)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, "("+clause+")")
			args = append(args, termArgs...)
		}
		return strings.Join(parts, " AND "), args, nil
	default:
		return "", nil, fmt.Errorf("%w: filter %T", domain.ErrUnsupportedType, f)
	}
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
