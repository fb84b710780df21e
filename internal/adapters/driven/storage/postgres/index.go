// Package postgres provides a PostgreSQL vector index using the pgvector extension.
//
// Chunks and their unit metadata live in one table. Metadata filters compile
// to a WHERE clause evaluated before the cosine ordering, so a scoped query
// ranks only in-scope rows.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex on PostgreSQL + pgvector.
type VectorIndex struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewVectorIndex connects to dsn and ensures the schema exists for vectors of dimension.
func NewVectorIndex(ctx context.Context, dsn string, dimension int) (*VectorIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", domain.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	v := &VectorIndex{pool: pool, dimension: dimension}
	if err := v.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return v, nil
}

func (v *VectorIndex) ensureSchema(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS studyrag_chunks (
			id TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			collection TEXT NOT NULL,
			subcollection TEXT NOT NULL,
			unit_id TEXT NOT NULL,
			title TEXT NOT NULL,
			tenant TEXT NOT NULL DEFAULT '',
			page INT NOT NULL DEFAULT 0,
			position INT NOT NULL,
			content TEXT NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, v.dimension),
		"CREATE INDEX IF NOT EXISTS idx_studyrag_chunks_source ON studyrag_chunks(source_path)",
		"CREATE INDEX IF NOT EXISTS idx_studyrag_chunks_scope ON studyrag_chunks(collection, subcollection, unit_id)",
		"CREATE INDEX IF NOT EXISTS idx_studyrag_chunks_tenant ON studyrag_chunks(tenant)",
	}

	for _, stmt := range stmts {
		if _, err := v.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %w", err)
		}
	}
	return nil
}

// Upsert replaces every chunk of each source path present in chunks, in one transaction.
func (v *VectorIndex) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := v.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	replaced := make(map[string]bool)
	for _, c := range chunks {
		if replaced[c.Unit.SourcePath] {
			continue
		}
		replaced[c.Unit.SourcePath] = true
		if _, err := tx.Exec(ctx, "DELETE FROM studyrag_chunks WHERE source_path = $1", c.Unit.SourcePath); err != nil {
			return fmt.Errorf("clear %s: %w", c.Unit.SourcePath, err)
		}
	}

	for _, c := range chunks {
		if len(c.Embedding) != v.dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index expects %d",
				domain.ErrInvalidInput, c.ID, len(c.Embedding), v.dimension)
		}
		u := c.Unit
		if _, err := tx.Exec(ctx, `
			INSERT INTO studyrag_chunks (id, source_path, collection, subcollection, unit_id, title, tenant,
				page, position, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				page = EXCLUDED.page,
				embedding = EXCLUDED.embedding
		`, c.ID, u.SourcePath, u.Collection, u.Subcollection, u.UnitID, u.Title, u.Tenant,
			c.Page, c.Position, c.Text, pgvector.NewVector(c.Embedding)); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Query returns the k chunks nearest to vector by cosine distance among those matching filter.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.RetrievalHit, error) {
	if k <= 0 {
		return nil, nil
	}

	// $1 is the query vector; filter arguments start at $2.
	where, args, err := compileFilter(filter, 2)
	if err != nil {
		return nil, err
	}
	args = append([]any{pgvector.NewVector(vector)}, args...)
	args = append(args, k)

	rows, err := v.pool.Query(ctx, fmt.Sprintf(`
		SELECT source_path, collection, subcollection, unit_id, title, tenant, page, content,
			(embedding <=> $1::vector) AS distance
		FROM studyrag_chunks
		WHERE %s
		ORDER BY embedding <=> $1::vector
		LIMIT $%d
	`, where, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.RetrievalHit, 0, k)
	for rows.Next() {
		var (
			hit      domain.RetrievalHit
			distance float64
		)
		u := &hit.Unit
		if err := rows.Scan(&u.SourcePath, &u.Collection, &u.Subcollection, &u.UnitID, &u.Title, &u.Tenant,
			&hit.Page, &hit.Text, &distance); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		hit.Score = 1 - distance
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar chunks: %w", err)
	}
	return hits, nil
}

// Scan returns one unit per indexed source path matching filter, ordered by source path.
func (v *VectorIndex) Scan(ctx context.Context, filter domain.Filter) ([]domain.Unit, error) {
	where, args, err := compileFilter(filter, 1)
	if err != nil {
		return nil, err
	}

	rows, err := v.pool.Query(ctx, `
		SELECT DISTINCT source_path, collection, subcollection, unit_id, title, tenant
		FROM studyrag_chunks WHERE `+where+` ORDER BY source_path`, args...)
	if err != nil {
		return nil, fmt.Errorf("scan units: %w", err)
	}
	defer rows.Close()

	var units []domain.Unit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var u domain.Unit
		if err := rows.Scan(&u.SourcePath, &u.Collection, &u.Subcollection, &u.UnitID, &u.Title, &u.Tenant); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// SourcePaths returns up to limit indexed source paths matching filter. Zero means no limit.
func (v *VectorIndex) SourcePaths(ctx context.Context, filter domain.Filter, limit int) (map[string]struct{}, error) {
	where, args, err := compileFilter(filter, 1)
	if err != nil {
		return nil, err
	}

	query := "SELECT DISTINCT source_path FROM studyrag_chunks WHERE " + where + " ORDER BY source_path"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := v.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query source paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan source path: %w", err)
		}
		paths[p] = struct{}{}
	}
	return paths, rows.Err()
}

// Close releases the connection pool.
func (v *VectorIndex) Close() error {
	v.pool.Close()
	return nil
}

// filterColumns maps filter fields to chunk columns.
var filterColumns = map[domain.Field]string{
	domain.FieldCollection:    "collection",
	domain.FieldSubcollection: "subcollection",
	domain.FieldUnit:          "unit_id",
	domain.FieldTenant:        "tenant",
}

// compileFilter renders f as a WHERE clause whose placeholders start at $first.
func compileFilter(f domain.Filter, first int) (string, []any, error) {
	if f == nil {
		return "TRUE", nil, nil
	}
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	c := &compiler{next: first}
	clause, err := c.term(f)
	if err != nil {
		return "", nil, err
	}
	return clause, c.args, nil
}

type compiler struct {
	next int
	args []any
}

func (c *compiler) placeholder(value any) string {
	c.args = append(c.args, value)
	p := fmt.Sprintf("$%d", c.next)
	c.next++
	return p
}

func (c *compiler) term(f domain.Filter) (string, error) {
	switch t := f.(type) {
	case domain.Eq:
		return filterColumns[t.Field] + " = " + c.placeholder(t.Value), nil
	case domain.In:
		values := make([]string, len(t.Values))
		copy(values, t.Values)
		return filterColumns[t.Field] + " = ANY(" + c.placeholder(values) + ")", nil
	case domain.And:
		parts := make([]string, 0, len(t.Terms))
		for _, term := range t.Terms {
			clause, err := c.term(term)
			if err != nil {
				return "", err
			}
			parts = append(parts, "("+clause+")")
		}
		return strings.Join(parts, " AND "), nil
	default:
		return "", fmt.Errorf("%w: filter %T", domain.ErrUnsupportedType, f)
	}
}
