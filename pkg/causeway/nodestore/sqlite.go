package nodestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists nodes to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite node store.
// The path should be a file path (e.g., "./nodes.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			owner TEXT NOT NULL,
			content_digest TEXT NOT NULL,
			parent TEXT,
			fields BLOB NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_nodes_type
		ON nodes(type)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CreateNode implements Store.
func (s *SQLiteStore) CreateNode(ctx context.Context, node *Node) error {
	if node == nil || node.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	fields, err := json.Marshal(node.Fields)
	if err != nil {
		return fmt.Errorf("encode node fields: %w", err)
	}

	createdAt := node.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	// Re-creating a node keeps its original created_at
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (id, type, owner, content_digest, parent, fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			owner = excluded.owner,
			content_digest = excluded.content_digest,
			parent = excluded.parent,
			fields = excluded.fields
	`, node.ID, node.Type, node.Owner, node.ContentDigest, node.Parent,
		fields, createdAt.Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	return nil
}

// DeleteNode implements Store.
func (s *SQLiteStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	return nil
}

// GetNode implements Store.
func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, owner, content_digest, parent, fields, created_at
		FROM nodes WHERE id = ?
	`, id)

	node, err := scanNode(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

// NodesByType implements Store.
func (s *SQLiteStore) NodesByType(ctx context.Context, nodeType string) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, owner, content_digest, parent, fields, created_at
		FROM nodes
		WHERE type = ?
		ORDER BY created_at, id
	`, nodeType)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		node, err := scanNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	return nodes, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// scanNode reads one node row via the given scan function.
func scanNode(scan func(dest ...any) error) (*Node, error) {
	var node Node
	var parent sql.NullString
	var fields []byte
	var createdAt string

	if err := scan(&node.ID, &node.Type, &node.Owner, &node.ContentDigest,
		&parent, &fields, &createdAt); err != nil {
		return nil, err
	}

	node.Parent = parent.String
	if err := json.Unmarshal(fields, &node.Fields); err != nil {
		return nil, fmt.Errorf("decode node fields: %w", err)
	}
	node.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &node, nil
}
