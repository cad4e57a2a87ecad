package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/chaser/internal/models"
)

// DefaultLimit caps Recent when no positive limit is given.
const DefaultLimit = 50

// Journal is the read/write surface consumers depend on.
type Journal interface {
	Record(ctx context.Context, rec models.RenameRecord) error
	Recent(ctx context.Context, limit int) ([]models.RenameRecord, error)
	Close() error
}

var _ Journal = (*DB)(nil)

// Record appends a rename to the journal.
func (db *DB) Record(ctx context.Context, rec models.RenameRecord) error {
	files := rec.Files
	if files == nil {
		files = []string{}
	}
	filesJSON, _ := json.Marshal(files)

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO renames (old_path, new_path, mappings, files, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.OldPath, rec.NewPath, rec.Mappings, string(filesJSON), createdAt)
	if err != nil {
		return fmt.Errorf("history: insert rename: %w", err)
	}
	return nil
}

// Recent returns up to limit renames, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]models.RenameRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, old_path, new_path, mappings, files, created_at
		FROM renames
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query renames: %w", err)
	}
	defer rows.Close()

	out := make([]models.RenameRecord, 0)
	for rows.Next() {
		var (
			rec       models.RenameRecord
			filesJSON string
		)
		if err := rows.Scan(&rec.ID, &rec.OldPath, &rec.NewPath, &rec.Mappings, &filesJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan rename: %w", err)
		}
		_ = json.Unmarshal([]byte(filesJSON), &rec.Files)
		if rec.Files == nil {
			rec.Files = []string{}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
