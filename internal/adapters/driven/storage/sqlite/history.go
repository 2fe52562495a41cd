package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// ==================== History Store ====================

// historyStore implements driven.HistoryStore. Turns are keyed by
// (owner_id, seq); seq is dense from zero for each owner.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Append adds turns to the end of the owner's history atomically.
func (s *historyStore) Append(ctx context.Context, ownerID string, turns []domain.Turn) error {
	unlock := s.store.owners.Lock(ownerID)
	defer unlock()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var next int
	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq) + 1, 0) FROM history WHERE owner_id = ?", ownerID)
	if err := row.Scan(&next); err != nil {
		return fmt.Errorf("reading history length: %w", err)
	}

	if err := insertTurns(ctx, tx, ownerID, next, turns); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Replace discards the owner's history and stores turns in its place.
func (s *historyStore) Replace(ctx context.Context, ownerID string, turns []domain.Turn) error {
	unlock := s.store.owners.Lock(ownerID)
	defer unlock()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM history WHERE owner_id = ?", ownerID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	if err := insertTurns(ctx, tx, ownerID, 0, turns); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Read returns the owner's history in order.
func (s *historyStore) Read(ctx context.Context, ownerID string) ([]domain.Turn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT role, type, content, model, document_id, created_at
		FROM history WHERE owner_id = ?
		ORDER BY seq
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	turns := make([]domain.Turn, 0)
	for rows.Next() {
		var (
			turn      domain.Turn
			role, typ string
			createdAt sql.NullTime
		)
		if err := rows.Scan(&role, &typ, &turn.Content, &turn.Model,
			&turn.DocumentID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turn.Role = domain.Role(role)
		turn.Type = domain.Role(typ)
		if createdAt.Valid {
			turn.CreatedAt = createdAt.Time
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return turns, nil
}

func insertTurns(ctx context.Context, tx *sql.Tx, ownerID string, start int, turns []domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO history (owner_id, seq, role, type, content, model, document_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, turn := range turns {
		var createdAt any
		if !turn.CreatedAt.IsZero() {
			createdAt = turn.CreatedAt.UTC()
		}
		if _, err := stmt.ExecContext(ctx, ownerID, start+i, string(turn.Role), string(turn.Type),
			turn.Content, turn.Model, turn.DocumentID, createdAt); err != nil {
			return fmt.Errorf("saving turn: %w", err)
		}
	}
	return nil
}

// ==================== Share Store ====================

// shareStore implements driven.ShareStore.
type shareStore struct {
	store *Store
}

var _ driven.ShareStore = (*shareStore)(nil)

// SaveShare stores a shared answer.
func (s *shareStore) SaveShare(ctx context.Context, share domain.SharedAnswer) error {
	if share.CreatedAt.IsZero() {
		share.CreatedAt = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO shares (token, owner_id, answer, model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			owner_id = excluded.owner_id,
			answer = excluded.answer,
			model = excluded.model
	`, share.Token, share.OwnerID, share.Answer, share.Model, share.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving share: %w", err)
	}
	return nil
}

// GetShare retrieves a shared answer by token.
func (s *shareStore) GetShare(ctx context.Context, token string) (*domain.SharedAnswer, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT token, owner_id, answer, model, created_at
		FROM shares WHERE token = ?
	`, token)

	var share domain.SharedAnswer
	if err := row.Scan(&share.Token, &share.OwnerID, &share.Answer, &share.Model, &share.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning share: %w", err)
	}
	return &share, nil
}
