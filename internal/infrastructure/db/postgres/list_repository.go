package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/listshare/todo-share/internal/core/domain"
)

type ListRepository struct {
	db DBTX
}

func NewListRepository(db DBTX) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Put(ctx context.Context, l *domain.SharedList) error {
	data, err := json.Marshal(l.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	query :=
		`INSERT INTO shared_lists (id, payload, owner_id, created_at)
		 VALUES ($1, $2, $3, $4)`

	owner := sql.NullString{String: l.OwnerID, Valid: l.OwnerID != ""}
	if _, err := r.db.ExecContext(ctx, query, l.ID, string(data), owner, l.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrListExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *ListRepository) Get(ctx context.Context, id string) (*domain.SharedList, error) {
	query :=
		`SELECT payload, owner_id, created_at FROM shared_lists
		 WHERE id = $1`

	var (
		data  string
		owner sql.NullString
		l     = &domain.SharedList{ID: id}
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&data, &owner, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if l.Payload, err = decodePayload(data); err != nil {
		return nil, err
	}
	l.OwnerID = owner.String
	return l, nil
}

// ListRecentByOwner orders by the BIGSERIAL seq column, i.e. insertion order.
func (r *ListRepository) ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]domain.ListSummary, error) {
	if ownerID == "" || limit <= 0 {
		return []domain.ListSummary{}, nil
	}

	query :=
		`SELECT id, payload FROM shared_lists
		 WHERE owner_id = $1
		 ORDER BY seq DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ListSummary, 0, limit)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		payload, err := decodePayload(data)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ListSummary{ID: id, Name: payload.Name()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *ListRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	query := `DELETE FROM shared_lists WHERE id = $1 AND owner_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func decodePayload(data string) (domain.Payload, error) {
	var payload domain.Payload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
