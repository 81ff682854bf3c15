package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// ComplaintHistoryRepository stores complaint status transitions.
type ComplaintHistoryRepository interface {
	Create(ctx context.Context, entry *domain.ComplaintStatusHistory) error
	ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintStatusHistory, error)
}

type complaintHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintHistoryRepository builds the repository.
func NewComplaintHistoryRepository(pool *pgxpool.Pool) ComplaintHistoryRepository {
	return &complaintHistoryRepository{pool: pool}
}

func (r *complaintHistoryRepository) Create(ctx context.Context, entry *domain.ComplaintStatusHistory) error {
	const query = `
        INSERT INTO complaint_status_history (complaint_id, old_status, new_status, changed_by, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, changed_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		entry.ComplaintID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedBy,
		entry.Comment,
	).Scan(&entry.ID, &entry.ChangedAt)
}

func (r *complaintHistoryRepository) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintStatusHistory, error) {
	const query = `
        SELECT id, complaint_id, old_status, new_status, changed_by, comment, changed_at
        FROM complaint_status_history WHERE complaint_id=$1
        ORDER BY changed_at ASC, id ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ComplaintStatusHistory{}
	for rows.Next() {
		var entry domain.ComplaintStatusHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.ChangedBy,
			&entry.Comment,
			&entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
