package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// ComplaintRepository persists complaints.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	Count(ctx context.Context, filter ComplaintFilter) (int, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository builds the repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, user_id, issue_type_id, description, address, status, urgency,
        department, assigned_to, assigned_at, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, issue_type_id, description, address, status, urgency,
            department, assigned_to, assigned_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		complaint.UserID,
		complaint.IssueTypeID,
		complaint.Description,
		complaint.Address,
		complaint.Status,
		complaint.Urgency,
		complaint.Department,
		complaint.AssignedTo,
		complaint.AssignedAt,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, urgency=$2, assigned_to=$3, assigned_at=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		complaint.Status,
		complaint.Urgency,
		complaint.AssignedTo,
		complaint.AssignedAt,
		complaint.ID,
	).Scan(&complaint.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	query := fmt.Sprintf("SELECT %s FROM complaints WHERE id=$1", complaintColumns)
	return scanComplaint(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	where, args := complaintWhere(filter)
	limit, offset := Page(filter.Limit, filter.Offset)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s
        ORDER BY created_at ASC, id ASC
        LIMIT $%d OFFSET $%d`, complaintColumns, where, len(args)-1, len(args))

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func (r *complaintRepository) Count(ctx context.Context, filter ComplaintFilter) (int, error) {
	where, args := complaintWhere(filter)
	var total int
	err := conn(ctx, r.pool).QueryRow(ctx, "SELECT COUNT(*) FROM complaints WHERE "+where, args...).Scan(&total)
	return total, err
}

func complaintWhere(filter ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.IssueTypeID != nil {
		args = append(args, *filter.IssueTypeID)
		clauses = append(clauses, fmt.Sprintf("issue_type_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	return strings.Join(clauses, " AND "), args
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.IssueTypeID,
		&c.Description,
		&c.Address,
		&c.Status,
		&c.Urgency,
		&c.Department,
		&c.AssignedTo,
		&c.AssignedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
