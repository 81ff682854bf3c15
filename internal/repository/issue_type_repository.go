package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// IssueTypeRepository manages issue type persistence.
type IssueTypeRepository interface {
	Create(ctx context.Context, issueType *domain.IssueType) error
	Update(ctx context.Context, issueType *domain.IssueType) error
	GetByID(ctx context.Context, id int64) (*domain.IssueType, error)
	GetByName(ctx context.Context, departmentID int64, name string) (*domain.IssueType, error)
	List(ctx context.Context, filter IssueTypeFilter) ([]domain.IssueType, error)
}

type issueTypeRepository struct {
	pool *pgxpool.Pool
}

// NewIssueTypeRepository builds the repository.
func NewIssueTypeRepository(pool *pgxpool.Pool) IssueTypeRepository {
	return &issueTypeRepository{pool: pool}
}

func (r *issueTypeRepository) Create(ctx context.Context, issueType *domain.IssueType) error {
	const query = `
        INSERT INTO issue_types (name, department_id, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		issueType.Name,
		issueType.DepartmentID,
		issueType.IsActive,
	).Scan(&issueType.ID, &issueType.CreatedAt)
}

func (r *issueTypeRepository) Update(ctx context.Context, issueType *domain.IssueType) error {
	const query = `
        UPDATE issue_types SET name=$1, is_active=$2
        WHERE id=$3`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query, issueType.Name, issueType.IsActive, issueType.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueTypeRepository) GetByID(ctx context.Context, id int64) (*domain.IssueType, error) {
	const query = `
        SELECT id, name, department_id, is_active, created_at
        FROM issue_types WHERE id=$1`
	return scanIssueType(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *issueTypeRepository) GetByName(ctx context.Context, departmentID int64, name string) (*domain.IssueType, error) {
	const query = `
        SELECT id, name, department_id, is_active, created_at
        FROM issue_types WHERE department_id=$1 AND name=$2`
	return scanIssueType(conn(ctx, r.pool).QueryRow(ctx, query, departmentID, name))
}

func (r *issueTypeRepository) List(ctx context.Context, filter IssueTypeFilter) ([]domain.IssueType, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if !filter.IncludeInactive {
		clauses = append(clauses, "is_active = TRUE")
	}

	query := fmt.Sprintf(`SELECT id, name, department_id, is_active, created_at
        FROM issue_types WHERE %s
        ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.IssueType{}
	for rows.Next() {
		it, err := scanIssueType(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	return result, rows.Err()
}

func scanIssueType(row pgx.Row) (*domain.IssueType, error) {
	var it domain.IssueType
	if err := row.Scan(&it.ID, &it.Name, &it.DepartmentID, &it.IsActive, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}
