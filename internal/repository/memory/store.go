// Package memory keeps every repository in process memory. It mirrors the
// uniqueness and foreign key constraints of the Postgres schema and reports
// violations with the same SQLSTATE codes.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

type tables struct {
	users       map[int64]domain.User
	departments map[int64]domain.Department
	issueTypes  map[int64]domain.IssueType
	complaints  map[int64]domain.Complaint
	history     map[int64]domain.ComplaintStatusHistory
	seq         map[string]int64
}

func (t tables) clone() tables {
	return tables{
		users:       maps.Clone(t.users),
		departments: maps.Clone(t.departments),
		issueTypes:  maps.Clone(t.issueTypes),
		complaints:  maps.Clone(t.complaints),
		history:     maps.Clone(t.history),
		seq:         maps.Clone(t.seq),
	}
}

// Store owns all tables behind one mutex.
type Store struct {
	mu   sync.Mutex
	data tables
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		data: tables{
			users:       map[int64]domain.User{},
			departments: map[int64]domain.Department{},
			issueTypes:  map[int64]domain.IssueType{},
			complaints:  map[int64]domain.Complaint{},
			history:     map[int64]domain.ComplaintStatusHistory{},
			seq:         map[string]int64{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// NewSet returns repositories sharing a fresh store.
func NewSet() repository.Set {
	return NewStore().Set()
}

// Set exposes the store through the repository interfaces.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Tx:          s,
		Users:       &userRepository{store: s},
		Departments: &departmentRepository{store: s},
		IssueTypes:  &issueTypeRepository{store: s},
		Complaints:  &complaintRepository{store: s},
		History:     &historyRepository{store: s},
	}
}

type txMarker struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txMarker{}).(*Store)
	return owner == s
}

// WithinTx serializes units of work and restores the previous state when fn fails or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	committed := false
	defer func() {
		if !committed {
			s.data = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txMarker{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

// run executes fn under the store lock unless ctx already holds it.
func (s *Store) run(ctx context.Context, fn func(t *tables) error) error {
	if s.inTx(ctx) {
		return fn(&s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (t *tables) next(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

func uniqueViolation(table, constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"" + constraint + "\"",
		TableName:      table,
		ConstraintName: constraint,
	}
}

func foreignKeyViolation(table, constraint string) error {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23503",
		Message:        "insert or update on table \"" + table + "\" violates foreign key constraint \"" + constraint + "\"",
		TableName:      table,
		ConstraintName: constraint,
	}
}
