package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

func newUser(phone, email string) *domain.User {
	return &domain.User{
		PhoneNumber:        phone,
		FullName:           "Test User",
		Email:              email,
		ResidentialAddress: "1 Test Road",
		Role:               domain.RoleUser,
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	set := NewSet()
	boom := errors.New("boom")

	err := set.Tx.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, set.Departments.Create(ctx, &domain.Department{Name: "Sanitation", IsActive: true}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	depts, err := set.Departments.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, depts)

	// the sequence is restored as well
	dept := &domain.Department{Name: "Roads", IsActive: true}
	require.NoError(t, set.Departments.Create(ctx, dept))
	assert.Equal(t, int64(1), dept.ID)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	assert.Panics(t, func() {
		_ = set.Tx.WithinTx(ctx, func(ctx context.Context) error {
			_ = set.Departments.Create(ctx, &domain.Department{Name: "Sanitation", IsActive: true})
			panic("unexpected")
		})
	})

	_, err := set.Departments.GetByName(ctx, "Sanitation")
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestNestedWithinTxJoinsOuter(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	err := set.Tx.WithinTx(ctx, func(ctx context.Context) error {
		return set.Tx.WithinTx(ctx, func(ctx context.Context) error {
			return set.Departments.Create(ctx, &domain.Department{Name: "Sanitation", IsActive: true})
		})
	})
	require.NoError(t, err)

	_, err = set.Departments.GetByName(ctx, "Sanitation")
	require.NoError(t, err)
}

func TestUniqueConstraintsReportSQLState(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	require.NoError(t, set.Users.Create(ctx, newUser("+919876543210", "a@example.com")))
	err := set.Users.Create(ctx, newUser("+919876543210", "b@example.com"))

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
	assert.Equal(t, "uq_users_phone_number", pgErr.ConstraintName)
}

func TestForeignKeysReportSQLState(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	err := set.Complaints.Create(ctx, &domain.Complaint{UserID: 1, IssueTypeID: 1})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23503", pgErr.Code)
}

func TestListOrdersByCreationAndPaginates(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	for _, phone := range []string{"+910000000001", "+910000000002", "+910000000003"} {
		require.NoError(t, set.Users.Create(ctx, newUser(phone, phone+"@example.com")))
	}

	page, err := set.Users.List(ctx, repository.UserFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)

	empty, err := set.Users.List(ctx, repository.UserFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmailUniquenessIgnoresCase(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	require.NoError(t, set.Users.Create(ctx, newUser("+919876543210", "john@example.com")))
	err := set.Users.Create(ctx, newUser("+919876543211", "John@Example.com"))

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "uq_users_email", pgErr.ConstraintName)

	found, err := set.Users.GetByEmail(ctx, "JOHN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", found.Email)
}

func TestComplaintAssigneeMustExist(t *testing.T) {
	ctx := context.Background()
	set := NewSet()

	require.NoError(t, set.Users.Create(ctx, newUser("+919876543210", "john@example.com")))
	dept := &domain.Department{Name: "Sanitation", IsActive: true}
	require.NoError(t, set.Departments.Create(ctx, dept))
	it := &domain.IssueType{Name: "Garbage Collection", DepartmentID: dept.ID, IsActive: true}
	require.NoError(t, set.IssueTypes.Create(ctx, it))

	complaint := &domain.Complaint{UserID: 1, IssueTypeID: it.ID, Department: &dept.Name}
	require.NoError(t, set.Complaints.Create(ctx, complaint))

	missing := int64(9)
	complaint.AssignedTo = &missing
	err := set.Complaints.Update(ctx, complaint)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "fk_complaints_assigned_to", pgErr.ConstraintName)

	owner := int64(1)
	complaint.AssignedTo = &owner
	require.NoError(t, set.Complaints.Update(ctx, complaint))
	stored, err := set.Complaints.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedTo)
	assert.Equal(t, owner, *stored.AssignedTo)
	assert.Equal(t, "Sanitation", *stored.Department)
}
