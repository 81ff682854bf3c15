package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Set groups every repository together with the transactor that coordinates them.
type Set struct {
	Tx          Transactor
	Users       UserRepository
	Departments DepartmentRepository
	IssueTypes  IssueTypeRepository
	Complaints  ComplaintRepository
	History     ComplaintHistoryRepository
}

// NewPostgresSet wires all Postgres repositories over one pool.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Tx:          NewTransactor(pool),
		Users:       NewUserRepository(pool),
		Departments: NewDepartmentRepository(pool),
		IssueTypes:  NewIssueTypeRepository(pool),
		Complaints:  NewComplaintRepository(pool),
		History:     NewComplaintHistoryRepository(pool),
	}
}
