package domain

import "time"

// Department is the organizational unit complaints are routed to.
type Department struct {
	ID        int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// IssueType is a complaint category owned by exactly one department.
type IssueType struct {
	ID           int64
	Name         string
	DepartmentID int64
	IsActive     bool
	CreatedAt    time.Time
}
