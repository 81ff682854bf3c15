package dto

import "time"

// DepartmentRequest payload for create and update.
type DepartmentRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// DepartmentResponse representation.
type DepartmentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateIssueTypeRequest payload.
type CreateIssueTypeRequest struct {
	Name         string `json:"name"`
	DepartmentID int64  `json:"department_id"`
}

// UpdateIssueTypeRequest payload.
type UpdateIssueTypeRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// IssueTypeResponse representation.
type IssueTypeResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DepartmentID int64     `json:"department_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
