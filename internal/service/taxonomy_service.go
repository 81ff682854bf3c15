package service

import (
	"context"
	"strings"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/validation"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// TaxonomyService manages departments and the issue types they own.
type TaxonomyService struct {
	deps Dependencies
}

// NewTaxonomyService constructs the service.
func NewTaxonomyService(deps Dependencies) *TaxonomyService {
	return &TaxonomyService{deps: deps}
}

// CreateDepartmentInput payload.
type CreateDepartmentInput struct {
	Name string `json:"name" validate:"required,notblank,min=3,max=100"`
}

// UpdateDepartmentInput carries optional department changes.
type UpdateDepartmentInput struct {
	Name     *string `json:"name" validate:"omitnil,required,notblank,min=3,max=100"`
	IsActive *bool   `json:"is_active"`
}

// CreateIssueTypeInput payload.
type CreateIssueTypeInput struct {
	Name         string `json:"name" validate:"required,notblank,min=3,max=100"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
}

// UpdateIssueTypeInput carries optional issue type changes.
type UpdateIssueTypeInput struct {
	Name     *string `json:"name" validate:"omitnil,required,notblank,min=3,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (in *CreateDepartmentInput) normalize() { in.Name = strings.TrimSpace(in.Name) }
func (in *UpdateDepartmentInput) normalize() { in.Name = trimPtr(in.Name) }
func (in *CreateIssueTypeInput) normalize() { in.Name = strings.TrimSpace(in.Name) }
func (in *UpdateIssueTypeInput) normalize() { in.Name = trimPtr(in.Name) }

func departmentConflict(name string) error {
	return apperrors.NewConflict("department name already exists", map[string]any{"name": name})
}

func issueTypeConflict(departmentID int64, name string) error {
	return apperrors.NewConflict("issue type already exists in department", map[string]any{
		"department_id": departmentID,
		"name":          name,
	})
}

// CreateDepartment creates a new active department.
func (s *TaxonomyService) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (*domain.Department, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	dept := &domain.Department{Name: in.Name, IsActive: true}

	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		_, lookupErr := repos.Departments.GetByName(ctx, dept.Name)
		if err := ensureAbsent(lookupErr, departmentConflict(dept.Name)); err != nil {
			return err
		}
		return repos.Departments.Create(ctx, dept)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.deps, events.NewEvent(events.EventDepartmentCreated, events.ResourceDepartment, dept.ID, events.DepartmentPayload{
		Name:     dept.Name,
		IsActive: dept.IsActive,
	}))
	return dept, nil
}

// GetDepartment fetches a department.
func (s *TaxonomyService) GetDepartment(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.deps.Repos.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(notFound(err, "department", id))
	}
	return dept, nil
}

// ListDepartments returns departments (optionally inactive).
func (s *TaxonomyService) ListDepartments(ctx context.Context, includeInactive bool) ([]domain.Department, error) {
	depts, err := s.deps.Repos.Departments.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}

// UpdateDepartment renames or (de)activates a department. Departments are never deleted.
func (s *TaxonomyService) UpdateDepartment(ctx context.Context, id int64, in UpdateDepartmentInput) (*domain.Department, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var dept *domain.Department
	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		dept, err = repos.Departments.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "department", id)
		}
		if in.Name != nil && *in.Name != dept.Name {
			_, lookupErr := repos.Departments.GetByName(ctx, *in.Name)
			if err := ensureAbsent(lookupErr, departmentConflict(*in.Name)); err != nil {
				return err
			}
			dept.Name = *in.Name
		}
		if in.IsActive != nil {
			dept.IsActive = *in.IsActive
		}
		return repos.Departments.Update(ctx, dept)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.deps, events.NewEvent(events.EventDepartmentUpdated, events.ResourceDepartment, dept.ID, events.DepartmentPayload{
		Name:     dept.Name,
		IsActive: dept.IsActive,
	}))
	return dept, nil
}

// CreateIssueType creates an issue type under an existing, active department.
func (s *TaxonomyService) CreateIssueType(ctx context.Context, in CreateIssueTypeInput) (*domain.IssueType, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	issueType := &domain.IssueType{Name: in.Name, DepartmentID: in.DepartmentID, IsActive: true}

	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		dept, err := repos.Departments.GetByID(ctx, in.DepartmentID)
		if err != nil {
			return notFound(err, "department", in.DepartmentID)
		}
		if !dept.IsActive {
			return apperrors.NewNotFound("department", map[string]any{"id": in.DepartmentID, "reason": "inactive"})
		}
		_, lookupErr := repos.IssueTypes.GetByName(ctx, in.DepartmentID, in.Name)
		if err := ensureAbsent(lookupErr, issueTypeConflict(in.DepartmentID, in.Name)); err != nil {
			return err
		}
		return repos.IssueTypes.Create(ctx, issueType)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.deps, events.NewEvent(events.EventIssueTypeCreated, events.ResourceIssueType, issueType.ID, events.IssueTypePayload{
		Name:         issueType.Name,
		DepartmentID: issueType.DepartmentID,
		IsActive:     issueType.IsActive,
	}))
	return issueType, nil
}

// GetIssueType fetches an issue type.
func (s *TaxonomyService) GetIssueType(ctx context.Context, id int64) (*domain.IssueType, error) {
	issueType, err := s.deps.Repos.IssueTypes.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(notFound(err, "issue type", id))
	}
	return issueType, nil
}

// ListIssueTypes lists issue types optionally filtered by department.
func (s *TaxonomyService) ListIssueTypes(ctx context.Context, filter repository.IssueTypeFilter) ([]domain.IssueType, error) {
	issueTypes, err := s.deps.Repos.IssueTypes.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issueTypes, nil
}

// UpdateIssueType renames or (de)activates an issue type.
func (s *TaxonomyService) UpdateIssueType(ctx context.Context, id int64, in UpdateIssueTypeInput) (*domain.IssueType, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var issueType *domain.IssueType
	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		issueType, err = repos.IssueTypes.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "issue type", id)
		}
		if in.Name != nil && *in.Name != issueType.Name {
			_, lookupErr := repos.IssueTypes.GetByName(ctx, issueType.DepartmentID, *in.Name)
			if err := ensureAbsent(lookupErr, issueTypeConflict(issueType.DepartmentID, *in.Name)); err != nil {
				return err
			}
			issueType.Name = *in.Name
		}
		if in.IsActive != nil {
			issueType.IsActive = *in.IsActive
		}
		return repos.IssueTypes.Update(ctx, issueType)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.deps, events.NewEvent(events.EventIssueTypeUpdated, events.ResourceIssueType, issueType.ID, events.IssueTypePayload{
		Name:         issueType.Name,
		DepartmentID: issueType.DepartmentID,
		IsActive:     issueType.IsActive,
	}))
	return issueType, nil
}
