package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.store.run(ctx, func(t *tables) error {
		if err := checkUserUnique(t, user); err != nil {
			return err
		}
		now := r.store.now()
		user.ID = t.next("users")
		user.CreatedAt, user.UpdatedAt = now, now
		t.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.store.run(ctx, func(t *tables) error {
		existing, ok := t.users[user.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if err := checkUserUnique(t, user); err != nil {
			return err
		}
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = later(r.store.now(), existing.UpdatedAt)
		t.users[user.ID] = *user
		return nil
	})
}

func checkUserUnique(t *tables, user *domain.User) error {
	for _, u := range t.users {
		if u.ID == user.ID {
			continue
		}
		if u.PhoneNumber == user.PhoneNumber {
			return uniqueViolation("users", "uq_users_phone_number")
		}
		if strings.EqualFold(u.Email, user.Email) {
			return uniqueViolation("users", "uq_users_email")
		}
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id })
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.PhoneNumber == phone })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepository) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	var found *domain.User
	err := r.store.run(ctx, func(t *tables) error {
		for _, u := range t.users {
			if match(u) {
				found = &u
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return found, err
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var result []domain.User
	err := r.store.run(ctx, func(t *tables) error {
		for _, u := range t.users {
			if filter.Role != nil && u.Role != *filter.Role {
				continue
			}
			if filter.Department != nil && (u.Department == nil || *u.Department != *filter.Department) {
				continue
			}
			result = append(result, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b domain.User) int { return byCreation(a.CreatedAt, a.ID, b.CreatedAt, b.ID) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

type departmentRepository struct {
	store *Store
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	return r.store.run(ctx, func(t *tables) error {
		if err := checkDepartmentUnique(t, dept); err != nil {
			return err
		}
		dept.ID = t.next("departments")
		dept.CreatedAt = r.store.now()
		t.departments[dept.ID] = *dept
		return nil
	})
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	return r.store.run(ctx, func(t *tables) error {
		existing, ok := t.departments[dept.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if err := checkDepartmentUnique(t, dept); err != nil {
			return err
		}
		dept.CreatedAt = existing.CreatedAt
		t.departments[dept.ID] = *dept
		return nil
	})
}

func checkDepartmentUnique(t *tables, dept *domain.Department) error {
	for _, d := range t.departments {
		if d.ID != dept.ID && d.Name == dept.Name {
			return uniqueViolation("departments", "uq_departments_name")
		}
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var found *domain.Department
	err := r.store.run(ctx, func(t *tables) error {
		d, ok := t.departments[id]
		if !ok {
			return pgx.ErrNoRows
		}
		found = &d
		return nil
	})
	return found, err
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	var found *domain.Department
	err := r.store.run(ctx, func(t *tables) error {
		for _, d := range t.departments {
			if d.Name == name {
				found = &d
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return found, err
}

func (r *departmentRepository) List(ctx context.Context, includeInactive bool) ([]domain.Department, error) {
	result := []domain.Department{}
	err := r.store.run(ctx, func(t *tables) error {
		for _, d := range t.departments {
			if includeInactive || d.IsActive {
				result = append(result, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b domain.Department) int { return byCreation(a.CreatedAt, a.ID, b.CreatedAt, b.ID) })
	return result, nil
}

type issueTypeRepository struct {
	store *Store
}

func (r *issueTypeRepository) Create(ctx context.Context, issueType *domain.IssueType) error {
	return r.store.run(ctx, func(t *tables) error {
		if _, ok := t.departments[issueType.DepartmentID]; !ok {
			return foreignKeyViolation("issue_types", "fk_issue_types_department")
		}
		if err := checkIssueTypeUnique(t, issueType); err != nil {
			return err
		}
		issueType.ID = t.next("issue_types")
		issueType.CreatedAt = r.store.now()
		t.issueTypes[issueType.ID] = *issueType
		return nil
	})
}

func (r *issueTypeRepository) Update(ctx context.Context, issueType *domain.IssueType) error {
	return r.store.run(ctx, func(t *tables) error {
		existing, ok := t.issueTypes[issueType.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if err := checkIssueTypeUnique(t, issueType); err != nil {
			return err
		}
		issueType.CreatedAt = existing.CreatedAt
		issueType.DepartmentID = existing.DepartmentID
		t.issueTypes[issueType.ID] = *issueType
		return nil
	})
}

func checkIssueTypeUnique(t *tables, issueType *domain.IssueType) error {
	for _, it := range t.issueTypes {
		if it.ID != issueType.ID && it.DepartmentID == issueType.DepartmentID && it.Name == issueType.Name {
			return uniqueViolation("issue_types", "uq_issue_types_department_name")
		}
	}
	return nil
}

func (r *issueTypeRepository) GetByID(ctx context.Context, id int64) (*domain.IssueType, error) {
	var found *domain.IssueType
	err := r.store.run(ctx, func(t *tables) error {
		it, ok := t.issueTypes[id]
		if !ok {
			return pgx.ErrNoRows
		}
		found = &it
		return nil
	})
	return found, err
}

func (r *issueTypeRepository) GetByName(ctx context.Context, departmentID int64, name string) (*domain.IssueType, error) {
	var found *domain.IssueType
	err := r.store.run(ctx, func(t *tables) error {
		for _, it := range t.issueTypes {
			if it.DepartmentID == departmentID && it.Name == name {
				found = &it
				return nil
			}
		}
		return pgx.ErrNoRows
	})
	return found, err
}

func (r *issueTypeRepository) List(ctx context.Context, filter repository.IssueTypeFilter) ([]domain.IssueType, error) {
	result := []domain.IssueType{}
	err := r.store.run(ctx, func(t *tables) error {
		for _, it := range t.issueTypes {
			if filter.DepartmentID != nil && it.DepartmentID != *filter.DepartmentID {
				continue
			}
			if !filter.IncludeInactive && !it.IsActive {
				continue
			}
			result = append(result, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b domain.IssueType) int { return byCreation(a.CreatedAt, a.ID, b.CreatedAt, b.ID) })
	return result, nil
}

type complaintRepository struct {
	store *Store
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	return r.store.run(ctx, func(t *tables) error {
		if _, ok := t.users[complaint.UserID]; !ok {
			return foreignKeyViolation("complaints", "fk_complaints_user")
		}
		if _, ok := t.issueTypes[complaint.IssueTypeID]; !ok {
			return foreignKeyViolation("complaints", "fk_complaints_issue_type")
		}
		if complaint.AssignedTo != nil {
			if _, ok := t.users[*complaint.AssignedTo]; !ok {
				return foreignKeyViolation("complaints", "fk_complaints_assigned_to")
			}
		}
		now := r.store.now()
		complaint.ID = t.next("complaints")
		complaint.CreatedAt, complaint.UpdatedAt = now, now
		t.complaints[complaint.ID] = *complaint
		return nil
	})
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	return r.store.run(ctx, func(t *tables) error {
		existing, ok := t.complaints[complaint.ID]
		if !ok {
			return pgx.ErrNoRows
		}
		if complaint.AssignedTo != nil {
			if _, ok := t.users[*complaint.AssignedTo]; !ok {
				return foreignKeyViolation("complaints", "fk_complaints_assigned_to")
			}
		}
		existing.Status = complaint.Status
		existing.Urgency = complaint.Urgency
		existing.AssignedTo = complaint.AssignedTo
		existing.AssignedAt = complaint.AssignedAt
		existing.UpdatedAt = later(r.store.now(), existing.UpdatedAt)
		t.complaints[complaint.ID] = existing
		complaint.UpdatedAt = existing.UpdatedAt
		return nil
	})
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	var found *domain.Complaint
	err := r.store.run(ctx, func(t *tables) error {
		c, ok := t.complaints[id]
		if !ok {
			return pgx.ErrNoRows
		}
		found = &c
		return nil
	})
	return found, err
}

func (r *complaintRepository) filtered(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	err := r.store.run(ctx, func(t *tables) error {
		for _, c := range t.complaints {
			if filter.UserID != nil && c.UserID != *filter.UserID {
				continue
			}
			if filter.IssueTypeID != nil && c.IssueTypeID != *filter.IssueTypeID {
				continue
			}
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, c.Status) {
				continue
			}
			if len(filter.Urgencies) > 0 && !slices.Contains(filter.Urgencies, c.Urgency) {
				continue
			}
			result = append(result, c)
		}
		return nil
	})
	return result, err
}

func (r *complaintRepository) List(ctx context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	result, err := r.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b domain.Complaint) int { return byCreation(a.CreatedAt, a.ID, b.CreatedAt, b.ID) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *complaintRepository) Count(ctx context.Context, filter repository.ComplaintFilter) (int, error) {
	result, err := r.filtered(ctx, filter)
	return len(result), err
}

type historyRepository struct {
	store *Store
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.ComplaintStatusHistory) error {
	return r.store.run(ctx, func(t *tables) error {
		if _, ok := t.complaints[entry.ComplaintID]; !ok {
			return foreignKeyViolation("complaint_status_history", "fk_complaint_status_history_complaint")
		}
		if entry.ChangedBy != nil {
			if _, ok := t.users[*entry.ChangedBy]; !ok {
				return foreignKeyViolation("complaint_status_history", "fk_complaint_status_history_changed_by")
			}
		}
		entry.ID = t.next("complaint_status_history")
		entry.ChangedAt = r.store.now()
		t.history[entry.ID] = *entry
		return nil
	})
}

func (r *historyRepository) ListByComplaint(ctx context.Context, complaintID int64) ([]domain.ComplaintStatusHistory, error) {
	result := []domain.ComplaintStatusHistory{}
	err := r.store.run(ctx, func(t *tables) error {
		for _, h := range t.history {
			if h.ComplaintID == complaintID {
				result = append(result, h)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(result, func(a, b domain.ComplaintStatusHistory) int {
		return byCreation(a.ChangedAt, a.ID, b.ChangedAt, b.ID)
	})
	return result, nil
}

func byCreation(aTime time.Time, aID int64, bTime time.Time, bID int64) int {
	if c := aTime.Compare(bTime); c != 0 {
		return c
	}
	switch {
	case aID < bID:
		return -1
	case aID > bID:
		return 1
	}
	return 0
}

// later keeps update timestamps strictly increasing on coarse clocks.
func later(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

func paginate[T any](items []T, limit, offset int) []T {
	limit, offset = repository.Page(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
