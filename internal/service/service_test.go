package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/observability"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/repository/memory"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	repos      repository.Set
	recorder   *recorder
	users      *UserService
	taxonomy   *TaxonomyService
	complaints *ComplaintService
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewSet()
	s.recorder = &recorder{}

	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, s.recorder.handle)
	NewAuditService(dispatcher, zap.NewNop()).RegisterHandlers()

	deps := Dependencies{
		Repos:      s.repos,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Metrics:    observability.NewMetrics(),
	}
	s.users = NewUserService(deps)
	s.taxonomy = NewTaxonomyService(deps)
	s.complaints = NewComplaintService(deps)
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) registerJohn() *domain.User {
	user, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543210",
		FullName:           "John Doe",
		Email:              "john@example.com",
		ResidentialAddress: "123 Main Street",
	})
	s.Require().NoError(err)
	return user
}

func (s *ServiceSuite) seedTaxonomy() (*domain.Department, *domain.IssueType) {
	dept, err := s.taxonomy.CreateDepartment(s.ctx, CreateDepartmentInput{Name: "Sanitation"})
	s.Require().NoError(err)
	it, err := s.taxonomy.CreateIssueType(s.ctx, CreateIssueTypeInput{Name: "Garbage Collection", DepartmentID: dept.ID})
	s.Require().NoError(err)
	return dept, it
}

func (s *ServiceSuite) TestWorkedExampleAppliesDefaults() {
	dept, it := s.seedTaxonomy()
	s.Equal(int64(1), dept.ID)
	s.Equal(int64(1), it.ID)
	s.True(it.IsActive)

	user := s.registerJohn()
	s.Equal(int64(1), user.ID)
	s.Equal(domain.RoleUser, user.Role)
	s.Nil(user.Department)
	s.False(user.IsVerified)

	complaint, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID:      user.ID,
		IssueTypeID: it.ID,
		Description: "Garbage overflowing for 3 days",
		Address:     "123 Main Street",
	})
	s.Require().NoError(err)
	s.Equal(int64(1), complaint.ID)
	s.Equal(domain.ComplaintStatusOpen, complaint.Status)
	s.Equal(domain.ComplaintUrgencyMedium, complaint.Urgency)

	fetched, err := s.complaints.GetByID(s.ctx, complaint.ID)
	s.Require().NoError(err)
	s.Equal(*complaint, *fetched)

	s.Equal([]events.EventType{
		events.EventDepartmentCreated,
		events.EventIssueTypeCreated,
		events.EventUserRegistered,
		events.EventComplaintSubmitted,
	}, s.recorder.types())
}

func (s *ServiceSuite) TestRegisterRoundTrip() {
	user := s.registerJohn()
	fetched, err := s.users.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(*user, *fetched)
}

func (s *ServiceSuite) TestRegisterRejectsInvalidInputBeforeStorage() {
	cases := map[string]RegisterUserInput{
		"bad phone":      {PhoneNumber: "9876543210", FullName: "John Doe", Email: "john@example.com", ResidentialAddress: "123 Main Street"},
		"bad email":      {PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john.example.com", ResidentialAddress: "123 Main Street"},
		"short name":     {PhoneNumber: "+919876543210", FullName: "J", Email: "john@example.com", ResidentialAddress: "123 Main Street"},
		"long name":      {PhoneNumber: "+919876543210", FullName: strings.Repeat("a", 256), Email: "john@example.com", ResidentialAddress: "123 Main Street"},
		"short address":  {PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john@example.com", ResidentialAddress: "123"},
		"padded name":    {PhoneNumber: "+919876543210", FullName: " J ", Email: "john@example.com", ResidentialAddress: "123 Main Street"},
		"padded address": {PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john@example.com", ResidentialAddress: "  1234  "},
		"padded manager department": {
			PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john@example.com",
			ResidentialAddress: "123 Main Street", Role: "department_manager", Department: ptr(" S "),
		},
		"unknown role": {PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john@example.com", ResidentialAddress: "123 Main Street", Role: "superuser"},
		"manager without department": {
			PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john@example.com",
			ResidentialAddress: "123 Main Street", Role: "department_manager",
		},
		"user with department": {
			PhoneNumber: "+919876543210", FullName: "John Doe", Email: "john@example.com",
			ResidentialAddress: "123 Main Street", Department: ptr("Sanitation"),
		},
	}
	for name, in := range cases {
		s.Run(name, func() {
			_, err := s.users.Register(s.ctx, in)
			s.Require().Error(err)
			s.True(apperrors.IsValidation(err), err.Error())
		})
	}

	users, err := s.users.List(s.ctx, UserListInput{})
	s.Require().NoError(err)
	s.Empty(users)
	s.Empty(s.recorder.types())
}

func (s *ServiceSuite) TestRegisterAcceptsBoundaryLengths() {
	_, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+910000000000",
		FullName:           "Jo",
		Email:              "jo@example.com",
		ResidentialAddress: "12345",
	})
	s.Require().NoError(err)
	_, err = s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919999999999",
		FullName:           strings.Repeat("a", 255),
		Email:              "long@example.com",
		ResidentialAddress: strings.Repeat("b", 500),
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestRegisterDuplicatePhoneOrEmailConflicts() {
	first := s.registerJohn()

	_, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543210",
		FullName:           "Jane Doe",
		Email:              "jane@example.com",
		ResidentialAddress: "9 Side Street",
	})
	s.Require().Error(err)
	s.True(apperrors.IsConflict(err))

	_, err = s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876500000",
		FullName:           "Jane Doe",
		Email:              "john@example.com",
		ResidentialAddress: "9 Side Street",
	})
	s.Require().Error(err)
	s.True(apperrors.IsConflict(err))

	still, err := s.users.GetByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(*first, *still)

	all, err := s.users.List(s.ctx, UserListInput{})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ServiceSuite) TestRegisterDepartmentManager() {
	user, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543211",
		FullName:           "Maya Rao",
		Email:              "maya@example.com",
		ResidentialAddress: "4 Civic Lane",
		Role:               "department_manager",
		Department:         ptr("Sanitation"),
	})
	s.Require().NoError(err)
	s.Equal(domain.RoleDepartmentManager, user.Role)
	s.Require().NotNil(user.Department)
	s.True(user.CanManageDepartment("sanitation"))
	s.False(user.CanManageDepartment("Water"))

	managers, err := s.users.List(s.ctx, UserListInput{Role: "department_manager"})
	s.Require().NoError(err)
	s.Len(managers, 1)

	upper, err := s.users.List(s.ctx, UserListInput{Role: "DEPARTMENT_MANAGER"})
	s.Require().NoError(err)
	s.Len(upper, 1)

	_, err = s.users.List(s.ctx, UserListInput{Role: "superuser"})
	s.True(apperrors.IsValidation(err))
}

func (s *ServiceSuite) TestUpdateRole() {
	user := s.registerJohn()
	before := user.UpdatedAt

	promoted, err := s.users.UpdateRole(s.ctx, user.ID, UpdateRoleInput{Role: "department_manager", Department: ptr("Roads")})
	s.Require().NoError(err)
	s.Equal(domain.RoleDepartmentManager, promoted.Role)
	s.Equal("Roads", *promoted.Department)
	s.True(promoted.UpdatedAt.After(before))

	demoted, err := s.users.UpdateRole(s.ctx, user.ID, UpdateRoleInput{Role: "admin"})
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, demoted.Role)
	s.Nil(demoted.Department)

	_, err = s.users.UpdateRole(s.ctx, user.ID, UpdateRoleInput{Role: "department_manager"})
	s.True(apperrors.IsValidation(err))

	_, err = s.users.UpdateRole(s.ctx, 99, UpdateRoleInput{Role: "user"})
	s.True(apperrors.IsNotFound(err))

	s.Contains(s.recorder.types(), events.EventUserRoleChanged)
}

func (s *ServiceSuite) TestUpdateProfile() {
	john := s.registerJohn()
	jane, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543299",
		FullName:           "Jane Doe",
		Email:              "jane@example.com",
		ResidentialAddress: "9 Side Street",
	})
	s.Require().NoError(err)

	updated, err := s.users.UpdateProfile(s.ctx, john.ID, UpdateProfileInput{FullName: ptr("John Q. Doe")})
	s.Require().NoError(err)
	s.Equal("John Q. Doe", updated.FullName)
	s.Equal(john.Email, updated.Email)

	_, err = s.users.UpdateProfile(s.ctx, john.ID, UpdateProfileInput{Email: ptr(jane.Email)})
	s.True(apperrors.IsConflict(err))

	_, err = s.users.UpdateProfile(s.ctx, john.ID, UpdateProfileInput{PhoneNumber: ptr("")})
	s.True(apperrors.IsValidation(err))

	_, err = s.users.UpdateProfile(s.ctx, 404, UpdateProfileInput{FullName: ptr("Nobody Here")})
	s.True(apperrors.IsNotFound(err))
}

func (s *ServiceSuite) TestDepartmentUniquenessAndDeactivation() {
	dept, _ := s.seedTaxonomy()

	_, err := s.taxonomy.CreateDepartment(s.ctx, CreateDepartmentInput{Name: "Sanitation"})
	s.True(apperrors.IsConflict(err))

	_, err = s.taxonomy.CreateDepartment(s.ctx, CreateDepartmentInput{Name: "HR"})
	s.True(apperrors.IsValidation(err))

	_, err = s.taxonomy.UpdateDepartment(s.ctx, dept.ID, UpdateDepartmentInput{IsActive: ptr(false)})
	s.Require().NoError(err)

	active, err := s.taxonomy.ListDepartments(s.ctx, false)
	s.Require().NoError(err)
	s.Empty(active)

	all, err := s.taxonomy.ListDepartments(s.ctx, true)
	s.Require().NoError(err)
	s.Len(all, 1)

	_, err = s.taxonomy.CreateIssueType(s.ctx, CreateIssueTypeInput{Name: "Street Sweeping", DepartmentID: dept.ID})
	s.True(apperrors.IsNotFound(err))
}

func (s *ServiceSuite) TestIssueTypeRequiresExistingDepartment() {
	_, err := s.taxonomy.CreateIssueType(s.ctx, CreateIssueTypeInput{Name: "Potholes", DepartmentID: 999})
	s.Require().Error(err)
	s.True(apperrors.IsNotFound(err))

	list, err := s.taxonomy.ListIssueTypes(s.ctx, repository.IssueTypeFilter{IncludeInactive: true})
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ServiceSuite) TestIssueTypeNameUniquePerDepartment() {
	dept, _ := s.seedTaxonomy()
	_, err := s.taxonomy.CreateIssueType(s.ctx, CreateIssueTypeInput{Name: "Garbage Collection", DepartmentID: dept.ID})
	s.True(apperrors.IsConflict(err))

	roads, err := s.taxonomy.CreateDepartment(s.ctx, CreateDepartmentInput{Name: "Roads"})
	s.Require().NoError(err)
	_, err = s.taxonomy.CreateIssueType(s.ctx, CreateIssueTypeInput{Name: "Garbage Collection", DepartmentID: roads.ID})
	s.Require().NoError(err)

	byDept, err := s.taxonomy.ListIssueTypes(s.ctx, repository.IssueTypeFilter{DepartmentID: &roads.ID})
	s.Require().NoError(err)
	s.Len(byDept, 1)
}

func (s *ServiceSuite) TestSubmitRequiresResolvableReferences() {
	_, it := s.seedTaxonomy()
	user := s.registerJohn()

	_, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: 999, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street",
	})
	s.True(apperrors.IsNotFound(err))

	_, err = s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: user.ID, IssueTypeID: 999, Description: "Garbage overflowing for 3 days", Address: "123 Main Street",
	})
	s.True(apperrors.IsNotFound(err))

	_, err = s.taxonomy.UpdateIssueType(s.ctx, it.ID, UpdateIssueTypeInput{IsActive: ptr(false)})
	s.Require().NoError(err)
	_, err = s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: user.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street",
	})
	s.True(apperrors.IsNotFound(err))

	page, err := s.complaints.List(s.ctx, ComplaintListInput{})
	s.Require().NoError(err)
	s.Zero(page.Total)
	s.Empty(page.Items)
}

func (s *ServiceSuite) TestSubmitValidation() {
	_, it := s.seedTaxonomy()
	user := s.registerJohn()

	cases := map[string]SubmitComplaintInput{
		"short description":  {UserID: user.ID, IssueTypeID: it.ID, Description: "too short", Address: "123 Main Street"},
		"long description":   {UserID: user.ID, IssueTypeID: it.ID, Description: strings.Repeat("x", 1001), Address: "123 Main Street"},
		"short address":      {UserID: user.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123"},
		"unknown status":     {UserID: user.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street", Status: "PENDING"},
		"padded description": {UserID: user.ID, IssueTypeID: it.ID, Description: "   123456789   ", Address: "123 Main Street"},
		"padded address":     {UserID: user.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "  1234  "},
		"unknown urgency":    {UserID: user.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street", Urgency: "URGENT"},
		"missing user":       {IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street"},
	}
	for name, in := range cases {
		s.Run(name, func() {
			_, err := s.complaints.Submit(s.ctx, in)
			s.True(apperrors.IsValidation(err))
		})
	}

	_, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: user.ID, IssueTypeID: it.ID, Description: strings.Repeat("x", 10), Address: "12345",
		Urgency: "CRITICAL",
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestUpdateComplaintRecordsHistory() {
	_, it := s.seedTaxonomy()
	user := s.registerJohn()
	complaint, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: user.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street",
	})
	s.Require().NoError(err)

	updated, err := s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{
		Status:    ptr("IN_PROGRESS"),
		ChangedBy: &user.ID,
		Comment:   ptr("crew dispatched"),
	})
	s.Require().NoError(err)
	s.Equal(domain.ComplaintStatusInProgress, updated.Status)
	s.Equal(domain.ComplaintUrgencyMedium, updated.Urgency)

	_, err = s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{Urgency: ptr("HIGH")})
	s.Require().NoError(err)

	// any status may follow any other
	_, err = s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{Status: ptr("OPEN")})
	s.Require().NoError(err)

	history, err := s.complaints.History(s.ctx, complaint.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Nil(history[0].OldStatus)
	s.Equal(domain.ComplaintStatusOpen, history[0].NewStatus)
	s.Equal(domain.ComplaintStatusOpen, *history[1].OldStatus)
	s.Equal(domain.ComplaintStatusInProgress, history[1].NewStatus)
	s.Equal("crew dispatched", *history[1].Comment)
	s.Equal(domain.ComplaintStatusOpen, history[2].NewStatus)

	_, err = s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{})
	s.True(apperrors.IsValidation(err))
	_, err = s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{Status: ptr("DONE")})
	s.True(apperrors.IsValidation(err))
	_, err = s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{Status: ptr("CLOSED"), ChangedBy: ptr(int64(77))})
	s.True(apperrors.IsNotFound(err))
	_, err = s.complaints.Update(s.ctx, 404, UpdateComplaintInput{Status: ptr("CLOSED")})
	s.True(apperrors.IsNotFound(err))
	_, err = s.complaints.History(s.ctx, 404)
	s.True(apperrors.IsNotFound(err))

	// failed update left no trace
	current, err := s.complaints.GetByID(s.ctx, complaint.ID)
	s.Require().NoError(err)
	s.Equal(domain.ComplaintStatusOpen, current.Status)
}

func (s *ServiceSuite) TestListComplaintsPaginatesAndFilters() {
	_, it := s.seedTaxonomy()
	user := s.registerJohn()
	for i := 0; i < 5; i++ {
		urgency := "LOW"
		if i%2 == 0 {
			urgency = "HIGH"
		}
		_, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
			UserID: user.ID, IssueTypeID: it.ID, Description: "Streetlight broken near park", Address: "7 Park Road", Urgency: urgency,
		})
		s.Require().NoError(err)
	}

	page, err := s.complaints.List(s.ctx, ComplaintListInput{Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(5, page.Total)
	s.Equal(3, page.Pages())
	s.Require().Len(page.Items, 2)
	s.Equal(int64(3), page.Items[0].ID)
	s.Equal(int64(4), page.Items[1].ID)

	high, err := s.complaints.List(s.ctx, ComplaintListInput{Urgencies: []string{"HIGH"}})
	s.Require().NoError(err)
	s.Equal(3, high.Total)

	mine, err := s.complaints.List(s.ctx, ComplaintListInput{UserID: ptr(int64(999))})
	s.Require().NoError(err)
	s.Zero(mine.Total)

	_, err = s.complaints.List(s.ctx, ComplaintListInput{PageSize: 101})
	s.True(apperrors.IsValidation(err))
	_, err = s.complaints.List(s.ctx, ComplaintListInput{Statuses: []string{"PENDING"}})
	s.True(apperrors.IsValidation(err))
}

func (s *ServiceSuite) TestInputIsTrimmedBeforeStorage() {
	_, it := s.seedTaxonomy()

	user, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543210",
		FullName:           "  John Doe  ",
		Email:              " John@Example.COM ",
		ResidentialAddress: "\t123 Main Street\n",
		Department:         ptr("   "),
	})
	s.Require().NoError(err)
	s.Equal("John Doe", user.FullName)
	s.Equal("john@example.com", user.Email)
	s.Equal("123 Main Street", user.ResidentialAddress)
	s.Nil(user.Department)

	complaint, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID:      user.ID,
		IssueTypeID: it.ID,
		Description: "  Garbage overflowing for 3 days  ",
		Address:     " 123 Main Street ",
	})
	s.Require().NoError(err)
	s.Equal("Garbage overflowing for 3 days", complaint.Description)
	s.Equal("123 Main Street", complaint.Address)

	dept, err := s.taxonomy.CreateDepartment(s.ctx, CreateDepartmentInput{Name: "  Roads  "})
	s.Require().NoError(err)
	s.Equal("Roads", dept.Name)
	_, err = s.taxonomy.CreateDepartment(s.ctx, CreateDepartmentInput{Name: " HR "})
	s.True(apperrors.IsValidation(err))
	_, err = s.taxonomy.CreateIssueType(s.ctx, CreateIssueTypeInput{Name: " ab ", DepartmentID: dept.ID})
	s.True(apperrors.IsValidation(err))

	manager, err := s.users.UpdateRole(s.ctx, user.ID, UpdateRoleInput{Role: "department_manager", Department: ptr(" Roads ")})
	s.Require().NoError(err)
	s.Equal("Roads", *manager.Department)

	back, err := s.users.UpdateRole(s.ctx, user.ID, UpdateRoleInput{Role: "user", Department: ptr("")})
	s.Require().NoError(err)
	s.Nil(back.Department)
}

func (s *ServiceSuite) TestEmailConflictIgnoresCase() {
	s.registerJohn()

	_, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876500000",
		FullName:           "John Again",
		Email:              "JOHN@example.com",
		ResidentialAddress: "9 Side Street",
	})
	s.Require().Error(err)
	s.True(apperrors.IsConflict(err))
}

func (s *ServiceSuite) TestEnumInputIsCaseInsensitive() {
	_, it := s.seedTaxonomy()

	admin, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543210",
		FullName:           "Asha Iyer",
		Email:              "asha@example.com",
		ResidentialAddress: "1 Town Hall Road",
		Role:               "ADMIN",
	})
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, admin.Role)

	complaint, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: admin.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street",
		Status: "open", Urgency: "High",
	})
	s.Require().NoError(err)
	s.Equal(domain.ComplaintStatusOpen, complaint.Status)
	s.Equal(domain.ComplaintUrgencyHigh, complaint.Urgency)

	updated, err := s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{Status: ptr("in_progress")})
	s.Require().NoError(err)
	s.Equal(domain.ComplaintStatusInProgress, updated.Status)
}

func (s *ServiceSuite) TestComplaintRoutingAndAssignment() {
	dept, it := s.seedTaxonomy()
	citizen := s.registerJohn()
	officer, err := s.users.Register(s.ctx, RegisterUserInput{
		PhoneNumber:        "+919876543211",
		FullName:           "Maya Rao",
		Email:              "maya@example.com",
		ResidentialAddress: "4 Civic Lane",
		Role:               "department_manager",
		Department:         ptr(dept.Name),
	})
	s.Require().NoError(err)

	complaint, err := s.complaints.Submit(s.ctx, SubmitComplaintInput{
		UserID: citizen.ID, IssueTypeID: it.ID, Description: "Garbage overflowing for 3 days", Address: "123 Main Street",
	})
	s.Require().NoError(err)
	s.Require().NotNil(complaint.Department)
	s.Equal("Sanitation", *complaint.Department)
	s.Nil(complaint.AssignedTo)

	assigned, err := s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{
		Status:     ptr("ASSIGNED"),
		AssignedTo: &officer.ID,
		ChangedBy:  &officer.ID,
	})
	s.Require().NoError(err)
	s.Equal(domain.ComplaintStatusAssigned, assigned.Status)
	s.Require().NotNil(assigned.AssignedTo)
	s.Equal(officer.ID, *assigned.AssignedTo)
	s.NotNil(assigned.AssignedAt)

	// assignment alone is a valid update and leaves status untouched
	reassigned, err := s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{AssignedTo: &citizen.ID})
	s.Require().NoError(err)
	s.Equal(domain.ComplaintStatusAssigned, reassigned.Status)
	s.Equal(citizen.ID, *reassigned.AssignedTo)

	_, err = s.complaints.Update(s.ctx, complaint.ID, UpdateComplaintInput{AssignedTo: ptr(int64(404))})
	s.True(apperrors.IsNotFound(err))

	fetched, err := s.complaints.GetByID(s.ctx, complaint.ID)
	s.Require().NoError(err)
	s.Equal(citizen.ID, *fetched.AssignedTo)

	history, err := s.complaints.History(s.ctx, complaint.ID)
	s.Require().NoError(err)
	s.Len(history, 2)
}

type failingTx struct {
	repository.Transactor
	err error
}

func (f failingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := f.Transactor.WithinTx(ctx, fn); err != nil {
		return err
	}
	return f.err
}

func (s *ServiceSuite) TestCommitFailureSurfacesAsStorageError() {
	repos := s.repos
	repos.Tx = failingTx{Transactor: s.repos.Tx, err: errors.New("connection reset")}
	svc := NewTaxonomyService(Dependencies{Repos: repos})

	_, err := svc.CreateDepartment(s.ctx, CreateDepartmentInput{Name: "Water Supply"})
	s.Require().Error(err)
	s.True(apperrors.IsStorage(err))
}
