package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/validation"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// UserService registers users and maintains their profile and role.
type UserService struct {
	deps Dependencies
}

// NewUserService constructs the service.
func NewUserService(deps Dependencies) *UserService {
	return &UserService{deps: deps}
}

// RegisterUserInput carries registration fields.
type RegisterUserInput struct {
	PhoneNumber        string  `json:"phone_number" validate:"required,in_phone"`
	FullName           string  `json:"full_name" validate:"required,notblank,min=2,max=255"`
	Email              string  `json:"email" validate:"required,email,max=255"`
	ResidentialAddress string  `json:"residential_address" validate:"required,notblank,min=5,max=500"`
	Role               string  `json:"role"`
	Department         *string `json:"department"`
}

// UpdateProfileInput carries optional profile changes.
type UpdateProfileInput struct {
	PhoneNumber        *string `json:"phone_number" validate:"omitnil,required,in_phone"`
	FullName           *string `json:"full_name" validate:"omitnil,required,notblank,min=2,max=255"`
	Email              *string `json:"email" validate:"omitnil,required,email,max=255"`
	ResidentialAddress *string `json:"residential_address" validate:"omitnil,required,notblank,min=5,max=500"`
}

// UpdateRoleInput carries a role assignment.
type UpdateRoleInput struct {
	Role       string  `json:"role" validate:"required"`
	Department *string `json:"department"`
}

// UserListInput narrows user listings.
type UserListInput struct {
	Role       string
	Department *string
	Limit      int
	Offset     int
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in *RegisterUserInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	in.ResidentialAddress = strings.TrimSpace(in.ResidentialAddress)
	in.Department = optionalText(in.Department)
}

func (in *UpdateProfileInput) normalize() {
	in.FullName = trimPtr(in.FullName)
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	in.ResidentialAddress = trimPtr(in.ResidentialAddress)
}

func (in *UpdateRoleInput) normalize() {
	in.Department = optionalText(in.Department)
}

func phoneConflict(phone string) error {
	return apperrors.NewConflict("phone number already registered", map[string]any{"phone_number": phone})
}

func emailConflict(email string) error {
	return apperrors.NewConflict("email already registered", map[string]any{"email": email})
}

// Register validates and persists a new user. Role defaults to user. Text
// fields are trimmed and email is lower-cased before validation.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (*domain.User, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateRoleDepartment(role, in.Department); err != nil {
		return nil, err
	}

	user := &domain.User{
		PhoneNumber:        in.PhoneNumber,
		FullName:           in.FullName,
		Email:              in.Email,
		ResidentialAddress: in.ResidentialAddress,
		Role:               role,
		Department:         in.Department,
	}

	repos := s.deps.Repos
	err = repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		_, lookupErr := repos.Users.GetByPhone(ctx, user.PhoneNumber)
		if err := ensureAbsent(lookupErr, phoneConflict(user.PhoneNumber)); err != nil {
			return err
		}
		_, lookupErr = repos.Users.GetByEmail(ctx, user.Email)
		if err := ensureAbsent(lookupErr, emailConflict(user.Email)); err != nil {
			return err
		}
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.deps, events.NewEvent(events.EventUserRegistered, events.ResourceUser, user.ID, events.UserRegisteredPayload{
		Role:       user.Role,
		Department: user.Department,
	}))
	return user, nil
}

// GetByID fetches a user.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.deps.Repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(notFound(err, "user", id))
	}
	return user, nil
}

// List returns users ordered by creation.
func (s *UserService) List(ctx context.Context, in UserListInput) ([]domain.User, error) {
	filter := repository.UserFilter{Department: optionalText(in.Department), Limit: in.Limit, Offset: in.Offset}
	if in.Role != "" {
		role, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = &role
	}
	users, err := s.deps.Repos.Users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateProfile applies the provided profile fields. Changing phone or email
// re-checks uniqueness.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (*domain.User, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var user *domain.User
	var changed []string
	repos := s.deps.Repos
	err := repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = repos.Users.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "user", id)
		}

		if in.PhoneNumber != nil && *in.PhoneNumber != user.PhoneNumber {
			_, lookupErr := repos.Users.GetByPhone(ctx, *in.PhoneNumber)
			if err := ensureAbsent(lookupErr, phoneConflict(*in.PhoneNumber)); err != nil {
				return err
			}
			user.PhoneNumber = *in.PhoneNumber
			changed = append(changed, "phone_number")
		}
		if in.Email != nil && *in.Email != user.Email {
			_, lookupErr := repos.Users.GetByEmail(ctx, *in.Email)
			if err := ensureAbsent(lookupErr, emailConflict(*in.Email)); err != nil {
				return err
			}
			user.Email = *in.Email
			changed = append(changed, "email")
		}
		if in.FullName != nil && *in.FullName != user.FullName {
			user.FullName = *in.FullName
			changed = append(changed, "full_name")
		}
		if in.ResidentialAddress != nil && *in.ResidentialAddress != user.ResidentialAddress {
			user.ResidentialAddress = *in.ResidentialAddress
			changed = append(changed, "residential_address")
		}
		if len(changed) == 0 {
			return nil
		}
		return repos.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(changed) > 0 {
		publish(ctx, s.deps, events.NewEvent(events.EventUserUpdated, events.ResourceUser, user.ID, events.UserUpdatedPayload{Fields: changed}))
	}
	return user, nil
}

// UpdateRole assigns a role. department_manager requires a department; any
// other role clears it.
func (s *UserService) UpdateRole(ctx context.Context, id int64, in UpdateRoleInput) (*domain.User, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateRoleDepartment(role, in.Department); err != nil {
		return nil, err
	}

	var user *domain.User
	var payload events.UserRoleChangedPayload
	repos := s.deps.Repos
	err = repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = repos.Users.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "user", id)
		}
		payload = events.UserRoleChangedPayload{
			OldRole:       user.Role,
			NewRole:       role,
			OldDepartment: user.Department,
			NewDepartment: in.Department,
		}
		user.Role = role
		user.Department = in.Department
		return repos.Users.Update(ctx, user)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.deps.logger().Info("user role updated",
		zap.Int64("user_id", user.ID),
		zap.String("old_role", string(payload.OldRole)),
		zap.String("new_role", string(payload.NewRole)))
	publish(ctx, s.deps, events.NewEvent(events.EventUserRoleChanged, events.ResourceUser, user.ID, payload))
	return user, nil
}
