package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// Field bounds, measured in Unicode code points.
const (
	FullNameMin           = 2
	FullNameMax           = 255
	AddressMin            = 5
	AddressMax            = 500
	DepartmentNameMin     = 3
	DepartmentNameMax     = 100
	IssueTypeNameMin      = 3
	IssueTypeNameMax      = 100
	DescriptionMin        = 10
	DescriptionMax        = 1000
	UserDepartmentMin     = 2
	UserDepartmentMax     = 100
	PhonePatternExpr      = `^\+91[0-9]{10}$`
	phoneTag              = "in_phone"
	notBlankTag           = "notblank"
	phoneFormatMessage    = "must be +91 followed by exactly 10 digits"
	emailFormatMessage    = "must be a valid email address"
	blankMessage          = "must not be blank"
	requiredMessage       = "is required"
	validationFailedTitle = "validation failed"
)

var phonePattern = regexp.MustCompile(PhonePatternExpr)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
		_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		instance = v
	})
	return instance
}

// Struct validates a tagged struct and returns a ValidationError whose details
// map each offending field to a reason.
func Struct(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(validationFailedTitle, map[string]any{"error": err.Error()})
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := details[fe.Field()]; seen {
			continue
		}
		details[fe.Field()] = reason(fe)
	}
	return apperrors.NewValidationError(validationFailedTitle, details)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return requiredMessage
	case phoneTag:
		return phoneFormatMessage
	case "email":
		return emailFormatMessage
	case notBlankTag:
		return blankMessage
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidatePhone accepts only +91 followed by exactly ten digits.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return apperrors.NewValidationError(validationFailedTitle, map[string]any{"phone_number": phoneFormatMessage})
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := engine().Var(email, "required,email"); err != nil {
		return apperrors.NewValidationError(validationFailedTitle, map[string]any{"email": emailFormatMessage})
	}
	return nil
}

// ValidateLength checks that value is non-blank and, once trimmed, within
// [min, max] code points.
func ValidateLength(field, value string, min, max int) error {
	value = strings.TrimSpace(value)
	tag := fmt.Sprintf("%s,min=%d,max=%d", notBlankTag, min, max)
	if err := engine().Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperrors.NewValidationError(validationFailedTitle, map[string]any{field: reason(fieldErrs[0])})
		}
		return apperrors.NewValidationError(validationFailedTitle, map[string]any{field: err.Error()})
	}
	return nil
}

// ValidateRoleDepartment enforces that a department is present exactly when the
// role is department_manager. A blank department counts as absent.
func ValidateRoleDepartment(role domain.Role, department *string) error {
	if department != nil && strings.TrimSpace(*department) == "" {
		department = nil
	}
	if role == domain.RoleDepartmentManager {
		if department == nil {
			return apperrors.NewValidationError(validationFailedTitle, map[string]any{
				"department": "is required for department_manager role",
			})
		}
		return ValidateLength("department", *department, UserDepartmentMin, UserDepartmentMax)
	}
	if department != nil {
		return apperrors.NewValidationError(validationFailedTitle, map[string]any{
			"department": "only allowed for department_manager role",
		})
	}
	return nil
}
