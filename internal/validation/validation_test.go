package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"valid", "+919876543210", false},
		{"all zeros", "+910000000000", false},
		{"missing prefix", "9876543210", true},
		{"wrong country", "+449876543210", true},
		{"nine digits", "+91987654321", true},
		{"eleven digits", "+9198765432101", true},
		{"letters", "+91987654321a", true},
		{"surrounding spaces", " +919876543210 ", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("john@example.com"))
	for _, bad := range []string{"", "john", "john@", "@example.com"} {
		err := ValidateEmail(bad)
		require.Error(t, err, bad)
		assert.True(t, apperrors.IsValidation(err), bad)
	}
}

func TestValidateLength(t *testing.T) {
	require.NoError(t, ValidateLength("name", "abc", 3, 5))
	require.NoError(t, ValidateLength("name", "abcde", 3, 5))

	err := ValidateLength("name", "ab", 3, 5)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, "must be at least 3 characters", de.Details["name"])

	err = ValidateLength("name", "abcdef", 3, 5)
	require.Error(t, err)
	assert.Equal(t, "must be at most 5 characters", apperrors.ToDomainError(err).Details["name"])

	err = ValidateLength("name", "     ", 3, 5)
	require.Error(t, err)
	assert.Equal(t, blankMessage, apperrors.ToDomainError(err).Details["name"])
}

func TestValidateLengthIgnoresSurroundingWhitespace(t *testing.T) {
	err := ValidateLength("full_name", "  J  ", FullNameMin, FullNameMax)
	require.Error(t, err)
	assert.Equal(t, "must be at least 2 characters", apperrors.ToDomainError(err).Details["full_name"])

	require.Error(t, ValidateLength("description", "   short    ", DescriptionMin, DescriptionMax))
	require.NoError(t, ValidateLength("name", "  abc  ", 3, 3))
}

func TestValidateLengthCountsCodePoints(t *testing.T) {
	// five code points, seven bytes
	require.NoError(t, ValidateLength("name", "ñandú", 3, 5))
	require.NoError(t, ValidateLength("description", strings.Repeat("é", DescriptionMax), DescriptionMin, DescriptionMax))
	require.Error(t, ValidateLength("description", strings.Repeat("é", DescriptionMax+1), DescriptionMin, DescriptionMax))
}

func TestValidateRoleDepartment(t *testing.T) {
	dept := "Sanitation"
	short := "S"

	require.NoError(t, ValidateRoleDepartment(domain.RoleUser, nil))
	require.NoError(t, ValidateRoleDepartment(domain.RoleAdmin, nil))
	require.NoError(t, ValidateRoleDepartment(domain.RoleDepartmentManager, &dept))

	blank := "   "
	require.NoError(t, ValidateRoleDepartment(domain.RoleUser, &blank))
	require.Error(t, ValidateRoleDepartment(domain.RoleDepartmentManager, &blank))

	for name, tc := range map[string]struct {
		role domain.Role
		dept *string
	}{
		"manager without department": {domain.RoleDepartmentManager, nil},
		"manager with short name":    {domain.RoleDepartmentManager, &short},
		"user with department":       {domain.RoleUser, &dept},
		"admin with department":      {domain.RoleAdmin, &dept},
	} {
		t.Run(name, func(t *testing.T) {
			err := ValidateRoleDepartment(tc.role, tc.dept)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

type sampleInput struct {
	Phone    string  `json:"phone_number" validate:"required,in_phone"`
	Email    string  `json:"email" validate:"required,email"`
	FullName string  `json:"full_name" validate:"notblank,min=2,max=255"`
	Nickname *string `json:"nickname" validate:"omitempty,min=3"`
}

func TestStructReportsFieldsByJSONName(t *testing.T) {
	err := Struct(sampleInput{Phone: "12345", Email: "nope", FullName: "J"})
	require.Error(t, err)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Equal(t, phoneFormatMessage, de.Details["phone_number"])
	assert.Equal(t, emailFormatMessage, de.Details["email"])
	assert.Equal(t, "must be at least 2 characters", de.Details["full_name"])
	assert.NotContains(t, de.Details, "nickname")
}

func TestStructAcceptsValidInput(t *testing.T) {
	nick := "Johnny"
	require.NoError(t, Struct(sampleInput{
		Phone:    "+919876543210",
		Email:    "john@example.com",
		FullName: "John Doe",
		Nickname: &nick,
	}))
}
