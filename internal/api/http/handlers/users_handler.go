package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/service"
)

// UsersHandler exposes user registration and profile endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Register handles POST /users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Register(c.UserContext(), service.RegisterUserInput{
		PhoneNumber:        req.PhoneNumber,
		FullName:           req.FullName,
		Email:              req.Email,
		ResidentialAddress: req.ResidentialAddress,
		Role:               req.Role,
		Department:         req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, err := parseIntQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		return err
	}
	in := service.UserListInput{Role: c.Query("role"), Limit: limit, Offset: offset}
	if dept := c.Query("department"); dept != "" {
		in.Department = &dept
	}

	users, err := h.users.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateProfile handles PATCH /users/:id.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), id, service.UpdateProfileInput{
		PhoneNumber:        req.PhoneNumber,
		FullName:           req.FullName,
		Email:              req.Email,
		ResidentialAddress: req.ResidentialAddress,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateRole handles PATCH /users/:id/role.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateRole(c.UserContext(), id, service.UpdateRoleInput{
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 user.ID,
		PhoneNumber:        user.PhoneNumber,
		FullName:           user.FullName,
		Email:              user.Email,
		ResidentialAddress: user.ResidentialAddress,
		Role:               user.Role,
		Department:         user.Department,
		IsVerified:         user.IsVerified,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}
