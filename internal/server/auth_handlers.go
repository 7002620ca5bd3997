package server

import (
	"momentum/internal/models"
	"momentum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) issue(c *fiber.Ctx, user *models.User) (*AuthResponse, error) {
	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// Register handles POST /api/auth/register
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Account details"
// @Success 201 {object} models.Envelope{data=AuthResponse}
// @Failure 400 {object} models.Envelope
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Register(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}

	resp, err := s.issue(c, user)
	if err != nil {
		return s.respondError(c, err)
	}
	return created(c, "User registered successfully", resp)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} models.Envelope{data=AuthResponse}
// @Failure 401 {object} models.Envelope
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Login(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}

	resp, err := s.issue(c, user)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Login successful", resp)
}

// GetProfile handles GET /api/auth/profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope{data=models.User}
// @Router /auth/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.users.Profile(c.UserContext(), userID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "", user)
}

// UpdateProfile handles PUT /api/auth/profile
// @Summary Update current user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserPatch true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.User}
// @Router /auth/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req models.UserPatch
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.UpdateProfile(c.UserContext(), userID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return respond(c, "Profile updated successfully", user)
}
