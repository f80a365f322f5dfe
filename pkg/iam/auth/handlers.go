package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/linearflow/linearflow/pkg/errx"
	"github.com/linearflow/linearflow/pkg/iam/user"
	"github.com/linearflow/linearflow/pkg/kernel"
)

// PasswordService hashes and verifies user passwords
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// AuthHandlers provides the register/login/me HTTP surface
type AuthHandlers struct {
	userRepo  user.UserRepository
	passwords PasswordService
	tokens    TokenService
}

// NewAuthHandlers creates the auth handlers
func NewAuthHandlers(userRepo user.UserRepository, passwords PasswordService, tokens TokenService) *AuthHandlers {
	return &AuthHandlers{
		userRepo:  userRepo,
		passwords: passwords,
		tokens:    tokens,
	}
}

// RegisterRequest - DTO for account creation
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
}

// LoginRequest - DTO for signing in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse - token plus the signed-in user
type SessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *user.User `json:"user"`
}

// Register creates an account and signs the user in
// POST /auth/register
func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	email := kernel.Email(req.Email).Normalized()
	if !email.IsValid() {
		return user.ErrInvalidEmail().WithDetail("email", req.Email)
	}
	if len(req.Password) < 8 {
		return ErrInvalidRequest().WithDetail("password", "must be at least 8 characters")
	}

	exists, err := h.userRepo.ExistsByEmail(c.Context(), email)
	if err != nil {
		return errx.Wrap(err, "failed to check existing user", errx.TypeInternal)
	}
	if exists {
		return user.ErrUserAlreadyExists().WithDetail("email", string(email))
	}

	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		return err
	}

	now := time.Now()
	newUser := &user.User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userRepo.Create(c.Context(), newUser); err != nil {
		return err
	}

	return h.session(c, newUser, fiber.StatusCreated)
}

// Login verifies credentials and issues a token
// POST /auth/login
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidRequest().WithDetail("parse_error", err.Error())
	}

	u, err := h.userRepo.FindByEmail(c.Context(), kernel.Email(req.Email).Normalized())
	if err != nil {
		// Unknown email and wrong password are indistinguishable
		return ErrInvalidCredentials()
	}

	if !h.passwords.Verify(u.PasswordHash, req.Password) {
		return ErrInvalidCredentials()
	}

	return h.session(c, u, fiber.StatusOK)
}

// Me returns the authenticated user's profile
// GET /auth/me
func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	authContext, ok := GetAuthContext(c)
	if !ok {
		return ErrMissingToken()
	}

	u, err := h.userRepo.FindByID(c.Context(), authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(u)
}

func (h *AuthHandlers) session(c *fiber.Ctx, u *user.User, status int) error {
	token, err := h.tokens.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return errx.Wrap(err, "failed to issue token", errx.TypeInternal)
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		return errx.Wrap(err, "failed to read back issued token", errx.TypeInternal)
	}

	return c.Status(status).JSON(SessionResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      u,
	})
}

// RegisterRoutes mounts the auth endpoints
func (h *AuthHandlers) RegisterRoutes(app *fiber.App, authMiddleware *TokenMiddleware) {
	grp := app.Group("/auth")

	grp.Post("/register", h.Register)
	grp.Post("/login", h.Login)
	grp.Get("/me", authMiddleware.Authenticate(), h.Me)
}
