package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/internal/credential"
	"github.com/pedalpoint/bikerental-backend/internal/middleware"
	"github.com/pedalpoint/bikerental-backend/user"
)

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

func (a *API) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	role := user.Role(req.Role)
	if req.Role == "" {
		role = user.RoleCustomer
	}
	// Admin accounts are provisioned out of band, never self-registered.
	if !role.Valid() || role == user.RoleAdmin {
		fail(c, http.StatusBadRequest, "INVALID_ROLE", "Role must be customer or owner")
		return
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		serviceError(c, err, "failed to hash password")
		return
	}

	u := &user.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.users.Create(c, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			fail(c, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
			return
		}
		serviceError(c, err, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": toUserResponse(*u)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) loginHandler(c *gin.Context) {
	a.login(c, false)
}

// adminLoginHandler is the admin credential exchange. Same flow as login
// plus a role gate before the password check.
func (a *API) adminLoginHandler(c *gin.Context) {
	a.login(c, true)
}

func (a *API) login(c *gin.Context, adminOnly bool) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Please provide email and password")
		return
	}

	u, err := a.users.GetByEmail(c, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}
		serviceError(c, err, "failed to look up user")
		return
	}

	if adminOnly && u.Role != user.RoleAdmin {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied. Admin only.")
		return
	}

	if err := a.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, credential.ErrMismatch) {
			fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
			return
		}
		serviceError(c, err, "failed to compare password")
		return
	}

	tok, err := a.tokens.Issue(u)
	if err != nil {
		serviceError(c, err, "failed to issue token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   tok,
		"user":    toUserResponse(u),
	})
}

func (a *API) adminLogoutHandler(c *gin.Context) {
	// Tokens are stateless; logout is client-side discard.
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

func (a *API) checkSessionHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	u, err := a.users.GetByID(c, actor.ID.String())
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session user no longer exists")
			return
		}
		serviceError(c, err, "failed to load session user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Session valid", "user": toUserResponse(u)})
}
