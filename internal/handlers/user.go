package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	"storefront/internal/hash"
	mw "storefront/internal/middleware/auth"
	"storefront/internal/models"
	"storefront/internal/permissions"
	"storefront/internal/repo"
	"storefront/internal/session"
	"storefront/internal/tokens"
)

type UserHandler struct {
	Users    *repo.UserRepo
	Tokens   *repo.TokenRepo
	Sessions *session.Manager
}

// GetAllUsers lists regular accounts. Admin only, bound in the router.
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	users, err := h.Users.ListByRole(c.Request().Context(), models.RoleUser)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

func (h *UserHandler) GetSingleUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.Users.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("User not found!")
		}
		return err
	}

	identity, _ := mw.Identity(c)
	if err := permissions.Check(identity, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

func (h *UserHandler) ShowCurrentUser(c echo.Context) error {
	identity, _ := mw.Identity(c)
	return c.JSON(http.StatusOK, echo.Map{"user": identity})
}

type updateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUser changes name and email and re-issues the cookie pair so the
// embedded projection stays current.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateUserRequest
	if err := c.Bind(&req); err != nil || req.Name == "" || req.Email == "" {
		return apierror.BadRequest("Please provide the required values!")
	}

	identity, _ := mw.Identity(c)
	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		return err
	}

	user.Name = req.Name
	user.Email = req.Email
	if err := h.Users.Save(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierror.BadRequest("Duplicate value entered for email field, please choose another value")
		}
		return err
	}

	tokenUser := tokens.UserClaims{UserID: user.ID, Name: user.Name, Role: user.Role}

	var refreshValue string
	if record, err := h.Tokens.FindByUser(ctx, user.ID); err == nil {
		refreshValue = record.Token
	}
	if err := h.Sessions.Issue(c, tokenUser, refreshValue); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"user": tokenUser})
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *UserHandler) UpdateUserPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		return apierror.BadRequest("Please provide both oldPassword and newPassword!")
	}

	identity, _ := mw.Identity(c)
	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		return err
	}

	if !hash.CheckPassword(user.PasswordHash, req.OldPassword) {
		return apierror.Unauthenticated("Invalid Credentials!")
	}

	passwordHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Password updated!"})
}
