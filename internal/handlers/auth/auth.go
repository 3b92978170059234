package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	"storefront/internal/hash"
	"storefront/internal/logging"
	"storefront/internal/mailer"
	mw "storefront/internal/middleware/auth"
	"storefront/internal/models"
	"storefront/internal/mykafka"
	"storefront/internal/repo"
	"storefront/internal/session"
	"storefront/internal/tokens"
)

const (
	verificationTokenBytes = 40
	refreshTokenBytes      = 40
	resetTokenBytes        = 70

	resetTokenTTL = 10 * time.Minute
)

type Handler struct {
	Users    *repo.UserRepo
	Tokens   *repo.TokenRepo
	Sessions *session.Manager
	Mailer   mailer.Mailer
	Producer *mykafka.Producer
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates the account unverified and emails the verification
// token. The very first account becomes admin.
func (h *Handler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide name, email and password!")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	count, err := h.Users.Count(ctx)
	if err != nil {
		return err
	}
	role := models.RoleUser
	if count == 0 {
		role = models.RoleAdmin
	}

	verificationToken, err := hash.RandomToken(verificationTokenBytes)
	if err != nil {
		return err
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Name:              req.Name,
		Email:             req.Email,
		PasswordHash:      passwordHash,
		Role:              role,
		VerificationToken: verificationToken,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierror.BadRequest("Duplicate value entered for email field, please choose another value")
		}
		return err
	}

	if err := h.Mailer.SendVerificationEmail(ctx, user.Name, user.Email, verificationToken); err != nil {
		logging.FromContext(ctx).Error("send verification email", "error", err, "user_id", user.ID)
	}

	h.publish(c, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"role":    user.Role,
	})

	// The token travels by email only, it is never in the response.
	return c.JSON(http.StatusCreated, echo.Map{
		"msg": "Success! please check your email to verify your account!",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req loginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return apierror.BadRequest("Please provide email and password!")
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.Unauthenticated("Please provide a correct email and password!")
		}
		return err
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return apierror.Unauthenticated("Please provide a correct email and password!")
	}

	if !user.IsVerified {
		return apierror.Unauthenticated("Account is not verified, please verify your account!")
	}

	tokenUser := tokens.UserClaims{UserID: user.ID, Name: user.Name, Role: user.Role}

	var refreshValue string
	existing, err := h.Tokens.FindByUser(ctx, user.ID)
	switch {
	case err == nil:
		// A second login reuses the session record instead of piling
		// up new ones.
		if !existing.IsValid {
			return apierror.Unauthenticated("Invalid Credentials!")
		}
		refreshValue = existing.Token
	case errors.Is(err, gorm.ErrRecordNotFound):
		refreshValue, err = hash.RandomToken(refreshTokenBytes)
		if err != nil {
			return err
		}
		record, err := h.Tokens.Create(ctx, user.ID, refreshValue, c.RealIP(), c.Request().UserAgent())
		if err != nil {
			return err
		}
		refreshValue = record.Token
	default:
		return err
	}

	if err := h.Sessions.Issue(c, tokenUser, refreshValue); err != nil {
		return err
	}

	h.publish(c, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"user": tokenUser})
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := mw.Identity(c)
	if !ok {
		return apierror.Unauthenticated("Authentication invalid")
	}

	if err := h.Tokens.DeleteByUser(ctx, user.UserID); err != nil {
		return err
	}
	h.Sessions.Clear(c)

	h.publish(c, mykafka.TopicUserEvents, user.UserID, map[string]any{
		"type":    "user_logged_out",
		"user_id": user.UserID,
	})

	return c.JSON(http.StatusOK, echo.Map{"msg": "User logged out!"})
}

func (h *Handler) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	candidate := c.QueryParam("verificationToken")
	email := c.QueryParam("email")

	user, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.Unauthenticated("Verification failed!")
		}
		return err
	}

	if candidate == "" || user.VerificationToken != candidate {
		return apierror.Unauthenticated("Verification failed!")
	}

	now := time.Now()
	user.IsVerified = true
	user.Verified = &now
	user.VerificationToken = ""
	if err := h.Users.Save(ctx, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Email verified!"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword answers identically whether or not the account exists.
func (h *Handler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return apierror.BadRequest("Please provide a valid email!")
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if user != nil {
		rawToken, err := hash.RandomToken(resetTokenBytes)
		if err != nil {
			return err
		}

		if err := h.Mailer.SendResetPasswordEmail(ctx, user.Name, user.Email, rawToken); err != nil {
			logging.FromContext(ctx).Error("send reset password email", "error", err, "user_id", user.ID)
		}

		expires := time.Now().Add(resetTokenTTL)
		user.PasswordToken = hash.Sha256Hex(rawToken)
		user.PasswordTokenExpiresAt = &expires
		if err := h.Users.Save(ctx, user); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg": "Please check your email to reset your password!",
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPassword silently no-ops on a wrong or expired token and still
// reports success, so callers can't probe which emails exist.
func (h *Handler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide all values!")
	}
	// A missing token is a 403 while missing email or password is a
	// 400; both responses are kept as-is for compatibility.
	if req.Token == "" {
		return apierror.Unauthorized("Please provide all values!")
	}
	if req.Email == "" || req.Password == "" {
		return apierror.BadRequest("Please provide all values!")
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if user != nil && user.PasswordToken != "" && user.PasswordTokenExpiresAt != nil {
		tokenMatches := user.PasswordToken == hash.Sha256Hex(req.Token)
		tokenFresh := time.Now().Before(*user.PasswordTokenExpiresAt)
		if tokenMatches && tokenFresh {
			passwordHash, err := hash.HashPassword(req.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = passwordHash
			user.PasswordToken = ""
			user.PasswordTokenExpiresAt = nil
			if err := h.Users.Save(ctx, user); err != nil {
				return err
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "resetPassword"})
}

func (h *Handler) publish(c echo.Context, topic string, key uint, event map[string]any) {
	ctx := c.Request().Context()
	if err := h.Producer.PublishEvent(ctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish", "topic", topic, "error", err)
	}
}
