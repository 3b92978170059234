package mailer

import (
	"context"
	"fmt"
	"net/url"
)

// Mailer is the email collaborator. Handlers only depend on this
// interface; tests substitute a recording implementation.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, name, email, verificationToken string) error
	SendResetPasswordEmail(ctx context.Context, name, email, resetToken string) error
}

func verificationBody(origin, name, email, token string) (subject, html string) {
	link := fmt.Sprintf(
		"%s/api/v1/auth/verify-email?verificationToken=%s&email=%s",
		origin, url.QueryEscape(token), url.QueryEscape(email),
	)
	subject = "Email Confirmation"
	html = fmt.Sprintf(
		`<h4>Hello, %s</h4><p>Please confirm your email by clicking the following link: <a href="%s">Verify Email</a></p>`,
		name, link,
	)
	return subject, html
}

func resetPasswordBody(origin, name, email, token string) (subject, html string) {
	link := fmt.Sprintf(
		"%s/user/reset-password?token=%s&email=%s",
		origin, url.QueryEscape(token), url.QueryEscape(email),
	)
	subject = "Reset Password"
	html = fmt.Sprintf(
		`<h4>Hello, %s</h4><p>Please reset your password by clicking the following link: <a href="%s">Reset Password</a></p>`,
		name, link,
	)
	return subject, html
}
