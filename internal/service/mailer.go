package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mkrylov/accountd/internal/model"
	"github.com/mkrylov/accountd/internal/pkg/signer"
)

const verifyMailTemplate = `# Verify Email Address

Please click the link below to verify your email address.

[Verify Email Address](%s)

If you did not create an account, no further action is required. The link
expires in %d minutes.
`

const resetMailTemplate = `# Reset Password

You are receiving this email because we received a password reset request for
your account.

[Reset Password](%s)

This password reset link will expire in %d minutes. If you did not request a
password reset, no further action is required.
`

// Mailer composes the notification mails of the lifecycle. Bodies are
// markdown rendered to HTML before sending.
type Mailer struct {
	sender    EmailSender
	signer    *signer.Signer
	appURL    string
	verifyTTL time.Duration
	resetTTL  time.Duration
	md        goldmark.Markdown
}

func NewMailer(sender EmailSender, s *signer.Signer, appURL string, verifyTTL, resetTTL time.Duration) *Mailer {
	return &Mailer{
		sender:    sender,
		signer:    s,
		appURL:    strings.TrimRight(appURL, "/"),
		verifyTTL: verifyTTL,
		resetTTL:  resetTTL,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// EmailHash derives the value embedded in a verification link: the sha1 of
// the address at link-issue time. If the email changes before the link is
// used, verification fails safely.
func EmailHash(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

func (m *Mailer) SendVerification(ctx context.Context, user *model.User) error {
	path := fmt.Sprintf("/api/auth/verify-email/%s/%s", user.ID, EmailHash(user.Email))
	link := m.appURL + m.signer.Sign(path, time.Now().Add(m.verifyTTL))
	body, err := m.render(fmt.Sprintf(verifyMailTemplate, link, int(m.verifyTTL.Minutes())))
	if err != nil {
		return err
	}
	return m.sender.Send(user.Email, "Verify Email Address", body)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, user *model.User, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		m.appURL, token, url.QueryEscape(user.Email))
	body, err := m.render(fmt.Sprintf(resetMailTemplate, link, int(m.resetTTL.Minutes())))
	if err != nil {
		return err
	}
	return m.sender.Send(user.Email, "Reset Password Notification", body)
}

func (m *Mailer) render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
