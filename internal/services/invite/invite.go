// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package invite issues and redeems single-use invitation codes.
package invite

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"regexp"
	"strings"
	"time"

	"imagegate/internal/apierr"
	"imagegate/internal/models"
	"imagegate/internal/repository"
)

// CodeAlphabet excludes the visually ambiguous I, O, 0 and 1.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed length of an invitation code.
const CodeLength = 8

var codeRegexp = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{8}$`)

// Mailer delivers invitation codes. The email service implements it; tests
// substitute their own.
type Mailer interface {
	SendInvitation(ctx context.Context, toEmail, code string) error
}

// Service manages the invitation code lifecycle.
type Service struct {
	repo   *repository.Repository
	mailer Mailer
	logger *slog.Logger
}

// NewService creates a new invitation service. mailer may be nil when no
// SMTP is configured; codes are then only returned, never emailed.
func NewService(repo *repository.Repository, mailer Mailer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mailer: mailer, logger: logger}
}

// NormalizeCode strips whitespace and dashes and uppercases, so users can
// paste codes like "abcd-efgh".
func NormalizeCode(code string) string {
	code = strings.ReplaceAll(code, "-", "")
	code = strings.Join(strings.Fields(code), "")
	return strings.ToUpper(code)
}

// IsValidCode reports whether code (already normalized) has the required
// shape: exactly eight characters from the code alphabet.
func IsValidCode(code string) bool {
	return codeRegexp.MatchString(code)
}

// GenerateCode produces a random code from the alphabet using crypto/rand.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	var b strings.Builder
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating invitation code: %w", err)
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Create issues a new invitation code. expiresIn of zero means the code
// never expires. When toEmail is set and a mailer is configured, the code is
// also sent by mail; a delivery failure is logged but does not void the code.
func (s *Service) Create(ctx context.Context, createdBy int64, expiresIn time.Duration, toEmail string) (*models.InvitationCode, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if expiresIn > 0 {
		t := time.Now().UTC().Add(expiresIn)
		expiresAt = &t
	}

	inv, err := s.repo.CreateInvitationCode(ctx, code, createdBy, expiresAt)
	if err != nil {
		return nil, err
	}

	if toEmail != "" && s.mailer != nil {
		if err := s.mailer.SendInvitation(ctx, toEmail, inv.Code); err != nil {
			s.logger.Error("sending invitation mail failed", "to", toEmail, "error", err)
		}
	}

	return inv, nil
}

// Redeem validates and atomically redeems a code for the given user.
// Validation happens before any storage access; the at-most-once guarantee
// comes from the repository's conditional update, so concurrent attempts on
// the same code can never both succeed. The winner's authorization grant
// rides in the same transaction as the redemption, so a failed grant rolls
// the code back instead of burning it.
func (s *Service) Redeem(ctx context.Context, userID int64, code string) error {
	code = NormalizeCode(code)
	if !IsValidCode(code) {
		return apierr.New(http.StatusBadRequest, "Invalid invitation code format")
	}

	won, err := s.repo.RedeemInvitationCode(ctx, code, userID)
	if err != nil {
		return err
	}
	if won {
		return nil
	}

	// Lost the redemption; look up the code to say why.
	inv, err := s.repo.GetInvitationCode(ctx, code)
	if err != nil {
		return apierr.New(http.StatusNotFound, "Invitation code not found")
	}
	if inv.Redeemed() {
		return apierr.New(http.StatusConflict, "Invitation code has already been used")
	}
	if inv.Expired(time.Now().UTC()) {
		return apierr.New(http.StatusGone, "Invitation code has expired")
	}
	return apierr.New(http.StatusConflict, "Invitation code could not be redeemed")
}

// List returns codes issued by the given admin.
func (s *Service) List(ctx context.Context, createdBy int64) ([]models.InvitationCode, error) {
	return s.repo.ListInvitationCodes(ctx, createdBy)
}
