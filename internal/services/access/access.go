// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package access decides who may do what: admin membership, allowlist
// authorization and IP blocking. Configuration is passed in explicitly so
// there is no ambient process state to go stale.
package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"imagegate/internal/apierr"
	"imagegate/internal/config"
	"imagegate/internal/models"
	"imagegate/internal/repository"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service evaluates access decisions against configuration and the store.
type Service struct {
	repo   *repository.Repository
	cfg    *config.AuthConfig
	logger *slog.Logger
}

// NewService creates a new access service.
func NewService(repo *repository.Repository, cfg *config.AuthConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

// AdminEmails returns the configured administrator emails: trimmed,
// lowercased, de-duplicated. Missing configuration yields an empty list,
// never an error; no admins is the safe default.
func (s *Service) AdminEmails() []string {
	if s.cfg == nil || s.cfg.AdminEmails == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	emails := []string{}
	for _, raw := range strings.Split(s.cfg.AdminEmails, ",") {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}
	return emails
}

// IsAdminEmail reports whether email is an administrator. The comparison is
// an exact string match after normalization; substrings never match.
func (s *Service) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, admin := range s.AdminEmails() {
		if admin == email {
			return true
		}
	}
	return false
}

// IsUserAuthorized reports whether the user holds an access grant.
func (s *Service) IsUserAuthorized(ctx context.Context, userID int64) (bool, error) {
	authorized, err := s.repo.IsUserAuthorized(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return authorized, nil
}

// AuthorizeViaAllowlist grants the user access if their email is on the
// allowlist. Returns whether a grant occurred. Calling it again for an
// already-authorized user is a no-op, not an error.
func (s *Service) AuthorizeViaAllowlist(ctx context.Context, userID int64) (bool, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	allowed, err := s.repo.IsEmailAllowed(ctx, user.Email)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}

	if err := s.repo.SetUserAuthorized(ctx, userID, true); err != nil {
		return false, err
	}
	return true, nil
}

// IsIPBlocked reports whether the address is blocked and why. It FAILS OPEN:
// a storage error is logged and reported as not blocked, so a transient
// fault can never lock everyone out. This is the inverse of the admin
// check's fail-closed default; keep both directions as they are.
func (s *Service) IsIPBlocked(ctx context.Context, ip string) (bool, string) {
	blocked, err := s.repo.GetBlockedIP(ctx, ip)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("ip block check failed, failing open", "ip", ip, "error", err)
		}
		return false, ""
	}
	return true, blocked.Reason.String
}

// AddAllowedEmail validates and adds an email to the allowlist. A duplicate
// is a recoverable 409, not a fault.
func (s *Service) AddAllowedEmail(ctx context.Context, email string, addedBy int64, note string) (*models.AllowedEmail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegexp.MatchString(email) {
		return nil, apierr.New(http.StatusBadRequest, "Invalid email address")
	}

	entry, err := s.repo.CreateAllowedEmail(ctx, email, addedBy, note)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, apierr.New(http.StatusConflict, "Email is already on the allowlist", err.Error())
		}
		return nil, err
	}
	return entry, nil
}

// RemoveAllowedEmail deletes an allowlist entry by ID.
func (s *Service) RemoveAllowedEmail(ctx context.Context, id int64) error {
	err := s.repo.DeleteAllowedEmail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierr.New(http.StatusNotFound, "Allowlist entry not found")
	}
	return err
}

// ListAllowedEmails returns every allowlist entry.
func (s *Service) ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error) {
	return s.repo.ListAllowedEmails(ctx)
}

// SearchAllowedEmails returns allowlist entries whose email contains the
// fragment. LIKE wildcards in the fragment match literally.
func (s *Service) SearchAllowedEmails(ctx context.Context, fragment string) ([]models.AllowedEmail, error) {
	return s.repo.SearchAllowedEmails(ctx, fragment)
}

// LoginHistory returns a page of the user's authentication events.
func (s *Service) LoginHistory(ctx context.Context, userID int64, page, pageSize int) ([]models.LoginHistoryEntry, int64, error) {
	return s.repo.GetLoginHistory(ctx, userID, page, pageSize)
}

// BlockIP records a blocked address.
func (s *Service) BlockIP(ctx context.Context, ip, reason string) error {
	return s.repo.BlockIP(ctx, ip, reason)
}

// UnblockIP removes a block.
func (s *Service) UnblockIP(ctx context.Context, ip string) error {
	err := s.repo.UnblockIP(ctx, ip)
	if errors.Is(err, repository.ErrNotFound) {
		return apierr.New(http.StatusNotFound, "IP is not blocked")
	}
	return err
}

// ListBlockedIPs returns every blocked address.
func (s *Service) ListBlockedIPs(ctx context.Context) ([]models.BlockedIP, error) {
	return s.repo.ListBlockedIPs(ctx)
}
