package manager

import (
	"context"

	"vigil/internal/model"
	"vigil/internal/notify"
)

// VerifyAdmin compares a submitted passcode against the stored admin
// passcode. Plaintext comparison.
func (s *Service) VerifyAdmin(ctx context.Context, password string) (bool, error) {
	cfg, err := s.store.GetAdminConfig(ctx)
	if err != nil {
		return false, err
	}
	return password == cfg.Password, nil
}

// AdminConfig returns the current admin singleton (defaults applied).
func (s *Service) AdminConfig(ctx context.Context) (*model.AdminConfig, error) {
	return s.store.GetAdminConfig(ctx)
}

// MessagingConfig returns the outbound destination singleton.
func (s *Service) MessagingConfig(ctx context.Context) (*model.MessagingConfig, error) {
	return s.store.GetMessagingConfig(ctx)
}

// SetNumber saves a new destination number and deterministically rewrites
// the admin passcode from it, in one write. Returns the new passcode so the
// caller can show it to the admin.
func (s *Service) SetNumber(ctx context.Context, number string) (string, error) {
	if err := notify.ValidateNumber(number); err != nil {
		return "", err
	}

	current, err := s.store.GetAdminConfig(ctx)
	if err != nil {
		return "", err
	}

	newPassword := model.DeriveAdminPassword(number)
	admin := &model.AdminConfig{
		Password:              newPassword,
		UserCanDeleteBookings: current.UserCanDeleteBookings,
	}
	msg := &model.MessagingConfig{Number: number}
	if err := s.store.SaveMessagingConfig(ctx, msg, admin); err != nil {
		return "", err
	}

	s.logger.Info().Str("number", number).Msg("destination number updated")
	return newPassword, nil
}

// SetUserCanDeleteBookings toggles whether members may free their own
// bookings with the slot passcode.
func (s *Service) SetUserCanDeleteBookings(ctx context.Context, allowed bool) error {
	cfg, err := s.store.GetAdminConfig(ctx)
	if err != nil {
		return err
	}
	cfg.UserCanDeleteBookings = allowed
	if err := s.store.SaveAdminConfig(ctx, cfg); err != nil {
		return err
	}
	s.logger.Info().Bool("allowed", allowed).Msg("member delete toggle updated")
	return nil
}
