package account

import (
	"context"
	"errors"
	"strings"

	"medisafe-backend/internal/documents"
	"medisafe-backend/internal/reminders"
)

// Service handles account-scoped operations: guest migration and full data
// deletion.
type Service struct {
	Docs      *documents.Service
	Reminders *reminders.Store
}

// ClaimResult reports what a guest migration moved.
type ClaimResult struct {
	MigratedDocuments int `json:"migratedDocuments"`
}

// DeleteResult reports what a data deletion removed.
type DeleteResult struct {
	DeletedDocuments int `json:"deletedDocuments"`
	DeletedReminders int `json:"deletedReminders"`
}

// NewService constructs an account service.
func NewService(docs *documents.Service, rem *reminders.Store) *Service {
	return &Service{Docs: docs, Reminders: rem}
}

// ClaimGuest reassigns a guest identity's documents and files to an
// authenticated user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	moved, err := s.Docs.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: moved}, nil
}

// DeleteAllData removes every document, file, and reminder for a user.
func (s *Service) DeleteAllData(ctx context.Context, userID string) (DeleteResult, error) {
	if strings.TrimSpace(userID) == "" {
		return DeleteResult{}, errors.New("userID is required")
	}
	docCount, err := s.Docs.DeleteAllForUser(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}
	remCount := 0
	if s.Reminders != nil {
		remCount = s.Reminders.DeleteAll(userID)
	}
	return DeleteResult{DeletedDocuments: docCount, DeletedReminders: remCount}, nil
}
