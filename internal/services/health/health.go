package health

import (
	"context"
	"database/sql"
	"time"
)

// Service reports process and dependency health.
type Service struct {
	db          *sql.DB
	storeType   string
	llmProvider string
	startedAt   time.Time
}

// NewService constructs a health service. db may be nil when running on
// in-memory repositories.
func NewService(db *sql.DB, storeType, llmProvider string) *Service {
	return &Service{
		db:          db,
		storeType:   storeType,
		llmProvider: llmProvider,
		startedAt:   time.Now().UTC(),
	}
}

// Status returns a health payload including dependency state.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{
		"ok":            true,
		"uptimeSeconds": int(time.Since(s.startedAt).Seconds()),
		"objectStore":   s.storeType,
		"llmProvider":   s.llmProvider,
	}
	if s.db == nil {
		out["database"] = "memory"
		return out
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		out["ok"] = false
		out["database"] = "unreachable"
	} else {
		out["database"] = "postgres"
	}
	return out
}
