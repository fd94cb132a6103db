package reminders

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"medisafe-backend/internal/shared/telemetry"
)

var (
	// ErrNotFound indicates an unknown reminder ID for the user.
	ErrNotFound = errors.New("reminder not found")

	// ErrInvalidInput indicates missing reminder fields.
	ErrInvalidInput = errors.New("invalid reminder")
)

// Store keeps reminders in memory with a gob snapshot on disk. The cache
// holds one []Reminder entry per user and never expires; the snapshot is
// rewritten after every mutation.
type Store struct {
	mu    sync.Mutex
	cache *gocache.Cache
	path  string
}

// NewStore loads the snapshot at path if present. An empty path disables
// persistence.
func NewStore(path string) (*Store, error) {
	s := &Store{
		cache: gocache.New(gocache.NoExpiration, gocache.NoExpiration),
		path:  path,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns a user's reminders sorted by date then ID.
func (s *Store) List(userId string) []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]Reminder(nil), s.userReminders(userId)...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Create adds a reminder. IDs are one greater than the user's current
// maximum, matching how the original client assigned them.
func (s *Store) Create(userId string, r Reminder) (Reminder, error) {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Date) == "" {
		return Reminder{}, fmt.Errorf("%w: title and date are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.userReminders(userId)
	maxID := 0
	for _, existing := range rs {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	r.ID = maxID + 1
	r.Completed = false

	s.cache.Set(userId, append(rs, r), gocache.NoExpiration)
	s.flush()
	return r, nil
}

// Update replaces the mutable fields of a reminder.
func (s *Store) Update(userId string, id int, r Reminder) (Reminder, error) {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Date) == "" {
		return Reminder{}, fmt.Errorf("%w: title and date are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.userReminders(userId)
	for i := range rs {
		if rs[i].ID == id {
			rs[i].Title = r.Title
			rs[i].Date = r.Date
			rs[i].Notes = r.Notes
			rs[i].Completed = r.Completed
			s.cache.Set(userId, rs, gocache.NoExpiration)
			s.flush()
			return rs[i], nil
		}
	}
	return Reminder{}, ErrNotFound
}

// Toggle flips a reminder's completed flag.
func (s *Store) Toggle(userId string, id int) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.userReminders(userId)
	for i := range rs {
		if rs[i].ID == id {
			rs[i].Completed = !rs[i].Completed
			s.cache.Set(userId, rs, gocache.NoExpiration)
			s.flush()
			return rs[i], nil
		}
	}
	return Reminder{}, ErrNotFound
}

// Delete removes a reminder.
func (s *Store) Delete(userId string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.userReminders(userId)
	for i := range rs {
		if rs[i].ID == id {
			s.cache.Set(userId, append(rs[:i:i], rs[i+1:]...), gocache.NoExpiration)
			s.flush()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteAll removes every reminder for a user.
func (s *Store) DeleteAll(userId string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rs := s.userReminders(userId)
	if len(rs) == 0 {
		return 0
	}
	s.cache.Delete(userId)
	s.flush()
	return len(rs)
}

func (s *Store) userReminders(userId string) []Reminder {
	if v, ok := s.cache.Get(userId); ok {
		if rs, ok := v.([]Reminder); ok {
			return rs
		}
	}
	return nil
}

func (s *Store) load() error {
	if s.path == "" {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open reminders snapshot: %w", err)
	}
	defer f.Close()

	var snapshot map[string][]Reminder
	if err := gob.NewDecoder(f).Decode(&snapshot); err != nil {
		return fmt.Errorf("decode reminders snapshot: %w", err)
	}
	for userId, rs := range snapshot {
		s.cache.Set(userId, rs, gocache.NoExpiration)
	}
	return nil
}

// flush writes the snapshot via a temp file rename. Callers hold s.mu. A
// write failure is logged, not returned: the in-memory state is the truth
// until the next successful flush.
func (s *Store) flush() {
	if s.path == "" {
		return
	}

	snapshot := make(map[string][]Reminder)
	for userId, item := range s.cache.Items() {
		if rs, ok := item.Object.([]Reminder); ok && len(rs) > 0 {
			snapshot[userId] = rs
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		telemetry.Error("reminders.flush_failed", map[string]any{"error": err.Error()})
		return
	}
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		telemetry.Error("reminders.flush_failed", map[string]any{"error": err.Error()})
		return
	}
	if err := gob.NewEncoder(f).Encode(snapshot); err != nil {
		f.Close()
		os.Remove(tmp)
		telemetry.Error("reminders.flush_failed", map[string]any{"error": err.Error()})
		return
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		telemetry.Error("reminders.flush_failed", map[string]any{"error": err.Error()})
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		telemetry.Error("reminders.flush_failed", map[string]any{"error": err.Error()})
	}
}
