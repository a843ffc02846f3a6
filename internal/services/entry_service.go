package services

import (
	"errors"
	"time"

	"lifejournal/internal/logging"
	"lifejournal/internal/metrics"
	"lifejournal/internal/models"
	"lifejournal/internal/repositories"
	"lifejournal/internal/signature"
	"lifejournal/pkg/rabbitmq"
)

// EventPublisher announces entry lifecycle events to other systems.
type EventPublisher interface {
	PublishEntryEvent(event string, data map[string]interface{}) error
}

// EntryService handles business logic related to journal entries.
type EntryService struct {
	entryRepo   repositories.EntryRepository
	userRepo    repositories.UserRepository
	generator   signature.Generator
	reminders   ReminderSender
	publisher   EventPublisher // optional
	maxAttempts int
	now         func() time.Time
}

// EntryOption customises an EntryService.
type EntryOption func(*EntryService)

// WithPublisher sets the event publisher.
func WithPublisher(p EventPublisher) EntryOption {
	return func(s *EntryService) { s.publisher = p }
}

// WithSignatureAttempts bounds how many signatures are tried before giving
// up on a collision.
func WithSignatureAttempts(n int) EntryOption {
	return func(s *EntryService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EntryOption {
	return func(s *EntryService) { s.now = now }
}

// NewEntryService creates a new EntryService.
func NewEntryService(entryRepo repositories.EntryRepository, userRepo repositories.UserRepository, generator signature.Generator, reminders ReminderSender, opts ...EntryOption) *EntryService {
	s := &EntryService{
		entryRepo:   entryRepo,
		userRepo:    userRepo,
		generator:   generator,
		reminders:   reminders,
		maxAttempts: 5,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEntry creates an empty entry for the user registered under email
// and sends them a reminder. forDate is "YYYY-MM-DD" or empty for today.
func (s *EntryService) CreateEntry(email, forDate string) (*models.Entry, error) {
	if email == "" {
		logging.Error().Msg("No user email address found")
		return nil, badRequest("No user email address found")
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logging.Error().Str("email", email).Msg("user not found")
			return nil, notFound(err, "User not found: %s", email)
		}
		return nil, internal(err, "Could not look up user %s", email)
	}

	now := s.now()
	date := models.NewDate(now)
	if forDate != "" {
		date, err = models.ParseDate(forDate)
		if err != nil {
			return nil, badRequest("Invalid for_date %q, expected YYYY-MM-DD", forDate)
		}
	}

	sig, err := s.uniqueSignature()
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("signature", sig).Msg("signature generated")

	entry := &models.Entry{
		Signature: sig,
		CreatedAt: now,
		ForDate:   date,
		UserID:    user.ID,
	}
	if err := s.entryRepo.Create(entry); err != nil {
		return nil, internal(err, "Could not create entry for %s", email)
	}
	metrics.EntriesCreated.Inc()
	logging.Debug().Str("signature", sig).Uint("user_id", user.ID).Str("for_date", date.String()).Msg("entry saved")

	if err := s.reminders.SendReminder(user.EmailAddress, entry.Signature, entry.ForDate); err != nil {
		// The entry stays; it can still be filled in through the API.
		logging.Error().Err(err).Str("signature", sig).Str("email", user.EmailAddress).Msg("reminder email failed")
	}

	s.publish(rabbitmq.EventEntryCreated, entry)
	return entry, nil
}

// uniqueSignature draws signatures until one is unused.
func (s *EntryService) uniqueSignature() (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		sig := s.generator.Generate()
		taken, err := s.entryRepo.ExistsBySignature(sig)
		if err != nil {
			return "", internal(err, "Could not generate a signature")
		}
		if !taken {
			return sig, nil
		}
		logging.Warn().Str("signature", sig).Int("attempt", attempt).Msg("signature collision")
	}
	return "", internal(nil, "Could not generate a unique signature after %d attempts", s.maxAttempts)
}

// GetEntryBySignature returns the entry identified by sig.
func (s *EntryService) GetEntryBySignature(sig string) (*models.Entry, error) {
	if sig == "" {
		return nil, badRequest("Missing parameter: signature")
	}
	entry, err := s.entryRepo.GetBySignature(sig)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, "Entry %s not found", sig)
		}
		return nil, internal(err, "Could not retrieve entry %s", sig)
	}
	return entry, nil
}

// UpdateEntryBySignature stores the body of the entry identified by sig.
// A zero submittedAt means now. Concurrent updates are last write wins.
func (s *EntryService) UpdateEntryBySignature(sig, body string, submittedAt time.Time) (*models.Entry, error) {
	if sig == "" {
		logging.Error().Msg("signature missing")
		return nil, badRequest("Missing parameter: signature")
	}

	entry, err := s.entryRepo.GetBySignature(sig)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logging.Error().Str("signature", sig).Msg("entry not found")
			return nil, notFound(err, "Entry %s not found", sig)
		}
		return nil, internal(err, "Entry %s was not updated", sig)
	}

	if submittedAt.IsZero() {
		submittedAt = s.now()
	}
	entry.Body = body
	entry.SubmittedAt = &submittedAt

	logging.Debug().Str("signature", sig).Uint("entry_id", entry.ID).Msg("updating entry")
	if err := s.entryRepo.UpdateSubmission(entry); err != nil {
		logging.Error().Err(err).Str("signature", sig).Msg("entry was not updated")
		return nil, internal(err, "Entry %s was not updated", sig)
	}

	s.publish(rabbitmq.EventEntrySubmitted, entry)
	return entry, nil
}

// ListEntriesForUser returns the entries of the user registered under email.
func (s *EntryService) ListEntriesForUser(email string) ([]models.Entry, error) {
	if email == "" {
		return nil, badRequest("No user email address found")
	}
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, "User not found: %s", email)
		}
		return nil, internal(err, "Could not look up user %s", email)
	}

	entries, err := s.entryRepo.GetByUserID(user.ID)
	if err != nil {
		return nil, internal(err, "Could not retrieve entries for %s", email)
	}
	return entries, nil
}

// ListAllEntries returns every entry ordered by owning user.
func (s *EntryService) ListAllEntries() ([]models.Entry, error) {
	entries, err := s.entryRepo.GetAll()
	if err != nil {
		return nil, internal(err, "Could not retrieve entries")
	}
	return entries, nil
}

func (s *EntryService) publish(event string, entry *models.Entry) {
	if s.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"entry_id":  entry.ID,
		"signature": entry.Signature,
		"user_id":   entry.UserID,
		"for_date":  entry.ForDate.String(),
	}
	if entry.SubmittedAt != nil {
		data["submitted_at"] = entry.SubmittedAt.UTC().Format(time.RFC3339)
	}
	if err := s.publisher.PublishEntryEvent(event, data); err != nil {
		logging.Warn().Err(err).Str("event", event).Str("signature", entry.Signature).Msg("failed to publish entry event")
	}
}
