package services_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lifejournal/internal/models"
	"lifejournal/internal/repositories"
	"lifejournal/internal/services"
	"lifejournal/internal/signature"
	"lifejournal/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 5, 21, 15, 0, 0, time.UTC)

type entryFixture struct {
	entries   *MockEntryRepository
	users     *MockUserRepository
	reminders *MockReminderSender
	publisher *MockPublisher
	service   *services.EntryService
}

func newEntryFixture(sigs ...string) *entryFixture {
	if len(sigs) == 0 {
		sigs = []string{"aB3dE6gH9k"}
	}
	f := &entryFixture{
		entries:   new(MockEntryRepository),
		users:     new(MockUserRepository),
		reminders: new(MockReminderSender),
		publisher: new(MockPublisher),
	}
	f.service = services.NewEntryService(f.entries, f.users, &sequenceGenerator{sigs: sigs}, f.reminders,
		services.WithPublisher(f.publisher),
		services.WithSignatureAttempts(3),
		services.WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func (f *entryFixture) assertExpectations(t *testing.T) {
	f.entries.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.reminders.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func userNotFound(email string) error {
	return fmt.Errorf("user with email %s: %w", email, repositories.ErrNotFound)
}

func TestEntryService_CreateEntry(t *testing.T) {
	f := newEntryFixture()
	user := &models.User{ID: 7, EmailAddress: "a@x.com"}
	today := models.NewDate(fixedNow)

	f.users.On("GetByEmail", "a@x.com").Return(user, nil).Once()
	f.entries.On("ExistsBySignature", "aB3dE6gH9k").Return(false, nil).Once()
	f.entries.On("Create", mock.MatchedBy(func(e *models.Entry) bool {
		return e.Signature == "aB3dE6gH9k" && e.UserID == 7 && e.Body == "" &&
			e.ForDate == today && e.CreatedAt.Equal(fixedNow) && e.SubmittedAt == nil
	})).Return(nil).Once()
	f.reminders.On("SendReminder", "a@x.com", "aB3dE6gH9k", today).Return(nil).Once()
	f.publisher.On("PublishEntryEvent", rabbitmq.EventEntryCreated, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["signature"] == "aB3dE6gH9k" && d["for_date"] == "2026-01-05"
	})).Return(nil).Once()

	entry, err := f.service.CreateEntry("a@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, "aB3dE6gH9k", entry.Signature)
	assert.True(t, signature.Valid(entry.Signature))
	assert.Equal(t, "2026-01-05", entry.ForDate.String())
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryWithForDate(t *testing.T) {
	f := newEntryFixture()
	user := &models.User{ID: 7, EmailAddress: "a@x.com"}
	want, _ := models.ParseDate("2025-12-24")

	f.users.On("GetByEmail", "a@x.com").Return(user, nil).Once()
	f.entries.On("ExistsBySignature", mock.Anything).Return(false, nil).Once()
	f.entries.On("Create", mock.AnythingOfType("*models.Entry")).Return(nil).Once()
	f.reminders.On("SendReminder", "a@x.com", "aB3dE6gH9k", want).Return(nil).Once()
	f.publisher.On("PublishEntryEvent", rabbitmq.EventEntryCreated, mock.Anything).Return(nil).Once()

	entry, err := f.service.CreateEntry("a@x.com", "2025-12-24")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-24", entry.ForDate.String())
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryUnknownUser(t *testing.T) {
	f := newEntryFixture()
	f.users.On("GetByEmail", "nobody@x.com").Return(nil, userNotFound("nobody@x.com")).Once()

	entry, err := f.service.CreateEntry("nobody@x.com", "")
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, services.ErrNotFound)
	f.entries.AssertNotCalled(t, "Create", mock.Anything)
	f.reminders.AssertNotCalled(t, "SendReminder", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryMalformedDate(t *testing.T) {
	f := newEntryFixture()
	f.users.On("GetByEmail", "a@x.com").Return(&models.User{ID: 7, EmailAddress: "a@x.com"}, nil).Once()

	entry, err := f.service.CreateEntry("a@x.com", "13/40/9999")
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, services.ErrBadRequest)
	assert.Contains(t, err.Error(), "13/40/9999")
	f.entries.AssertNotCalled(t, "Create", mock.Anything)
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryMissingEmail(t *testing.T) {
	f := newEntryFixture()
	_, err := f.service.CreateEntry("", "")
	assert.ErrorIs(t, err, services.ErrBadRequest)
	assert.Equal(t, "No user email address found", err.Error())
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything)
}

func TestEntryService_CreateEntryRetriesOnCollision(t *testing.T) {
	f := newEntryFixture("takenSig11", "freeSig222")
	f.users.On("GetByEmail", "a@x.com").Return(&models.User{ID: 7, EmailAddress: "a@x.com"}, nil).Once()
	f.entries.On("ExistsBySignature", "takenSig11").Return(true, nil).Once()
	f.entries.On("ExistsBySignature", "freeSig222").Return(false, nil).Once()
	f.entries.On("Create", mock.AnythingOfType("*models.Entry")).Return(nil).Once()
	f.reminders.On("SendReminder", "a@x.com", "freeSig222", mock.Anything).Return(nil).Once()
	f.publisher.On("PublishEntryEvent", mock.Anything, mock.Anything).Return(nil).Once()

	entry, err := f.service.CreateEntry("a@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, "freeSig222", entry.Signature)
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryGivesUpAfterMaxAttempts(t *testing.T) {
	f := newEntryFixture("takenSig11")
	f.users.On("GetByEmail", "a@x.com").Return(&models.User{ID: 7, EmailAddress: "a@x.com"}, nil).Once()
	f.entries.On("ExistsBySignature", "takenSig11").Return(true, nil).Times(3)

	_, err := f.service.CreateEntry("a@x.com", "")
	assert.ErrorIs(t, err, services.ErrInternal)
	f.entries.AssertNotCalled(t, "Create", mock.Anything)
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryKeepsEntryWhenReminderFails(t *testing.T) {
	f := newEntryFixture()
	f.users.On("GetByEmail", "a@x.com").Return(&models.User{ID: 7, EmailAddress: "a@x.com"}, nil).Once()
	f.entries.On("ExistsBySignature", mock.Anything).Return(false, nil).Once()
	f.entries.On("Create", mock.AnythingOfType("*models.Entry")).Return(nil).Once()
	f.reminders.On("SendReminder", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mailgun down")).Once()
	f.publisher.On("PublishEntryEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	entry, err := f.service.CreateEntry("a@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, "aB3dE6gH9k", entry.Signature)
	f.assertExpectations(t)
}

func TestEntryService_CreateEntryStoreFailure(t *testing.T) {
	f := newEntryFixture()
	f.users.On("GetByEmail", "a@x.com").Return(&models.User{ID: 7, EmailAddress: "a@x.com"}, nil).Once()
	f.entries.On("ExistsBySignature", mock.Anything).Return(false, nil).Once()
	f.entries.On("Create", mock.AnythingOfType("*models.Entry")).Return(errors.New("disk full")).Once()

	_, err := f.service.CreateEntry("a@x.com", "")
	assert.ErrorIs(t, err, services.ErrInternal)
	f.reminders.AssertNotCalled(t, "SendReminder", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEntryService_UpdateEntryBySignature(t *testing.T) {
	f := newEntryFixture()
	stored := &models.Entry{ID: 3, Signature: "aB3dE6gH9k", UserID: 7}

	f.entries.On("GetBySignature", "aB3dE6gH9k").Return(stored, nil).Twice()
	f.entries.On("UpdateSubmission", mock.MatchedBy(func(e *models.Entry) bool {
		return e.Body == "Had a good day" && e.SubmittedAt != nil
	})).Return(nil).Twice()
	f.publisher.On("PublishEntryEvent", rabbitmq.EventEntrySubmitted, mock.Anything).Return(nil).Twice()

	first, err := f.service.UpdateEntryBySignature("aB3dE6gH9k", "Had a good day", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "Had a good day", first.Body)
	require.NotNil(t, first.SubmittedAt)
	assert.True(t, fixedNow.Equal(*first.SubmittedAt))

	second, err := f.service.UpdateEntryBySignature("aB3dE6gH9k", "Had a good day", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, "aB3dE6gH9k", second.Signature)
	f.assertExpectations(t)
}

func TestEntryService_UpdateEntryBySignatureExplicitTime(t *testing.T) {
	f := newEntryFixture()
	at := time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC)
	f.entries.On("GetBySignature", "aB3dE6gH9k").Return(&models.Entry{ID: 3, Signature: "aB3dE6gH9k"}, nil).Once()
	f.entries.On("UpdateSubmission", mock.Anything).Return(nil).Once()
	f.publisher.On("PublishEntryEvent", mock.Anything, mock.Anything).Return(nil).Once()

	entry, err := f.service.UpdateEntryBySignature("aB3dE6gH9k", "late", at)
	require.NoError(t, err)
	assert.True(t, at.Equal(*entry.SubmittedAt))
}

func TestEntryService_UpdateEntryBySignatureErrors(t *testing.T) {
	f := newEntryFixture()

	_, err := f.service.UpdateEntryBySignature("", "body", time.Time{})
	assert.ErrorIs(t, err, services.ErrBadRequest)

	f.entries.On("GetBySignature", "ZZZZZZZZZZ").
		Return(nil, fmt.Errorf("entry ZZZZZZZZZZ: %w", repositories.ErrNotFound)).Once()
	_, err = f.service.UpdateEntryBySignature("ZZZZZZZZZZ", "body", time.Time{})
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.Equal(t, "Entry ZZZZZZZZZZ not found", err.Error())
	f.entries.AssertNotCalled(t, "UpdateSubmission", mock.Anything)

	f.entries.On("GetBySignature", "aB3dE6gH9k").Return(&models.Entry{ID: 3, Signature: "aB3dE6gH9k"}, nil).Once()
	f.entries.On("UpdateSubmission", mock.Anything).Return(errors.New("write failed")).Once()
	_, err = f.service.UpdateEntryBySignature("aB3dE6gH9k", "body", time.Time{})
	assert.ErrorIs(t, err, services.ErrInternal)
	assert.Equal(t, "Entry aB3dE6gH9k was not updated", err.Error())
	f.publisher.AssertNotCalled(t, "PublishEntryEvent", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestEntryService_ListEntriesForUser(t *testing.T) {
	f := newEntryFixture()
	entries := []models.Entry{{ID: 1, Signature: "aaaaaaaaa1", UserID: 7}}
	f.users.On("GetByEmail", "a@x.com").Return(&models.User{ID: 7, EmailAddress: "a@x.com"}, nil).Once()
	f.entries.On("GetByUserID", uint(7)).Return(entries, nil).Once()

	got, err := f.service.ListEntriesForUser("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	f.users.On("GetByEmail", "nobody@x.com").Return(nil, userNotFound("nobody@x.com")).Once()
	_, err = f.service.ListEntriesForUser("nobody@x.com")
	assert.ErrorIs(t, err, services.ErrNotFound)
	f.assertExpectations(t)
}

func TestEntryService_ListAllEntriesAndGetBySignature(t *testing.T) {
	f := newEntryFixture()
	entries := []models.Entry{{ID: 1, UserID: 1}, {ID: 2, UserID: 2}}
	f.entries.On("GetAll").Return(entries, nil).Once()
	got, err := f.service.ListAllEntries()
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	f.entries.On("GetBySignature", "aaaaaaaaa1").Return(&entries[0], nil).Once()
	entry, err := f.service.GetEntryBySignature("aaaaaaaaa1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), entry.ID)

	_, err = f.service.GetEntryBySignature("")
	assert.ErrorIs(t, err, services.ErrBadRequest)
	f.assertExpectations(t)
}

func TestEntryService_WithoutPublisher(t *testing.T) {
	entries := new(MockEntryRepository)
	service := services.NewEntryService(entries, new(MockUserRepository), signature.NewRandom(), new(MockReminderSender))

	entries.On("GetBySignature", "aB3dE6gH9k").Return(&models.Entry{ID: 3, Signature: "aB3dE6gH9k"}, nil).Once()
	entries.On("UpdateSubmission", mock.Anything).Return(nil).Once()

	entry, err := service.UpdateEntryBySignature("aB3dE6gH9k", "quiet", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "quiet", entry.Body)
	entries.AssertExpectations(t)
}
