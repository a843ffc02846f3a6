package repositories

import (
	"errors"
	"fmt"

	"lifejournal/internal/models"

	"gorm.io/gorm"
)

// GORMEntryRepository is a GORM implementation of EntryRepository.
type GORMEntryRepository struct {
	db *gorm.DB
}

// NewGORMEntryRepository creates a new instance of GORMEntryRepository.
func NewGORMEntryRepository(db *gorm.DB) *GORMEntryRepository {
	return &GORMEntryRepository{
		db: db,
	}
}

// GetAll returns every entry ordered by owning user.
func (r *GORMEntryRepository) GetAll() ([]models.Entry, error) {
	entries := []models.Entry{}
	if err := r.db.Order("user_id ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get all entries: %w", err)
	}
	return entries, nil
}

// GetByUserID returns a user's entries in insertion order.
func (r *GORMEntryRepository) GetByUserID(userID uint) ([]models.Entry, error) {
	entries := []models.Entry{}
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get entries for user %d: %w", userID, err)
	}
	return entries, nil
}

// GetBySignature retrieves a single entry by its signature.
func (r *GORMEntryRepository) GetBySignature(signature string) (*models.Entry, error) {
	var entry models.Entry
	if err := r.db.First(&entry, "signature = ?", signature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("entry %s: %w", signature, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get entry %s: %w", signature, err)
	}
	return &entry, nil
}

// ExistsBySignature reports whether any entry already uses signature.
func (r *GORMEntryRepository) ExistsBySignature(signature string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Entry{}).Where("signature = ?", signature).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check signature %s: %w", signature, err)
	}
	return count > 0, nil
}

// Create inserts a new entry.
func (r *GORMEntryRepository) Create(entry *models.Entry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// UpdateSubmission writes the body and submitted_at of an existing entry.
// No other column is touched.
func (r *GORMEntryRepository) UpdateSubmission(entry *models.Entry) error {
	res := r.db.Model(&models.Entry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"body":         entry.Body,
			"submitted_at": entry.SubmittedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.Signature, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entry %s not updated: %w", entry.Signature, ErrNotFound)
	}
	return nil
}
