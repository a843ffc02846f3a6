package repositories

import "lifejournal/internal/models"

// EntryRepository defines the interface for entry data access.
type EntryRepository interface {
	GetAll() ([]models.Entry, error)
	GetByUserID(userID uint) ([]models.Entry, error)
	GetBySignature(signature string) (*models.Entry, error)
	ExistsBySignature(signature string) (bool, error)
	Create(entry *models.Entry) error
	UpdateSubmission(entry *models.Entry) error
}
