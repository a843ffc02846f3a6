package repositories

import (
	"fmt"

	"lifejournal/internal/models"

	"gorm.io/gorm"
)

// IncomingPostRepository stores the audit trail of inbound POST requests.
type IncomingPostRepository interface {
	Create(post *models.IncomingPost) error
	GetByRequestID(requestID string) (*models.IncomingPost, error)
}

// GORMIncomingPostRepository is a GORM implementation of IncomingPostRepository.
type GORMIncomingPostRepository struct {
	db *gorm.DB
}

// NewGORMIncomingPostRepository creates a new instance of GORMIncomingPostRepository.
func NewGORMIncomingPostRepository(db *gorm.DB) *GORMIncomingPostRepository {
	return &GORMIncomingPostRepository{
		db: db,
	}
}

// Create appends a post to the audit trail.
func (r *GORMIncomingPostRepository) Create(post *models.IncomingPost) error {
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("failed to record incoming post: %w", err)
	}
	return nil
}

// GetByRequestID finds the audit row written for a request.
func (r *GORMIncomingPostRepository) GetByRequestID(requestID string) (*models.IncomingPost, error) {
	var post models.IncomingPost
	res := r.db.Where("request_id = ?", requestID).Limit(1).Find(&post)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get incoming post %s: %w", requestID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("incoming post %s: %w", requestID, ErrNotFound)
	}
	return &post, nil
}
