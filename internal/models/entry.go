package models

import "time"

// Entry is one diary record for a user and a calendar day. It is created
// empty when a reminder goes out and filled in when the user replies.
type Entry struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Signature   string     `json:"signature" gorm:"not null"`
	Body        string     `json:"body" gorm:"not null;default:''"`
	CreatedAt   time.Time  `json:"created_at"`
	ForDate     Date       `json:"for_date" gorm:"type:date;not null"`
	SubmittedAt *time.Time `json:"submitted_at"`
	UserID      uint       `json:"user_id" gorm:"not null"`
}

// IsSubmitted reports whether the user has written the entry.
func (e *Entry) IsSubmitted() bool {
	return e.SubmittedAt != nil
}
