package models

import "time"

// User represents a journal writer. The email address is the lookup key but
// is not unique at the storage level.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EmailAddress string    `json:"email_address" gorm:"column:email_address;not null"`
	CreatedAt    time.Time `json:"created_at"`
}
