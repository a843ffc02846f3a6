package models

import "time"

// IncomingPost is the raw record of an inbound POST, stored before the body
// is parsed so that malformed requests are kept too.
type IncomingPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RequestID string    `json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
	Fullpath  string    `json:"fullpath"`
	Referer   string    `json:"referer"`
	RawBody   string    `json:"raw_body"`
}
