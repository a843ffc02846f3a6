package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission sources for EntriesSubmitted.
const (
	SourceAPI   = "api"
	SourceEmail = "email"
)

// Reminder delivery results for RemindersSent.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

var (
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifejournal_users_created_total",
		Help: "Number of users created",
	})

	EntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifejournal_entries_created_total",
		Help: "Number of empty entries created for a reminder",
	})

	EntriesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifejournal_entries_submitted_total",
			Help: "Number of entry bodies written, by source",
		},
		[]string{"source"}, // api, email
	)

	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifejournal_reminders_sent_total",
			Help: "Reminder emails by delivery result",
		},
		[]string{"result"}, // sent, failed, skipped
	)

	IncomingPosts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lifejournal_incoming_posts_total",
		Help: "Number of inbound POST requests recorded in the audit log",
	})
)
