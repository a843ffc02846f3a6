package services

import (
	"encoding/json"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"lifejournal/internal/config"
	"lifejournal/internal/logging"
	"lifejournal/internal/metrics"
	"lifejournal/internal/models"
)

// EntryUpdater stores the body of an entry found by signature.
type EntryUpdater interface {
	UpdateEntryBySignature(sig, body string, submittedAt time.Time) (*models.Entry, error)
}

// InboundReply is the part of an email provider's inbound webhook payload
// that matters for filling in an entry.
type InboundReply struct {
	Sender         string
	Recipient      string
	InReplyTo      string
	MessageHeaders string // JSON list of [name, value] pairs
	StrippedText   string
	BodyPlain      string
	Date           string
}

// Body prefers the quote-stripped text over the full plain body.
func (r InboundReply) Body() string {
	if r.StrippedText != "" {
		return r.StrippedText
	}
	return r.BodyPlain
}

// InReplyToHeader returns the In-Reply-To value, falling back to the raw
// message header list when the provider did not send it as its own field.
func (r InboundReply) InReplyToHeader() string {
	if r.InReplyTo != "" {
		return r.InReplyTo
	}
	if r.MessageHeaders == "" {
		return ""
	}
	var headers [][]string
	if err := json.Unmarshal([]byte(r.MessageHeaders), &headers); err != nil {
		return ""
	}
	for _, h := range headers {
		if len(h) == 2 && strings.EqualFold(h[0], "In-Reply-To") {
			return h[1]
		}
	}
	return ""
}

// SentAt parses the provider's Date field. It returns the zero time when
// the field is missing or unparseable.
func (r InboundReply) SentAt() time.Time {
	if r.Date == "" {
		return time.Time{}
	}
	t, err := mail.ParseDate(r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

var addressLocalPart = regexp.MustCompile(`<?\s*([^<>@\s]+)@[^>\s]*>?`)

// ExtractSignature returns the local part of the first address of the form
// "token@domain" or "<token@domain>" in s, or "" when there is none.
func ExtractSignature(s string) string {
	m := addressLocalPart.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// InboundService turns email replies into entry updates.
type InboundService struct {
	entries EntryUpdater
	source  string
}

// NewInboundService creates an InboundService. source selects where the
// signature is read from: config.SignatureFromRecipient or
// config.SignatureFromInReplyTo.
func NewInboundService(entries EntryUpdater, source string) *InboundService {
	if source != config.SignatureFromInReplyTo {
		source = config.SignatureFromRecipient
	}
	return &InboundService{
		entries: entries,
		source:  source,
	}
}

// SignatureFor extracts the entry signature from a reply.
func (s *InboundService) SignatureFor(reply InboundReply) string {
	if s.source == config.SignatureFromInReplyTo {
		return ExtractSignature(reply.InReplyToHeader())
	}
	return ExtractSignature(reply.Recipient)
}

// HandleReply stores the reply body on the entry it answers. The entry's
// submitted_at is the time the reply was processed; the provider's Date is
// only logged.
func (s *InboundService) HandleReply(reply InboundReply) (*models.Entry, error) {
	sig := s.SignatureFor(reply)
	body := reply.Body()

	logger := logging.Logger().With().
		Str("sender", reply.Sender).
		Str("recipient", reply.Recipient).
		Str("in_reply_to", reply.InReplyToHeader()).
		Str("signature", sig).
		Str("signature_source", s.source).
		Logger()

	event := logger.Info().Int("body_length", len(body))
	if sentAt := reply.SentAt(); !sentAt.IsZero() {
		event = event.Time("provider_date", sentAt)
	}
	event.Msg("inbound reply received")

	if sig == "" {
		logger.Error().Msg("no signature in inbound reply")
		return nil, badRequest("Missing parameter: signature")
	}

	entry, err := s.entries.UpdateEntryBySignature(sig, body, time.Time{})
	if err != nil {
		logger.Error().Err(err).Msg("entry was not updated from inbound reply")
		return nil, err
	}

	metrics.EntriesSubmitted.WithLabelValues(metrics.SourceEmail).Inc()
	return entry, nil
}
