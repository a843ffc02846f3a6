package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"lifejournal/internal/logging"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BodyStatus tells how a request body was handled by bindBody.
type BodyStatus int

const (
	// BodyEmpty means the request carried no body.
	BodyEmpty BodyStatus = iota
	// BodyParsed means the body was decoded into the target struct.
	BodyParsed
	// BodyMalformed means the body could not be decoded and was ignored.
	BodyMalformed
)

func (s BodyStatus) String() string {
	switch s {
	case BodyEmpty:
		return "empty"
	case BodyParsed:
		return "parsed"
	case BodyMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("BodyStatus(%d)", int(s))
	}
}

// BindResult is the outcome of bindBody. Err is set only for BodyMalformed.
type BindResult struct {
	Status BodyStatus
	Err    error
}

var validate = validator.New()

// bindBody decodes the request body into a T. A body that cannot be decoded
// is not an error: the zero T is returned with BodyMalformed, and the
// caller's validation decides what is missing. JSON is assumed when no
// content type is sent; unknown JSON fields make the body malformed.
func bindBody[T any](c *fiber.Ctx) (T, BindResult) {
	var zero T

	raw := c.Body()
	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, BindResult{Status: BodyEmpty}
	}

	var out T
	var err error
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if ct == "" || strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		err = decodeStrictJSON(raw, &out)
	} else {
		err = c.BodyParser(&out)
	}

	if err != nil {
		logging.Warn().
			Err(err).
			Str("path", c.Path()).
			Str("content_type", ct).
			Msg("ignoring malformed request body")
		return zero, BindResult{Status: BodyMalformed, Err: err}
	}
	return out, BindResult{Status: BodyParsed}
}

func decodeStrictJSON(raw []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}

// validateInput runs struct validation and turns failures into one
// human-readable message.
func validateInput(in interface{}, bind BindResult) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var msgs []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	} else {
		msgs = append(msgs, err.Error())
	}
	if bind.Status == BodyMalformed {
		msgs = append([]string{"Malformed request body"}, msgs...)
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Request bodies.

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	EmailAddress string `json:"email_address" form:"email_address" validate:"required,email"`
}

// CreateEntryRequest is the body of POST /entries. A missing email and the
// for_date format are reported by the entry service.
type CreateEntryRequest struct {
	EmailAddress string `json:"email_address" form:"email_address" validate:"omitempty,email"`
	ForDate      string `json:"for_date" form:"for_date"`
}

// UpdateEntryRequest is the body of POST/PUT /entries/:signature. An empty
// body text is allowed; a missing entry_body field is not.
type UpdateEntryRequest struct {
	EntryBody *string `json:"entry_body" form:"entry_body" validate:"required"`
}
