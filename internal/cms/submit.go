package cms

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Messages shown when the CMS rejects a submission without a usable reason.
const (
	MsgContactFailed   = "Failed to send message"
	MsgSubscribeFailed = "Failed to subscribe"
)

// Validation message keys, resolved through the UI string bundle.
const (
	KeyNameRequired    = "form.error.name_required"
	KeyEmailRequired   = "form.error.email_required"
	KeyEmailInvalid    = "form.error.email_invalid"
	KeyMessageRequired = "form.error.message_required"
)

// ContactMessage is the contact form payload.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Normalize trims every field.
func (m ContactMessage) Normalize() ContactMessage {
	return ContactMessage{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Subject: strings.TrimSpace(m.Subject),
		Message: strings.TrimSpace(m.Message),
	}
}

// Validate checks the required fields and the email format.
func (m ContactMessage) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required.ErrorObject(validation.NewError("name_required", KeyNameRequired))),
		validation.Field(&m.Email,
			validation.Required.ErrorObject(validation.NewError("email_required", KeyEmailRequired)),
			is.EmailFormat.ErrorObject(validation.NewError("email_invalid", KeyEmailInvalid)),
		),
		validation.Field(&m.Message, validation.Required.ErrorObject(validation.NewError("message_required", KeyMessageRequired))),
	)
	return toValidationError(err)
}

// SendContact validates msg and posts it to /contact/. Invalid input returns a
// *ValidationError without any network request.
func (c *Client) SendContact(ctx context.Context, msg ContactMessage) error {
	msg = msg.Normalize()
	if err := msg.Validate(); err != nil {
		return err
	}
	if _, err := c.post(ctx, "contact", "/contact/", msg); err != nil {
		return &SubmitError{Message: MsgContactFailed, Err: err}
	}
	return nil
}

type subscription struct {
	Email string `json:"email"`
}

// ValidateEmail checks a newsletter address.
func ValidateEmail(email string) error {
	err := validation.Errors{
		"email": validation.Validate(strings.TrimSpace(email),
			validation.Required.ErrorObject(validation.NewError("email_required", KeyEmailRequired)),
			is.EmailFormat.ErrorObject(validation.NewError("email_invalid", KeyEmailInvalid)),
		),
	}.Filter()
	return toValidationError(err)
}

// Subscribe posts email to /newsletter/. A rejection carries the API's reason
// with DRF field errors flattened into a sentence.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if _, err := c.post(ctx, "newsletter", "/newsletter/", subscription{Email: email}); err != nil {
		msg := MsgSubscribeFailed
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			if flat := FlattenFieldErrors(reqErr.Body); flat != "" {
				msg = flat
			}
		}
		return &SubmitError{Message: msg, Err: err}
	}
	return nil
}

// FlattenFieldErrors renders a DRF error body such as {"email": ["taken."]}
// as plain text. Non-JSON bodies are returned trimmed.
func FlattenFieldErrors(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		var list []string
		if err := json.Unmarshal([]byte(body), &list); err == nil {
			return joinMessages(list)
		}
		return body
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var msgs []string
	for _, k := range keys {
		var list []string
		if err := json.Unmarshal(fields[k], &list); err != nil {
			var single string
			if err := json.Unmarshal(fields[k], &single); err != nil {
				continue
			}
			list = []string{single}
		}
		msgs = append(msgs, list...)
	}
	return joinMessages(msgs)
}

func joinMessages(msgs []string) string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if !strings.HasSuffix(m, ".") && !strings.HasSuffix(m, "!") && !strings.HasSuffix(m, "?") {
			m += "."
		}
		out = append(out, capitalize(m))
	}
	return strings.Join(out, " ")
}

func capitalize(s string) string {
	for i, r := range s {
		if r >= 'a' && r <= 'z' {
			return s[:i] + string(r-('a'-'A')) + s[i+1:]
		}
		return s
	}
	return s
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for name, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		var verr validation.Error
		if errors.As(fieldErr, &verr) {
			fields[name] = verr.Message()
			continue
		}
		fields[name] = fieldErr.Error()
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
