package entity

import (
	"errors"
	"strings"
	"time"
)

// PhonePlaceholder is stored in the log when the submitter leaves phone empty.
const PhonePlaceholder = "N/A"

var ErrLogNotFound = errors.New("no contact submissions found")

// Submission is one contact-form payload. It only lives for the duration of a request.
type Submission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Lastname    string    `json:"lastname"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	SubjectCode string    `json:"subject"`
	Message     string    `json:"message"`
	ReceivedAt  time.Time `json:"received_at"`
}

func (s Submission) FullName() string {
	return strings.TrimSpace(s.Name + " " + s.Lastname)
}

func (s Submission) SubjectLabel() string {
	return SubjectLabel(s.SubjectCode)
}

// LogRow is a single line of the submission log. New rows always fill the
// LogHeader columns; rows read back may carry cells an operator added by hand.
type LogRow struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`

	// RawTimestamp holds the stored date cell when it could not be parsed.
	RawTimestamp string   `json:"raw_timestamp,omitempty"`
	Extra        []string `json:"extra,omitempty"`
}

// TimestampText renders the date cell, preferring the stored text when the
// timestamp could not be parsed.
func (r LogRow) TimestampText(layout string) string {
	if r.Timestamp.IsZero() && r.RawTimestamp != "" {
		return r.RawTimestamp
	}
	return r.Timestamp.Format(layout)
}

// NewLogRow builds the row for s, stamped with at truncated to the second.
func NewLogRow(s Submission, at time.Time) LogRow {
	phone := strings.TrimSpace(s.Phone)
	if phone == "" {
		phone = PhonePlaceholder
	}

	return LogRow{
		Timestamp: at.Truncate(time.Second),
		Name:      s.Name,
		Lastname:  s.Lastname,
		Email:     s.Email,
		Phone:     phone,
		Subject:   s.SubjectLabel(),
		Message:   s.Message,
	}
}

// LogHeader lists the column titles of the log, in order.
var LogHeader = []string{
	"Date & Time",
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Subject",
	"Message",
}
