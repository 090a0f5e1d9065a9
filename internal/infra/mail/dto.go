package mail

import "time"

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// Timeout bounds a single send, dialing included.
	Timeout time.Duration
	// IdleTimeout is how long a pooled connection may sit unused before it is redialed.
	IdleTimeout time.Duration
}

// Brand is the company identity printed in outgoing emails.
type Brand struct {
	Name         string
	SupportEmail string
	SupportPhone string
}

type operatorEmailData struct {
	Brand      Brand
	FullName   string
	Name       string
	Email      string
	Phone      string
	Subject    string
	Message    string
	ReceivedOn string
}

type confirmationEmailData struct {
	Brand    Brand
	FullName string
}
