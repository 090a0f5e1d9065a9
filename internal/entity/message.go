package entity

// OutboundMessage is an email ready to hand to a transport.
type OutboundMessage struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}
