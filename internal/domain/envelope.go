package domain

import (
	"fmt"
	"strings"
)

// Envelope holds the sender, recipients and subject of outbound
// messages together with the rendered header text. It is computed once
// at handler construction and never changes afterwards.
type Envelope struct {
	From    string
	To      []string
	Subject string

	header string
}

// NewEnvelope builds an envelope and renders its message header.
func NewEnvelope(from string, to []string, subject string) Envelope {
	e := Envelope{
		From:    from,
		To:      append([]string(nil), to...),
		Subject: subject,
	}
	e.header = fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n",
		e.From, e.Recipients(), e.Subject)
	return e
}

// Header returns the rendered message header, terminated by the blank
// line that separates it from the body.
func (e Envelope) Header() string {
	return e.header
}

// Recipients returns the comma-joined recipient list as it appears in
// the To header.
func (e Envelope) Recipients() string {
	return strings.Join(e.To, ",")
}
