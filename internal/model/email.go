// Package model defines the domain types shared across the order pipeline.
package model

// NormalizedEmail is the canonical form of an inbound notification email.
// It is constructed per request from whatever webhook payload shape arrived
// and is never persisted.
type NormalizedEmail struct {
	Subject string
	Content string
	Sender  string
}

// Empty reports whether the email carries no usable text. Empty emails are
// rejected before classification.
func (e NormalizedEmail) Empty() bool {
	return e.Subject == "" && e.Content == ""
}
