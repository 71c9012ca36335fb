// Package textgen drafts login-alert notification emails. The production
// implementation calls an OpenAI-compatible text-generation service; a
// static generator covers deployments without an API key.
package textgen

import "context"

// Email is one generated alert message.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator drafts a login alert addressed to one recipient. Calls may
// fail independently per recipient; the caller decides what a failure
// means.
type Generator interface {
	GenerateLoginAlert(ctx context.Context, signerName, recipientFirstName string) (Email, error)
}
