package textgen

import (
	"context"
	"fmt"
)

// StaticGenerator produces a deterministic alert without calling any
// external service. Used when no API key is configured and in tests.
type StaticGenerator struct{}

// GenerateLoginAlert implements Generator.
func (StaticGenerator) GenerateLoginAlert(_ context.Context, signerName, recipientFirstName string) (Email, error) {
	return Email{
		Subject: fmt.Sprintf("Login alert: %s signed in", signerName),
		Body: fmt.Sprintf("Hi %s, this is a notification that %s just signed in to Kazi Flow.",
			recipientFirstName, signerName),
	}, nil
}
