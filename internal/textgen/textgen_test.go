package textgen

import (
	"context"
	"strings"
	"testing"
)

// TestParseEmailJSON covers plain JSON and fenced model output.
func TestParseEmailJSON(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"plain", `{"subject": "Login alert", "body": "Mo just signed in."}`},
		{"fenced", "```json\n{\"subject\": \"Login alert\", \"body\": \"Mo just signed in.\"}\n```"},
		{"bare fence", "```\n{\"subject\": \"Login alert\", \"body\": \"Mo just signed in.\"}\n```"},
	}

	for _, tc := range cases {
		email, err := parseEmailJSON(tc.content)
		if err != nil {
			t.Errorf("%s: parseEmailJSON failed: %v", tc.name, err)
			continue
		}
		if email.Subject != "Login alert" || email.Body != "Mo just signed in." {
			t.Errorf("%s: unexpected result %+v", tc.name, email)
		}
	}
}

// TestParseEmailJSONRejectsIncomplete verifies missing fields and
// non-JSON output fail.
func TestParseEmailJSONRejectsIncomplete(t *testing.T) {
	for _, content := range []string{
		`{"subject": "Login alert"}`,
		`{"body": "Mo just signed in."}`,
		"Sorry, I cannot help with that.",
		"",
	} {
		if _, err := parseEmailJSON(content); err == nil {
			t.Errorf("Expected error for %q", content)
		}
	}
}

// TestStaticGenerator verifies the deterministic fallback mentions both
// parties.
func TestStaticGenerator(t *testing.T) {
	email, err := StaticGenerator{}.GenerateLoginAlert(context.Background(), "Mo Haddad", "Asha")
	if err != nil {
		t.Fatalf("GenerateLoginAlert failed: %v", err)
	}
	if !strings.Contains(email.Subject, "Mo Haddad") {
		t.Errorf("Expected signer in subject, got %q", email.Subject)
	}
	if !strings.Contains(email.Body, "Asha") || !strings.Contains(email.Body, "Mo Haddad") {
		t.Errorf("Expected both names in body, got %q", email.Body)
	}
}
