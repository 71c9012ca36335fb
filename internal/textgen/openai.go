package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = openai.ChatModelGPT4oMini

// OpenAIGenerator implements Generator with a chat-completion call.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator creates the generator. Model is optional.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func systemPrompt() string {
	return `You are the notification writer for Kazi Flow, a team productivity application.

You must respond with a valid JSON object (no markdown code fences, no extra text) with exactly these fields:

{
  "subject": "A short email subject line",
  "body": "A brief, friendly plain-text email body of 2-3 sentences"
}

Important rules:
- The email informs an administrator that a team member just signed in
- Address the administrator by first name
- Keep the tone professional and concise
- Respond ONLY with the JSON object, no other text`
}

func userPrompt(signerName, recipientFirstName string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Team member who signed in: %s\n", signerName))
	sb.WriteString(fmt.Sprintf("Administrator first name: %s\n", recipientFirstName))
	return sb.String()
}

// GenerateLoginAlert implements Generator.
func (g *OpenAIGenerator) GenerateLoginAlert(ctx context.Context, signerName, recipientFirstName string) (Email, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt()),
			openai.UserMessage(userPrompt(signerName, recipientFirstName)),
		},
	})
	if err != nil {
		return Email{}, fmt.Errorf("login alert generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Email{}, fmt.Errorf("login alert generation: no choices returned")
	}

	return parseEmailJSON(resp.Choices[0].Message.Content)
}

// parseEmailJSON decodes the model output, tolerating markdown code
// fences despite the prompt forbidding them.
func parseEmailJSON(content string) (Email, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var email Email
	if err := json.Unmarshal([]byte(content), &email); err != nil {
		return Email{}, fmt.Errorf("login alert decode: %w", err)
	}
	if email.Subject == "" || email.Body == "" {
		return Email{}, fmt.Errorf("login alert decode: missing subject or body")
	}
	return email, nil
}
