package agents

import (
	"context"
	"fmt"

	"github.com/alienx/bianca/internal/llm"
	"github.com/alienx/bianca/internal/stream"
	"github.com/alienx/bianca/internal/whatsapp"
)

// whatsappIntent is the structured interpretation of a send task.
type whatsappIntent struct {
	Recipient string `json:"recipient"`
	Number    string `json:"number"`
	Message   string `json:"message"`
}

// WhatsAppAgent drafts an outbound WhatsApp message and, when the task
// names a usable phone number, sends it through the companion service.
// Without a number it returns a preview for the UI's contact picker.
type WhatsAppAgent struct {
	client *llm.Client
	sender *whatsapp.Client
}

func NewWhatsAppAgent(client *llm.Client, sender *whatsapp.Client) *WhatsAppAgent {
	return &WhatsAppAgent{client: client, sender: sender}
}

func (a *WhatsAppAgent) Kind() string { return "whatsapp" }

func (a *WhatsAppAgent) Run(ctx context.Context, req Request) (*stream.ResultData, error) {
	intent, err := a.parseIntent(ctx, req.Task)
	if err != nil {
		return nil, fmt.Errorf("whatsapp agent failed: %w", err)
	}

	preview := &stream.WhatsAppPreview{
		Recipient: intent.Recipient,
		Number:    intent.Number,
		Body:      intent.Message,
	}

	if intent.Number == "" {
		return &stream.ResultData{
			Kind: a.Kind(),
			WhatsApp: &stream.WhatsAppResult{
				Message: fmt.Sprintf("Drafted a WhatsApp message for %s. Pick a contact to send it.", displayRecipient(intent)),
				Preview: preview,
			},
		}, nil
	}

	resp, err := a.sender.Send(ctx, intent.Number, intent.Message)
	if err != nil {
		return nil, fmt.Errorf("whatsapp agent failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("whatsapp agent failed: companion service rejected the send: %s", resp.Error)
	}

	return &stream.ResultData{
		Kind: a.Kind(),
		WhatsApp: &stream.WhatsAppResult{
			Message: fmt.Sprintf("Message sent to %s.", displayRecipient(intent)),
			Preview: preview,
		},
	}, nil
}

func (a *WhatsAppAgent) parseIntent(ctx context.Context, task string) (*whatsappIntent, error) {
	prompt := fmt.Sprintf(`Extract the WhatsApp send details from the following instruction.

INSTRUCTION: %s

OUTPUT FORMAT (JSON):
{"recipient": "name if given", "number": "digits-only phone number if given, else empty", "message": "the message to send"}

Compose a natural message body from the instruction if one is not quoted verbatim.
Return ONLY valid JSON.`, task)

	var intent whatsappIntent
	if err := a.client.GenerateJSON(ctx, prompt, &intent); err != nil {
		return nil, err
	}
	if intent.Message == "" {
		return nil, fmt.Errorf("could not determine the message to send")
	}
	return &intent, nil
}

func displayRecipient(intent *whatsappIntent) string {
	if intent.Recipient != "" {
		return intent.Recipient
	}
	if intent.Number != "" {
		return "+" + intent.Number
	}
	return "your contact"
}
