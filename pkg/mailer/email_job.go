package mailer

// EmailJob is a rendered or template-addressed email ready to hand to a Sender.
// HTML is optional; Text is the fallback body.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "listing_created" or "user_registered"
	Data     map[string]any `json:"data,omitempty"`
}
