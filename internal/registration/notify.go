package registration

import "context"

// Level classifies a Notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// User-visible outcome messages.
const (
	MsgSubmitted = "Form submitted successfully!"
	MsgFailed    = "Submission failed!"
)

// Notification is one transient, toast-style message.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier surfaces submission outcomes to the user.  Implementations decide
// how: a flash queue for the web UI, a styled line for the terminal.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (fn NotifierFunc) Notify(ctx context.Context, n Notification) { fn(ctx, n) }
