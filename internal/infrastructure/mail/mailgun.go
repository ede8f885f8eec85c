package mail

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// MailgunNotifier implements ports.Notifier over the Mailgun API. Sends are
// synchronous; a transport failure surfaces as the operation's failure.
type MailgunNotifier struct {
	domain string
	apiKey string
	sender string
}

func NewMailgunNotifier(domain, apiKey, sender string) *MailgunNotifier {
	return &MailgunNotifier{domain: domain, apiKey: apiKey, sender: sender}
}

func (n *MailgunNotifier) SendOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf("Your OTP: %s\nValid for 10 minutes.", code)
	return n.send(ctx, email, "Account Verification OTP", body)
}

func (n *MailgunNotifier) SendGeneratedCredentials(ctx context.Context, email, password string) error {
	body := fmt.Sprintf("Your login credentials:\nEmail: %s\nPassword: %s", email, password)
	return n.send(ctx, email, "Employee Account Created", body)
}

func (n *MailgunNotifier) send(ctx context.Context, to, subject, text string) error {
	client := mg.NewMailgun(n.domain, n.apiKey)
	msg := client.NewMessage(n.sender, subject, text, to)

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, _, err := client.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
