package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"github.com/retrobus-essonne/mail-api/internal/config"
)

// Message is one outgoing email. To, Cc and Bcc hold comma-separated
// address lists, matching what the front end submits.
type Message struct {
	From    string
	To      string
	Cc      string
	Bcc     string
	Subject string
	HTML    string
}

// Sender delivers outgoing mail. Handlers depend on this interface so
// tests can count and inspect deliveries without an SMTP server.
type Sender interface {
	// Send delivers the message and returns its Message-ID.
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTP delivers mail through the configured SMTP relay.
type SMTP struct {
	cfg config.SMTPConfig
}

// NewSMTP builds an SMTP sender from the process configuration.
func NewSMTP(cfg config.SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

// Send delivers the message over SMTP, using implicit TLS or STARTTLS
// depending on configuration.
func (s *SMTP) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("send canceled before dialing: %w", err)
	}

	from := msg.From
	if from == "" {
		from = s.cfg.FromEmail
	}
	recipients := splitAddresses(msg.To, msg.Cc, msg.Bcc)
	if from == "" || len(recipients) == 0 {
		return "", fmt.Errorf("message needs a sender and at least one recipient")
	}

	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), s.cfg.Host)
	raw, err := buildMessage(msg, from, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}

	var auth sasl.Client
	if s.cfg.User != "" {
		auth = sasl.NewPlainClient("", s.cfg.User, s.cfg.Password)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if s.cfg.Secure {
		err = smtp.SendMailTLS(addr, auth, from, recipients, bytes.NewReader(raw))
	} else {
		err = smtp.SendMail(addr, auth, from, recipients, bytes.NewReader(raw))
	}
	if err != nil {
		return "", fmt.Errorf("failed to deliver via %s: %w", addr, err)
	}

	log.Printf("email sent: message-id=<%s> recipients=%d", messageID, len(recipients))
	return "<" + messageID + ">", nil
}

// buildMessage renders the MIME form of a message with a single
// text/html part.
func buildMessage(msg Message, from, messageID string) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetMessageID(messageID)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", toAddressList(msg.To))
	if cc := toAddressList(msg.Cc); len(cc) > 0 {
		h.SetAddressList("Cc", cc)
	}
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(w, msg.HTML); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}

// toAddressList parses a comma-separated address list into header form.
func toAddressList(list string) []*mail.Address {
	addrs := splitAddresses(list)
	out := make([]*mail.Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, &mail.Address{Address: a})
	}
	return out
}

// splitAddresses flattens comma-separated lists into the distinct
// non-empty addresses they contain.
func splitAddresses(lists ...string) []string {
	var out []string
	for _, list := range lists {
		for _, addr := range strings.Split(list, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				out = append(out, addr)
			}
		}
	}
	return out
}
