package alert

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/hazz-dev/okgraph/internal/version"
)

const graphFilename = "graph.png"

// Message is an assembled alert email before MIME encoding.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	// Graph is an optional PNG embedded inline under GraphContentID.
	Graph []byte
	Date  time.Time
}

// sanitizeHeader strips CR and LF to prevent header injection.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// messageID returns a Message-ID value without angle brackets.
func messageID(from string) string {
	domain := "okgraph.localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = strings.Trim(from[i+1:], "<> ")
	}
	return uuid.NewString() + "@" + domain
}

// Build converts m into a mail message. The body is quoted-printable HTML;
// with a graph the message becomes multipart/related and the PNG is
// embedded under Content-ID <graph>.
func (m Message) Build() (*mail.Msg, error) {
	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	if err := msg.From(sanitizeHeader(m.From)); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	to := make([]string, len(m.To))
	for i, addr := range m.To {
		to[i] = sanitizeHeader(addr)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}

	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}
	msg.Subject(sanitizeHeader(m.Subject))
	msg.SetDateWithValue(date)
	msg.SetMessageIDWithValue(messageID(m.From))
	msg.SetGenHeader(mail.HeaderXMailer, "okgraph/"+version.Version)
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)

	if len(m.Graph) > 0 {
		err := msg.EmbedReader(graphFilename, bytes.NewReader(m.Graph),
			mail.WithFileContentID("<"+GraphContentID+">"),
			mail.WithFileContentType(mail.ContentType("image/png")),
		)
		if err != nil {
			return nil, fmt.Errorf("embedding graph: %w", err)
		}
	}
	return msg, nil
}

// Bytes encodes m as it would be handed to SMTP DATA.
func (m Message) Bytes() ([]byte, error) {
	msg, err := m.Build()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}
	return buf.Bytes(), nil
}
