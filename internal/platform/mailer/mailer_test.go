package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNew_FallsBackToLogMailer(t *testing.T) {
	m := New(Config{}, zerolog.Nop())
	if _, ok := m.(*LogMailer); !ok {
		t.Errorf("expected LogMailer without SMTP host, got %T", m)
	}
	m = New(Config{Host: "smtp.example.com", Port: 587, From: "lab@example.com"}, zerolog.Nop())
	if _, ok := m.(*SMTPMailer); !ok {
		t.Errorf("expected SMTPMailer, got %T", m)
	}
}

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))
	if err := m.Send(context.Background(), Message{To: "a@b.com", Subject: "hi", TextBody: "body"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"to":"a@b.com"`) {
		t.Errorf("expected recipient in log, got %s", buf.String())
	}
}

func TestBuildMessage_Validation(t *testing.T) {
	ok := Message{To: "a@b.com", Subject: "s", TextBody: "b"}
	if _, err := buildMessage("lab@example.com", ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := map[string]Message{
		"no to":      {Subject: "s", TextBody: "b"},
		"no subject": {To: "a@b.com", TextBody: "b"},
		"no body":    {To: "a@b.com", Subject: "s"},
	}
	for name, m := range cases {
		if _, err := buildMessage("lab@example.com", m); !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("%s: expected ErrInvalidMessage, got %v", name, err)
		}
	}
	if _, err := buildMessage("", ok); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage without from, got %v", err)
	}
}

func TestPasswordResetMessage(t *testing.T) {
	m := PasswordResetMessage("a@b.com", "http://localhost:3000/reset-password?token=x", 30*time.Minute)
	if m.To != "a@b.com" || !strings.Contains(m.TextBody, "token=x") || !strings.Contains(m.TextBody, "30m0s") {
		t.Errorf("unexpected message: %+v", m)
	}
}
