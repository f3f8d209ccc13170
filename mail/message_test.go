package mail

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/coverforge/cover"
)

func testRecord() *cover.Record {
	return &cover.Record{
		Name:           "Ada Lovelace",
		StudentID:      "2021-345",
		Department:     "Computer Science and Engineering",
		AssignmentNo:   "3",
		SubmissionDate: "2024-05-01",
	}
}

func testEnvelope() Envelope {
	return Envelope{From: "covers@example.com", To: "print@example.com"}
}

func writeMessage(t *testing.T, env Envelope, token string) string {
	t.Helper()
	msg, err := Compose(env, testRecord(), []byte("%PDF-1.4 test"), token, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	return buf.String()
}

func TestSubject(t *testing.T) {
	if got := Subject("CSE-345-ABCD"); got != "Print Request - CSE-345-ABCD" {
		t.Errorf("Subject() = %q", got)
	}
}

func TestAttachmentName(t *testing.T) {
	if got := AttachmentName("CSE-345-ABCD"); got != "CSE-345-ABCD.pdf" {
		t.Errorf("AttachmentName() = %q", got)
	}
}

func TestCompose_Headers(t *testing.T) {
	raw := writeMessage(t, testEnvelope(), "CSE-345-ABCD")

	for _, want := range []string{
		"Subject: Print Request - CSE-345-ABCD",
		`From: "Assignment Cover Generator" <covers@example.com>`,
		"To: <print@example.com>",
		"Message-ID: <",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
	if strings.Contains(raw, "User-Agent") {
		t.Error("message should not carry a User-Agent header")
	}
}

func TestCompose_CustomFromName(t *testing.T) {
	env := testEnvelope()
	env.FromName = "Cover Desk"
	raw := writeMessage(t, env, "CSE-345-ABCD")
	if !strings.Contains(raw, `"Cover Desk" <covers@example.com>`) {
		t.Error("custom from name not used")
	}
}

func TestCompose_BodyAndAttachment(t *testing.T) {
	raw := writeMessage(t, testEnvelope(), "CSE-345-ABCD")

	for _, want := range []string{
		"text/html",
		"Ada Lovelace",
		"2021-345",
		"PDF attached",
		`filename="CSE-345-ABCD.pdf"`,
		"application/pdf",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestCompose_EscapesBody(t *testing.T) {
	rec := testRecord()
	rec.Name = `<script>alert(1)</script>`
	msg, err := Compose(testEnvelope(), rec, []byte("%PDF"), "T", time.Now())
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Error("name was not escaped")
	}
}

func TestCompose_InvalidAddress(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{name: "bad from", env: Envelope{From: "not an address", To: "print@example.com"}},
		{name: "bad to", env: Envelope{From: "covers@example.com", To: "@@"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compose(tt.env, testRecord(), nil, "T", time.Now()); err == nil {
				t.Error("Compose() expected error")
			}
		})
	}
}
