package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jonwraymond/coverforge/observe"
)

func TestLogSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(observe.NewLoggerWithWriter("info", &buf))

	res := s.Send(context.Background(), testRecord(), []byte("%PDF"), "CSE-345-ABCD")
	if !res.Success || res.Error != nil {
		t.Fatalf("Send() = %+v, want success", res)
	}
	if !strings.HasPrefix(res.MessageID, "<") || !strings.HasSuffix(res.MessageID, ">") {
		t.Errorf("MessageID = %q, want angle-bracketed id", res.MessageID)
	}
	out := buf.String()
	if !strings.Contains(out, res.MessageID) {
		t.Error("log line missing message id")
	}
	if strings.Contains(out, "CSE-345-ABCD") {
		t.Error("log line leaked the token")
	}
}

func TestLogSender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewLogSender(nil).Send(ctx, testRecord(), nil, "T")
	if res.Success || res.Error == nil {
		t.Fatalf("Send() = %+v, want context error", res)
	}
}
