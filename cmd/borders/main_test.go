package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/borders/internal/ipc"
)

type fakeSender struct {
	sent [][]string
	err  error
}

func (f *fakeSender) Send(tokens []string) (*ipc.UpdateData, error) {
	f.sent = append(f.sent, tokens)
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.UpdateData{Scope: "ALL"}, nil
}

func TestForward_SendsTokens(t *testing.T) {
	var stderr bytes.Buffer
	client := &fakeSender{}

	code := forward(client, []string{"width=3"}, &stderr)
	if code != 0 {
		t.Fatalf("forward exit code = %d, stderr=%q", code, stderr.String())
	}
	if len(client.sent) != 1 || client.sent[0][0] != "width=3" {
		t.Fatalf("unexpected sends %q", client.sent)
	}
}

func TestForward_NothingToSend(t *testing.T) {
	var stderr bytes.Buffer
	client := &fakeSender{}

	if code := forward(client, nil, &stderr); code != 1 {
		t.Fatalf("forward exit code = %d, want 1", code)
	}
	if len(client.sent) != 0 {
		t.Fatalf("expected nothing sent")
	}
	if !strings.Contains(stderr.String(), "already running") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestForward_SendFailure(t *testing.T) {
	var stderr bytes.Buffer
	client := &fakeSender{err: errors.New("connection refused")}

	if code := forward(client, []string{"style=s"}, &stderr); code != 1 {
		t.Fatalf("forward exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "connection refused") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestIsHelp(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		if !isHelp(arg) {
			t.Fatalf("isHelp(%q) = false", arg)
		}
	}
	if isHelp("width=3") {
		t.Fatalf("isHelp(width=3) = true")
	}
}

func TestPrintMainUsage(t *testing.T) {
	var buf bytes.Buffer
	printMainUsage(&buf)
	out := buf.String()
	for _, want := range []string{"Usage: borders", "active_color=", "style=<r|s>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("usage missing %q:\n%s", want, out)
		}
	}
}
