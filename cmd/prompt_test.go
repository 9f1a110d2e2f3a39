package cmd

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func newTestPrompter(input string) (*prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &prompter{
		in:          bufio.NewReader(strings.NewReader(input)),
		out:         out,
		interactive: true,
	}, out
}

func TestPrompterPromptUserIDRetriesUntilValid(t *testing.T) {
	p, out := newTestPrompter("abc\n0\n42\n")

	got, err := p.promptUserID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	output := out.String()
	if !strings.Contains(output, "Not a number: abc") {
		t.Fatalf("expected retry message for non-number, got:\n%s", output)
	}
	if !strings.Contains(output, "user id must be a positive number") {
		t.Fatalf("expected retry message for zero, got:\n%s", output)
	}
}

func TestPrompterPromptMonthShowsMenuAndValidatesRange(t *testing.T) {
	p, out := newTestPrompter("13\n7\n")

	got, err := p.promptMonth()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}

	output := out.String()
	if !strings.Contains(output, "Julio (July)") {
		t.Fatalf("expected bilingual month menu, got:\n%s", output)
	}
	if !strings.Contains(output, "month must be between 1 and 12") {
		t.Fatalf("expected range retry message, got:\n%s", output)
	}
}

func TestPrompterPromptYearRejectsOutOfRange(t *testing.T) {
	p, out := newTestPrompter("1800\n2026\n")

	got, err := p.promptYear()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2026 {
		t.Fatalf("expected 2026, got %d", got)
	}
	if !strings.Contains(out.String(), "year must be between") {
		t.Fatalf("expected range retry message, got:\n%s", out.String())
	}
}

func TestPrompterPromptSecretNeverEchoesValue(t *testing.T) {
	p, out := newTestPrompter("")
	p.readSecret = func() (string, error) { return "s3cret-token", nil }

	got, err := p.promptSecret("Token: ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s3cret-token" {
		t.Fatalf("expected secret value, got %q", got)
	}
	if strings.Contains(out.String(), "s3cret-token") {
		t.Fatalf("secret value must not be echoed, output:\n%s", out.String())
	}
}

func TestPrompterNonInteractiveFails(t *testing.T) {
	p, _ := newTestPrompter("42\n")
	p.interactive = false

	if _, err := p.promptString("User ID: "); err == nil {
		t.Fatalf("expected error when stdin is not a terminal")
	}
	if _, err := p.promptSecret("Token: "); err == nil {
		t.Fatalf("expected error when stdin is not a terminal")
	}
}

func TestPrompterEOFReturnsError(t *testing.T) {
	p, _ := newTestPrompter("")

	if _, err := p.promptString("User ID: "); err == nil {
		t.Fatalf("expected error at end of input")
	}
}
