package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var monthNames = [12]string{
	"Enero (January)",
	"Febrero (February)",
	"Marzo (March)",
	"Abril (April)",
	"Mayo (May)",
	"Junio (June)",
	"Julio (July)",
	"Agosto (August)",
	"Septiembre (September)",
	"Octubre (October)",
	"Noviembre (November)",
	"Diciembre (December)",
}

// prompter asks for values on the terminal. Secrets are read without
// echo so tokens never end up in scrollback.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	readSecret  func() (string, error)
}

func newPrompter() *prompter {
	return &prompter{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
		readSecret:  readPasswordFromTerminal,
	}
}

func readPasswordFromTerminal() (string, error) {
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (p *prompter) promptString(label string) (string, error) {
	if !p.interactive {
		return "", fmt.Errorf("cannot prompt for %s: stdin is not a terminal", strings.TrimRight(label, ": "))
	}
	for {
		fmt.Fprint(p.out, label)
		line, err := p.in.ReadString('\n')
		value := strings.TrimSpace(line)
		if value != "" {
			return value, nil
		}
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		fmt.Fprintln(p.out, "A value is required.")
	}
}

func (p *prompter) promptSecret(label string) (string, error) {
	if !p.interactive {
		return "", fmt.Errorf("cannot prompt for %s: stdin is not a terminal", strings.TrimRight(label, ": "))
	}
	for {
		fmt.Fprint(p.out, label)
		value, err := p.readSecret()
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read secret input: %w", err)
		}
		if value = strings.TrimSpace(value); value != "" {
			return value, nil
		}
		fmt.Fprintln(p.out, "A value is required.")
	}
}

func (p *prompter) promptInt(label string, validate func(int) error) (int, error) {
	for {
		raw, err := p.promptString(label)
		if err != nil {
			return 0, err
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintf(p.out, "Not a number: %s\n", raw)
			continue
		}
		if err := validate(value); err != nil {
			fmt.Fprintln(p.out, err.Error())
			continue
		}
		return value, nil
	}
}

func (p *prompter) promptUserID() (int, error) {
	return p.promptInt("Kimai user ID: ", func(v int) error {
		if v <= 0 {
			return fmt.Errorf("user id must be a positive number")
		}
		return nil
	})
}

func validateYear(v int) error {
	if v < 1970 || v > 9999 {
		return fmt.Errorf("year must be between 1970 and 9999")
	}
	return nil
}

func (p *prompter) promptYear() (int, error) {
	return p.promptInt("Year (e.g. 2026): ", validateYear)
}

func (p *prompter) promptMonth() (int, error) {
	if p.interactive {
		fmt.Fprintln(p.out, "Select month:")
		for i, name := range monthNames {
			fmt.Fprintf(p.out, "  %2d. %s\n", i+1, name)
		}
	}
	return p.promptInt("Month [1-12]: ", func(v int) error {
		if v < 1 || v > 12 {
			return fmt.Errorf("month must be between 1 and 12")
		}
		return nil
	})
}
