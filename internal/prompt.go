package internal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"subriot/internal/cipher"
)

// PromptForKey prompts for a key string twice on out, verifies the entries
// match and that they form a valid key. If mask is true, input is read in raw
// mode with '*' echo; otherwise it uses the terminal's hidden input (no echo)
// via ReadPassword.
// Errors never echo the key content.
func PromptForKey(out io.Writer, mask bool) (cipher.Key, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return cipher.Key{}, fmt.Errorf("prompt requires an interactive terminal")
	}

	read := func(prompt string) (string, error) {
		if mask {
			return readMasked(fd, out, prompt)
		}
		fmt.Fprint(out, "\r"+prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read key")
		}
		return string(b), nil
	}

	k1, err := read("Enter key: ")
	if err != nil {
		return cipher.Key{}, err
	}
	k2, err := read("Re-enter key: ")
	if err != nil {
		return cipher.Key{}, err
	}
	return ConfirmKey(k1, k2)
}

// ConfirmKey checks that two key entries match and parse as a key.
func ConfirmKey(first, second string) (cipher.Key, error) {
	if first != second {
		return cipher.Key{}, fmt.Errorf("keys do not match")
	}
	return cipher.ParseKey(first)
}

// readMasked reads one line in raw mode, echoing '*' per character, and
// restores the terminal on return or on SIGINT/SIGTERM.
func readMasked(fd int, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, "\r"+prompt)

	oldState, err := term.GetState(fd)
	if err != nil {
		return "", fmt.Errorf("terminal not ready")
	}
	restore := func() { _ = term.Restore(fd, oldState) }

	done := make(chan struct{})
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigc:
			restore()
			os.Exit(130)
		case <-done:
		}
	}()

	if _, err := term.MakeRaw(fd); err != nil {
		signal.Stop(sigc)
		close(done)
		return "", fmt.Errorf("terminal not ready")
	}
	defer func() { restore(); signal.Stop(sigc); close(done) }()

	return readMaskedLine(os.Stdin, out), nil
}

// readMaskedLine consumes bytes from in until CR/LF or EOF, handling
// backspace and ignoring control characters.
func readMaskedLine(in io.Reader, out io.Writer) string {
	var buf []rune
	for {
		var b [1]byte
		n, er := in.Read(b[:])
		if er != nil || n == 0 {
			break
		}
		ch := rune(b[0])
		if ch == '\r' || ch == '\n' {
			fmt.Fprintln(out)
			break
		}
		if ch == 0x7f || ch == '\b' { // backspace/delete
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				// Erase last '*'
				fmt.Fprint(out, "\b \b")
			}
			continue
		}
		// Ignore non-printable control characters
		if ch < 0x20 {
			continue
		}
		buf = append(buf, ch)
		fmt.Fprint(out, "*")
	}
	return string(buf)
}
