package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"subriot/internal/cipher"
)

// Key sources reported by ResolveKey.
const (
	SourceKey      = "key"
	SourceProfile  = "profile"
	SourceIdentity = "identity"
)

// ResolveKey picks the key to work with: an explicit key string from the
// configuration first, then the key stored under the configured profile, and
// finally the identity key. It returns the key and where it came from.
func ResolveKey(cfg *Config, store *Store) (cipher.Key, string, error) {
	if cfg.Key != "" {
		k, err := cipher.ParseKey(cfg.Key)
		if err != nil {
			return cipher.Key{}, "", err
		}
		return k, SourceKey, nil
	}

	k, err := store.Load(cfg.Profile)
	switch {
	case err == nil:
		return k, SourceProfile, nil
	case errors.Is(err, ErrProfileNotFound):
		return cipher.IdentityKey(), SourceIdentity, nil
	default:
		return cipher.Key{}, "", err
	}
}

// ReadText returns args joined by single spaces, or all of in when args is
// empty. One trailing line ending is removed from stdin input.
func ReadText(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// RunEncrypt encrypts text with the engine's active key and prints the
// result. With group > 0 the output is rendered in letter blocks of that
// size; with verify the round-trip is checked before anything is printed.
func RunEncrypt(w io.Writer, eng *cipher.Engine, text string, group int, verify bool) error {
	var (
		out string
		err error
	)
	if verify {
		k, ok := eng.Key()
		if !ok {
			return cipher.ErrKeyNotReady
		}
		out, err = EncryptVerified(k, text)
	} else {
		out, err = eng.Encrypt(text)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, GroupLetters(out, group))
	return nil
}

// RunDecrypt decrypts text with the engine's active key and prints the result.
// With verify, re-encrypting the plaintext must give back text before
// anything is printed.
func RunDecrypt(w io.Writer, eng *cipher.Engine, text string, verify bool) error {
	if verify {
		k, ok := eng.Key()
		if !ok {
			return cipher.ErrKeyNotReady
		}
		// Decrypting under k is encrypting under its inverse.
		if err := VerifyRoundTrip(k.Inverse(), text); err != nil {
			return err
		}
	}
	out, err := eng.Decrypt(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

// RunValidate reports whether candidate is a usable key. An invalid key is
// returned as an error wrapping cipher.ErrInvalidKey after the reason has been
// printed.
func RunValidate(w io.Writer, candidate string) error {
	k, err := cipher.ParseKey(candidate)
	if err != nil {
		fmt.Fprintln(w, Style("invalid:", Bold, Red), strings.TrimPrefix(err.Error(), cipher.ErrInvalidKey.Error()+": "))
		return err
	}
	fmt.Fprintf(w, "%s %s %s\n", Style("valid:", Bold, Green), k, Style("("+k.Fingerprint()+")", Gray))
	return nil
}

// RunRandomize replaces the engine key with a random one and prints it. With
// save the key is stored under profile; with showQR a QR code of the key is
// printed below it.
func RunRandomize(w io.Writer, logger *slog.Logger, eng *cipher.Engine, store *Store, profile string, save, showQR bool) error {
	k := eng.RandomizeKey()
	fmt.Fprintln(w, k)

	if save {
		if err := store.Save(profile, k); err != nil {
			return err
		}
		logger.Info("key saved", slog.String("profile", profile), slog.String("fingerprint", k.Fingerprint()))
		fmt.Fprintln(w, Style("saved to profile "+profile, Gray))
	}
	if showQR {
		return writeQR(w, k)
	}
	return nil
}

// RunKeyShow prints the key in use, where it came from and, optionally, a QR
// code of it.
func RunKeyShow(w io.Writer, k cipher.Key, source string, showQR bool) error {
	fmt.Fprintln(w, k)
	fmt.Fprintln(w, Style(fmt.Sprintf("source: %s, fingerprint: %s", source, k.Fingerprint()), Gray))
	if showQR {
		return writeQR(w, k)
	}
	return nil
}

// RunKeySet validates candidate through the engine and stores it under
// profile. The stored key is the canonical uppercase form.
func RunKeySet(w io.Writer, logger *slog.Logger, eng *cipher.Engine, store *Store, profile, candidate string) error {
	k, err := eng.SetKey(candidate)
	if err != nil {
		return err
	}
	if err := store.Save(profile, k); err != nil {
		return err
	}
	logger.Info("key saved", slog.String("profile", profile), slog.String("fingerprint", k.Fingerprint()))
	fmt.Fprintf(w, "%s %s\n", Style("saved to profile "+profile+":", Gray), k)
	return nil
}

// RunKeyDelete removes profile from the store.
func RunKeyDelete(w io.Writer, store *Store, profile string) error {
	if err := store.Delete(profile); err != nil {
		return err
	}
	fmt.Fprintln(w, Style("deleted profile "+profile, Gray))
	return nil
}

// RunKeyList prints every stored profile, marking the active one.
func RunKeyList(w io.Writer, store *Store, active string) error {
	names, err := store.Profiles()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, Style("no stored profiles", Gray))
		return nil
	}
	for _, name := range names {
		k, err := store.Load(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-16s %s %s\n", marker, name, k, Style(k.Fingerprint(), Gray))
	}
	return nil
}

func writeQR(w io.Writer, k cipher.Key) error {
	code, err := RenderQR(k.String(), true)
	if err != nil {
		return err
	}
	fmt.Fprint(w, code)
	return nil
}
