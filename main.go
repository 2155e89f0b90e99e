// SubRiot — mono-alphabetic substitution cipher
//
// Scheme:
// - Key: a permutation of A..Z written as 26 letters (case-insensitive)
// - Encrypt: each ASCII letter at alphabet index i becomes Key[i], keeping
//   its case; every other character passes through unchanged
// - Decrypt: the inverse permutation, derived from the key on demand
//
// Keys come from --key / SUBRIOT_KEY, from the stored profile, or default to
// the identity key (A→A … Z→Z). Profiles live in a JSON state file so a key
// survives between sessions.
//
// Not a secure cipher: substitution falls to frequency analysis.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"subriot/internal"
	"subriot/internal/cipher"
)

var version = "dev"

// errSelfTestFailed signals a failed self-test without extra output.
var errSelfTestFailed = errors.New("self-test failed")

// session carries the resolved configuration and collaborators for one
// command invocation.
type session struct {
	cfg    *internal.Config
	logger *slog.Logger
	store  *internal.Store
}

// setup applies global flags over the environment configuration and builds
// the logger and store.
func setup(cfg *internal.Config, cmd *cli.Command, stderr io.Writer) (*session, error) {
	if cmd.IsSet("key") {
		cfg.Key = cmd.String("key")
	}
	if cmd.IsSet("profile") {
		cfg.Profile = cmd.String("profile")
	}
	if cmd.IsSet("state-dir") {
		cfg.StateDir = cmd.String("state-dir")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("no-color") {
		cfg.NoColor = true
	}
	// The key itself is checked by ResolveKey, so commands that never use
	// it are not blocked by a bad SUBRIOT_KEY.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := internal.NewLogger(cfg.LogLevel, stderr)
	store := internal.OpenStore(cfg.StateDir)
	logger.Debug("configuration loaded",
		slog.String("profile", cfg.Profile),
		slog.String("state_file", store.Path()),
	)
	return &session{cfg: cfg, logger: logger, store: store}, nil
}

// engine resolves the working key and returns an engine holding it.
func (s *session) engine() (*cipher.Engine, cipher.Key, string, error) {
	k, source, err := internal.ResolveKey(s.cfg, s.store)
	if err != nil {
		return nil, cipher.Key{}, "", err
	}
	s.logger.Debug("key resolved", slog.String("source", source), slog.String("fingerprint", k.Fingerprint()))
	eng := cipher.NewEngine(cipher.WithKey(k), cipher.WithLogger(s.logger))
	return eng, k, source, nil
}

func newApp(cfg *internal.Config, stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	internal.SetColorEnabled(!cfg.NoColor && isTerminal(stdout))
	about := internal.Banner(version) + "\n\n" +
		"Each ASCII letter is replaced through a 26-letter key, keeping its case;\n" +
		"everything else passes through. Not secure: substitution falls to\n" +
		"frequency analysis."

	var s *session
	withSession := func(action func(ctx context.Context, cmd *cli.Command, s *session) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			var err error
			if s == nil {
				if s, err = setup(cfg, cmd, stderr); err != nil {
					return err
				}
			}
			return action(ctx, cmd, s)
		}
	}
	withEngine := func(action func(cmd *cli.Command, s *session, eng *cipher.Engine) error) cli.ActionFunc {
		return withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
			eng, _, _, err := s.engine()
			if err != nil {
				return err
			}
			return action(cmd, s, eng)
		})
	}

	return &cli.Command{
		Name:        "subriot",
		Usage:       "Mono-alphabetic substitution cipher",
		Description: about,
		Version:     version,
		Reader:      stdin,
		Writer:      stdout,
		ErrWriter:   stderr,
		// Errors are reported by main; the default handler would exit here.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "26-letter key string (overrides SUBRIOT_KEY and the stored profile)",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Value:   cfg.Profile,
				Usage:   "Stored key profile to use",
			},
			&cli.StringFlag{
				Name:  "state-dir",
				Value: cfg.StateDir,
				Usage: "Directory holding state.json",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: cfg.LogLevel,
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			internal.SetColorEnabled(internal.ColorEnabled() && !cmd.Bool("no-color"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "encrypt",
				Aliases:   []string{"enc", "e"},
				Usage:     "Encrypt text from arguments or stdin",
				ArgsUsage: "[text ...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "group",
						Aliases: []string{"g"},
						Usage:   "Print letters only, in blocks of this size (e.g. 5)",
					},
					&cli.BoolFlag{
						Name:  "verify",
						Value: true,
						Usage: "Verify the round-trip before printing (--verify=false to skip)",
					},
				},
				Action: withEngine(func(cmd *cli.Command, s *session, eng *cipher.Engine) error {
					text, err := internal.ReadText(cmd.Args().Slice(), stdin)
					if err != nil {
						return err
					}
					return internal.RunEncrypt(stdout, eng, text, cmd.Int("group"), cmd.Bool("verify"))
				}),
			},
			{
				Name:      "decrypt",
				Aliases:   []string{"dec", "d"},
				Usage:     "Decrypt text from arguments or stdin",
				ArgsUsage: "[text ...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Value: true,
						Usage: "Verify that re-encrypting gives back the input (--verify=false to skip)",
					},
				},
				Action: withEngine(func(cmd *cli.Command, s *session, eng *cipher.Engine) error {
					text, err := internal.ReadText(cmd.Args().Slice(), stdin)
					if err != nil {
						return err
					}
					return internal.RunDecrypt(stdout, eng, text, cmd.Bool("verify"))
				}),
			},
			{
				Name:      "validate",
				Usage:     "Check whether a key string is a permutation of A-Z",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 1 {
						return fmt.Errorf("validate expects exactly one key argument")
					}
					return internal.RunValidate(stdout, cmd.Args().First())
				},
			},
			{
				Name:  "randomize",
				Usage: "Generate a uniformly random key",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Aliases: []string{"s"}, Usage: "Store the key in the active profile"},
					&cli.BoolFlag{Name: "qr", Usage: "Also print the key as a QR code"},
				},
				Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
					eng := cipher.NewEngine(cipher.WithLogger(s.logger))
					if cmd.Bool("qr") {
						if err := checkQRFits(); err != nil {
							return err
						}
					}
					return internal.RunRandomize(stdout, s.logger, eng, s.store, s.cfg.Profile, cmd.Bool("save"), cmd.Bool("qr"))
				}),
			},
			{
				Name:  "table",
				Usage: "Print the substitution table of the active key",
				Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
					_, k, _, err := s.engine()
					if err != nil {
						return err
					}
					internal.WriteTable(stdout, k)
					return nil
				}),
			},
			{
				Name:  "key",
				Usage: "Manage stored keys",
				Commands: []*cli.Command{
					{
						Name:  "show",
						Usage: "Print the active key and where it came from",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "qr", Usage: "Also print the key as a QR code"},
						},
						Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
							_, k, source, err := s.engine()
							if err != nil {
								return err
							}
							if cmd.Bool("qr") {
								if err := checkQRFits(); err != nil {
									return err
								}
							}
							return internal.RunKeyShow(stdout, k, source, cmd.Bool("qr"))
						}),
					},
					{
						Name:      "set",
						Usage:     "Validate a key and store it in the active profile",
						ArgsUsage: "<key>",
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "prompt", Usage: "Read the key from the terminal (entered twice, not echoed)"},
							&cli.BoolFlag{Name: "mask", Value: true, Usage: "With --prompt, show * while typing (--mask=false to disable)"},
						},
						Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
							var candidate string
							switch {
							case cmd.Bool("prompt"):
								k, err := internal.PromptForKey(stderr, cmd.Bool("mask"))
								if err != nil {
									return err
								}
								candidate = k.String()
							case cmd.NArg() == 1:
								candidate = cmd.Args().First()
							default:
								return fmt.Errorf("key set expects exactly one key argument or --prompt")
							}
							eng := cipher.NewEngine(cipher.WithLogger(s.logger))
							return internal.RunKeySet(stdout, s.logger, eng, s.store, s.cfg.Profile, candidate)
						}),
					},
					{
						Name:  "delete",
						Usage: "Remove the active profile's stored key",
						Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
							return internal.RunKeyDelete(stdout, s.store, s.cfg.Profile)
						}),
					},
					{
						Name:  "list",
						Usage: "List stored profiles",
						Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
							return internal.RunKeyList(stdout, s.store, s.cfg.Profile)
						}),
					},
				},
			},
			{
				Name:  "self-test",
				Usage: "Run the randomized round-trip harness",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "sets", Value: 4, Usage: "Number of random keys to check"},
					&cli.IntFlag{Name: "length", Value: 48, Usage: "Length of each random text"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					failed := internal.RunSelfTest(stdout, nil, cmd.Int("sets"), cmd.Int("length"), "== Self-test: random keys ==")
					if failed > 0 {
						return errSelfTestFailed
					}
					return nil
				},
			},
		},
	}
}

func main() {
	cfg := internal.LoadConfig()
	app := newApp(cfg, os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		os.Exit(report(os.Stderr, err))
	}
}

// report prints err and returns the process exit status: 1 for an invalid
// key or failed self-test, 2 for everything else.
func report(w io.Writer, err error) int {
	switch {
	case errors.Is(err, errSelfTestFailed):
		return 1
	case errors.Is(err, cipher.ErrInvalidKey):
		fmt.Fprintf(w, "error: %v\n", err)
		return 1
	default:
		fmt.Fprintf(w, "error: %v\n", err)
		return 2
	}
}

func checkQRFits() error {
	width, err := internal.QRWidth(cipher.Alphabet)
	if err != nil {
		return err
	}
	if !internal.FitsTerminal(int(syscall.Stdout), width) {
		return fmt.Errorf("terminal is narrower than the %d-column QR code", width)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
