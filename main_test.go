package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subriot/internal"
	"subriot/internal/cipher"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stateDir, stdin string, args ...string) runResult {
	t.Helper()
	cfg := &internal.Config{
		Profile:  internal.DefaultProfile,
		StateDir: stateDir,
		LogLevel: "warn",
	}
	var stdout, stderr bytes.Buffer
	app := newApp(cfg, strings.NewReader(stdin), &stdout, &stderr)
	err := app.Run(context.Background(), append([]string{"subriot"}, args...))
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestCLI_EncryptDecrypt(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "", "--key", "QWERTYUIOPASDFGHJKLZXCVBNM", "encrypt", "HELLO")
	require.NoError(t, res.err)
	assert.Equal(t, "ITSSG\n", res.stdout)

	res = run(t, dir, "", "--key", "qwertyuiopasdfghjklzxcvbnm", "decrypt", "ITSSG")
	require.NoError(t, res.err)
	assert.Equal(t, "HELLO\n", res.stdout)

	res = run(t, dir, "Hello, World!\n", "--key", "ZYXWVUTSRQPONMLKJIHGFEDCBA", "encrypt")
	require.NoError(t, res.err)
	assert.Equal(t, "Svool, Dliow!\n", res.stdout)

	res = run(t, dir, "", "--key", "ZYXWVUTSRQPONMLKJIHGFEDCBA", "encrypt", "--group", "5", "Hello,", "World!")
	require.NoError(t, res.err)
	assert.Equal(t, "Svool Dliow\n", res.stdout)
}

func TestCLI_BytesOutsideUTF8(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "caf\xe9 ok\n", "--key", "QWERTYUIOPASDFGHJKLZXCVBNM", "encrypt")
	require.NoError(t, res.err)
	assert.Equal(t, "eqy\xe9 ga\n", res.stdout)

	res = run(t, dir, "eqy\xe9 ga\n", "--key", "QWERTYUIOPASDFGHJKLZXCVBNM", "decrypt")
	require.NoError(t, res.err)
	assert.Equal(t, "caf\xe9 ok\n", res.stdout)

	res = run(t, dir, "caf\xe9\n", "encrypt")
	require.NoError(t, res.err)
	assert.Equal(t, "caf\xe9\n", res.stdout)
}

func TestCLI_InvalidEnvKeyOnlyBlocksKeyedCommands(t *testing.T) {
	dir := t.TempDir()
	withBadKey := func(args ...string) runResult {
		t.Helper()
		cfg := &internal.Config{
			Key:      "ABC",
			Profile:  internal.DefaultProfile,
			StateDir: dir,
			LogLevel: "warn",
		}
		var stdout, stderr bytes.Buffer
		err := newApp(cfg, strings.NewReader(""), &stdout, &stderr).Run(context.Background(), append([]string{"subriot"}, args...))
		return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
	}

	res := withBadKey("randomize", "--save")
	require.NoError(t, res.err)
	assert.True(t, cipher.Validate(strings.SplitN(res.stdout, "\n", 2)[0]))

	res = withBadKey("key", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "* default")

	res = withBadKey("key", "delete")
	require.NoError(t, res.err)

	res = withBadKey("encrypt", "x")
	assert.ErrorIs(t, res.err, cipher.ErrInvalidKey)
}

func TestCLI_HelpShowsBanner(t *testing.T) {
	res := run(t, t.TempDir(), "", "--help")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "SubRiot — Substitution Cipher - "+version)
}

func TestCLI_IdentityByDefault(t *testing.T) {
	res := run(t, t.TempDir(), "", "encrypt", "Nothing changes.")
	require.NoError(t, res.err)
	assert.Equal(t, "Nothing changes.\n", res.stdout)
}

func TestCLI_InvalidKey(t *testing.T) {
	res := run(t, t.TempDir(), "", "--key", "ABC", "encrypt", "x")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, cipher.ErrInvalidKey)
	assert.Empty(t, res.stdout)

	var stderr bytes.Buffer
	assert.Equal(t, 1, report(&stderr, res.err))
	assert.Contains(t, stderr.String(), "error: key must be exactly 26 unique A-Z letters")
}

func TestCLI_Validate(t *testing.T) {
	res := run(t, t.TempDir(), "", "validate", "QWERTYUIOPASDFGHJKLZXCVBNM")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "valid: QWERTYUIOPASDFGHJKLZXCVBNM"))

	res = run(t, t.TempDir(), "", "validate", "QWERTY")
	assert.ErrorIs(t, res.err, cipher.ErrInvalidKey)
	assert.Equal(t, "invalid: length must be exactly 26\n", res.stdout)

	res = run(t, t.TempDir(), "", "validate")
	require.Error(t, res.err)
	assert.Equal(t, 2, report(&bytes.Buffer{}, res.err))
}

func TestCLI_ProfileLifecycle(t *testing.T) {
	dir := t.TempDir()

	res := run(t, dir, "", "--profile", "work", "key", "set", "zyxwvutsrqponmlkjihgfedcba")
	require.NoError(t, res.err)
	assert.Equal(t, "saved to profile work: ZYXWVUTSRQPONMLKJIHGFEDCBA\n", res.stdout)

	res = run(t, dir, "", "--profile", "work", "encrypt", "Hello, World!")
	require.NoError(t, res.err)
	assert.Equal(t, "Svool, Dliow!\n", res.stdout)

	res = run(t, dir, "", "--profile", "work", "key", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ZYXWVUTSRQPONMLKJIHGFEDCBA\nsource: profile")

	res = run(t, dir, "", "randomize", "--save")
	require.NoError(t, res.err)
	generated := strings.SplitN(res.stdout, "\n", 2)[0]
	assert.True(t, cipher.Validate(generated))

	res = run(t, dir, "", "key", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "* default")
	assert.Contains(t, res.stdout, "  work")

	res = run(t, dir, "", "encrypt", "abc")
	require.NoError(t, res.err)
	k := cipher.MustParseKey(generated)
	assert.Equal(t, k.Encrypt("abc")+"\n", res.stdout)

	res = run(t, dir, "", "--profile", "work", "key", "delete")
	require.NoError(t, res.err)

	res = run(t, dir, "", "--profile", "work", "key", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "source: identity")
}

func TestCLI_Table(t *testing.T) {
	res := run(t, t.TempDir(), "", "--key", "QWERTYUIOPASDFGHJKLZXCVBNM", "table")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Cipher:  Q W E R T Y U I O P A S D F G H J K L Z X C V B N M")
}

func TestCLI_SelfTest(t *testing.T) {
	res := run(t, t.TempDir(), "", "self-test", "--sets", "2", "--length", "20")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Total sets: 2, Failed: 0")
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 1, report(&buf, errSelfTestFailed))
	assert.Empty(t, buf.String())
}
