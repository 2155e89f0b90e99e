package internal

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"subriot/internal/cipher"
)

func TestRunSelfTest(t *testing.T) {
	var buf bytes.Buffer
	failed := RunSelfTest(&buf, cipher.SeededRand(99), 3, 40, "Self-test")

	out := buf.String()
	assert.Equal(t, 0, failed)
	assert.True(t, strings.HasPrefix(out, "Self-test\n"))
	assert.Equal(t, 3, strings.Count(out, "Result: PASSED"))
	assert.Contains(t, out, "Set 3:")
	assert.Contains(t, out, "Total sets: 3, Failed: 0")
}

func TestRunSelfTest_SingleSet(t *testing.T) {
	var buf bytes.Buffer
	failed := RunSelfTest(&buf, nil, 1, 10, "")

	out := buf.String()
	assert.Equal(t, 0, failed)
	assert.NotContains(t, out, "Set 1:")
	assert.NotContains(t, out, "Total sets")
	assert.Contains(t, out, "Result: PASSED")
}

func TestRandomText(t *testing.T) {
	r := cipher.SeededRand(5)
	text := randomText(r, 64)
	assert.Equal(t, 64, utf8.RuneCountInString(text))
	for _, ch := range text {
		assert.Contains(t, string(selfTestCharset), string(ch))
	}
}
