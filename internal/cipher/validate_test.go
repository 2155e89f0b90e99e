package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckKey(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		shouldErr bool
		errMsg    string
	}{
		{name: "identity", candidate: Alphabet},
		{name: "qwerty layout", candidate: "QWERTYUIOPASDFGHJKLZXCVBNM"},
		{name: "lowercase", candidate: "qwertyuiopasdfghjklzxcvbnm"},
		{name: "mixed case", candidate: "QwErTyUiOpAsDfGhJkLzXcVbNm"},
		{name: "empty", candidate: "", shouldErr: true, errMsg: "key is empty"},
		{name: "too short", candidate: Alphabet[:25], shouldErr: true, errMsg: "length must be exactly 26"},
		{name: "too long", candidate: Alphabet + "A", shouldErr: true, errMsg: "length must be exactly 26"},
		{
			name:      "digit",
			candidate: "QWERTYUIOPASDFGHJKLZXCVBN1",
			shouldErr: true,
			errMsg:    `character '1' at position 26 is not a letter A-Z`,
		},
		{
			name:      "space",
			candidate: "QWERTYUIOPASDFGHJ LZXCVBNM",
			shouldErr: true,
			errMsg:    "at position 18 is not a letter",
		},
		{
			name:      "duplicate letter",
			candidate: "QWERTYUIOPASDFGHJKLZXCVBNQ",
			shouldErr: true,
			errMsg:    "letter Q repeated at positions 1 and 26",
		},
		{
			name:      "duplicate across case",
			candidate: "aBCDEFGHIJKLMNOPQRSTUVWXYA",
			shouldErr: true,
			errMsg:    "letter A repeated",
		},
		{
			name:      "non-ascii letter",
			candidate: "ÄBCDEFGHIJKLMNOPQRSTUVWXYZ",
			shouldErr: true,
			errMsg:    "not a letter A-Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckKey(tt.candidate)
			if tt.shouldErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.False(t, Validate(tt.candidate))
			} else {
				assert.NoError(t, err)
				assert.True(t, Validate(tt.candidate))
			}
		})
	}
}

func TestIsKey_SkipsEmpty(t *testing.T) {
	assert.NoError(t, IsKey.Validate(""))
	assert.Error(t, IsKey.Validate(42))
	assert.Error(t, IsKey.Validate("ABC"))
}

func TestValidate_EveryRotationIsAPermutation(t *testing.T) {
	for shift := 0; shift < Size; shift++ {
		candidate := Alphabet[shift:] + Alphabet[:shift]
		assert.True(t, Validate(candidate), candidate)
	}
}
