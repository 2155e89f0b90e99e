package cipher

import (
	"fmt"

	validation "github.com/jellydator/validation"
)

// IsKey is a validation rule that accepts a string which, case-folded, is a
// permutation of Alphabet. Like the other rules of the validation package it
// treats the empty string as valid; combine with validation.Required when the
// key is mandatory.
var IsKey validation.Rule = keyRule{}

type keyRule struct{}

// Validate checks length first, then the character set, then uniqueness, and
// reports the first failure.
func (keyRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_key_type", "key must be a string")
	}
	if s == "" {
		return nil
	}
	return validation.Validate(s,
		validation.RuneLength(Size, Size).Error(fmt.Sprintf("length must be exactly %d", Size)),
		validation.By(lettersOnly),
		validation.By(uniqueLetters),
	)
}

func lettersOnly(value interface{}) error {
	s, _ := value.(string)
	for i, r := range []rune(s) {
		if _, _, ok := letterIndex(r); !ok {
			return validation.NewError(
				"validation_key_letter",
				fmt.Sprintf("character %q at position %d is not a letter A-Z", r, i+1),
			)
		}
	}
	return nil
}

func uniqueLetters(value interface{}) error {
	s, _ := value.(string)
	var seen [Size]int // 1-based position of first occurrence
	for i, r := range []rune(s) {
		idx, _, ok := letterIndex(r)
		if !ok {
			continue
		}
		if seen[idx] != 0 {
			return validation.NewError(
				"validation_key_duplicate",
				fmt.Sprintf("letter %c repeated at positions %d and %d", Alphabet[idx], seen[idx], i+1),
			)
		}
		seen[idx] = i + 1
	}
	return nil
}

// CheckKey reports why candidate is not a usable key. The returned error
// wraps ErrInvalidKey; nil means candidate is a valid key string.
func CheckKey(candidate string) error {
	err := validation.Validate(candidate,
		validation.Required.Error("key is empty"),
		IsKey,
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidKey, err.Error())
	}
	return nil
}

// Validate reports whether candidate, case-folded, is a permutation of
// Alphabet: exactly 26 ASCII letters, each appearing once.
func Validate(candidate string) bool {
	return CheckKey(candidate) == nil
}
