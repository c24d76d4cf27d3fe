// Package validate checks incoming questions before any provider is contacted.
// Validation errors are user-safe, localized messages — handlers surface them verbatim.
package validate

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxQuestionRunes is the longest question accepted, counted in runes
// (questions are typically Chinese, so byte length would be misleading).
const MaxQuestionRunes = 200

// Sentinel errors — callers check with errors.Is. The error text doubles as
// the user-facing message, matching what the front-end displays.
var (
	ErrEmpty     = errors.New("问题不能为空")
	ErrTooLong   = errors.New("问题长度不能超过200个字符")
	ErrForbidden = errors.New("问题内容不适合儿童，请重新输入")
)

// forbiddenWords is the fixed denylist of unsafe topic words.
// Substring match, case-insensitive for any latin content mixed in.
var forbiddenWords = []string{"暴力", "色情", "政治", "赌博"}

// Clean validates a raw question and returns the trimmed text.
// It performs no other transformation and has no side effects.
func Clean(question string) (string, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return "", ErrEmpty
	}

	if utf8.RuneCountInString(trimmed) > MaxQuestionRunes {
		return "", ErrTooLong
	}

	lower := strings.ToLower(trimmed)
	for _, word := range forbiddenWords {
		if strings.Contains(lower, word) {
			return "", ErrForbidden
		}
	}

	return trimmed, nil
}
