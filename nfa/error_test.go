package nfa

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantFull string
	}{
		{
			name:     "with offset",
			err:      &Error{Kind: ErrorBrace, Pattern: `a{2`, Offset: 3},
			wantFull: `regex "a{2": invalid quantifier braces at offset 3`,
		},
		{
			name:     "with detail",
			err:      &Error{Kind: ErrorProperty, Pattern: `\p{X}`, Offset: 5, Detail: "X"},
			wantFull: `regex "\\p{X}": unknown Unicode property: X at offset 5`,
		},
		{
			name:     "without offset",
			err:      &Error{Kind: ErrorComplexity, Pattern: "", Offset: -1},
			wantFull: `regex "": search exceeded complexity limit`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.wantFull {
				t.Errorf("Error() = %q, want %q", got, tt.wantFull)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := fmt.Errorf("compile: %w", &Error{Kind: ErrorRange, Pattern: "[b-a]", Offset: 4})

	if !errors.Is(err, ErrorRange) {
		t.Error("errors.Is should match the kind through wrapping")
	}
	if errors.Is(err, ErrorBrack) {
		t.Error("errors.Is should not match another kind")
	}
	var re *Error
	if !errors.As(err, &re) || re.Pattern != "[b-a]" {
		t.Errorf("errors.As = %v", re)
	}
}

func TestErrorKind_Error(t *testing.T) {
	for k := ErrorCollate; k <= ErrorInternal; k++ {
		if _, ok := kindText[k]; !ok {
			t.Errorf("kind %d has no text", k)
		}
	}
	if got := ErrorKind(200).Error(); got != "regex error 200" {
		t.Errorf("unknown kind = %q", got)
	}
	if !errors.Is(ErrComplexity, ErrorComplexity) {
		t.Error("ErrComplexity must be the complexity kind")
	}
}
