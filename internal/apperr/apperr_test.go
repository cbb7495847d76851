package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"Nil", nil, KindUnknown},
		{"Plain error", base, KindUnknown},
		{"Direct", New(KindValidation, "bad url"), KindValidation},
		{"Wrapped once", fmt.Errorf("outer: %w", Wrap(KindUpstream, "search failed", base)), KindUpstream},
		{"Nested picks outermost", Wrap(KindIntegrity, "blocked", New(KindUpstream, "inner")), KindIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageAndUnwrap(t *testing.T) {
	base := errors.New("quota exceeded upstream")
	err := fmt.Errorf("analyze: %w", Wrap(KindAIQuota, "Gemini API quota exceeded. Please retry later.", base))

	if got := Message(err); got != "Gemini API quota exceeded. Please retry later." {
		t.Errorf("Message() = %q", got)
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped cause to be reachable with errors.Is")
	}
	if got := Message(base); got != base.Error() {
		t.Errorf("Message(plain) = %q, want %q", got, base.Error())
	}
}
