package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"perry-be/internal/constant"
)

func TestDeriveSessionTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "short message kept as is",
			message: "I had a rough day",
			want:    "I had a rough day",
		},
		{
			name:    "whitespace runs collapse",
			message: "  I   had\n\ta rough\tday  ",
			want:    "I had a rough day",
		},
		{
			name:    "empty message falls back to default",
			message: "",
			want:    constant.DefaultSessionTitle,
		},
		{
			name:    "whitespace only falls back to default",
			message: "   \n\t  ",
			want:    constant.DefaultSessionTitle,
		},
		{
			name:    "long message truncated with ellipsis",
			message: strings.Repeat("a", 80),
			want:    strings.Repeat("a", constant.SessionTitleMaxLen) + "...",
		},
		{
			name:    "trailing space trimmed before ellipsis",
			message: strings.Repeat("a", constant.SessionTitleMaxLen-1) + " word that spills over",
			want:    strings.Repeat("a", constant.SessionTitleMaxLen-1) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSessionTitle(tt.message)
			if got != tt.want {
				t.Errorf("DeriveSessionTitle(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestDeriveSessionTitleCutsAtRuneBoundary(t *testing.T) {
	message := strings.Repeat("é", 100)

	got := DeriveSessionTitle(message)

	if !utf8.ValidString(got) {
		t.Fatalf("derived title is not valid UTF-8: %q", got)
	}
	want := strings.Repeat("é", constant.SessionTitleMaxLen) + "..."
	if got != want {
		t.Errorf("DeriveSessionTitle = %q, want %q", got, want)
	}
}
