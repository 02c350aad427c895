package prompt

import (
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		message     string
		wantParts   []string
	}{
		{
			name:        "includes display name twice",
			displayName: "Alice",
			message:     "I feel anxious today",
			wantParts: []string{
				`talking to Alice`,
				`Always address the user as "Alice"`,
				"User message: I feel anxious today",
			},
		},
		{
			name:        "blank name falls back to neutral address",
			displayName: "   ",
			message:     "hello",
			wantParts: []string{
				"talking to there",
				`Always address the user as "there"`,
			},
		},
		{
			name:        "persona framing is always present",
			displayName: "Bob",
			message:     "anything",
			wantParts: []string{
				"You are Perry, a compassionate mental health assistant",
				"created by Ankit",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.displayName, tt.message)
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Compose() missing %q", part)
				}
			}
		})
	}
}

func TestComposeStateless(t *testing.T) {
	// Two calls with the same inputs produce identical prompts; no
	// hidden state accumulates between exchanges.
	a := Compose("Alice", "first message")
	b := Compose("Alice", "first message")
	if a != b {
		t.Error("Compose() is not deterministic")
	}

	c := Compose("Alice", "second message")
	if strings.Contains(c, "first message") {
		t.Error("Compose() leaked a previous message into the prompt")
	}
}

func TestWelcome(t *testing.T) {
	got := Welcome("Alice")
	if !strings.Contains(got, "Hi Alice! How are you feeling today?") {
		t.Errorf("Welcome() missing greeting, got %q", got)
	}
	if !strings.Contains(got, "Welcome to Perry") {
		t.Error("Welcome() missing header")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "Alice"},
		{"  Alice  ", "Alice"},
		{"", "there"},
		{"   ", "there"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
