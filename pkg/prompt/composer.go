package prompt

import (
	"fmt"
	"strings"

	"perry-be/internal/constant"
)

// Compose builds the full single-shot prompt for one user message.
// The persona framing is fixed; only the display name and the message
// vary between calls.
func Compose(displayName, userMessage string) string {
	name := DisplayName(displayName)
	return fmt.Sprintf(constant.PersonaPromptTemplate, name, name, userMessage)
}

// Welcome builds the greeting message seeded into an empty session.
func Welcome(displayName string) string {
	return fmt.Sprintf(constant.WelcomeMessageTemplate, DisplayName(displayName))
}

// DisplayName normalizes what the model may call the user. Empty or
// blank names fall back to a neutral address so the prompt never leaks
// an empty placeholder.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}
