package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// buildProfilePrompt returns the embedded profile generation prompt.
func buildProfilePrompt() string {
	return profilePrompt
}

// buildProfileRequest builds the user message for a profile draft request.
// This is shared across all AI providers.
func buildProfileRequest(name string) string {
	return "Write the profile for: " + name
}

// parseProfileDraft decodes a provider response and rejects drafts
// without a biography.
func parseProfileDraft(content string) (*ProfileDraft, error) {
	var draft ProfileDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, err
	}
	if strings.TrimSpace(draft.Biography) == "" {
		return nil, errors.New("biography field is empty")
	}
	return &draft, nil
}

// retryFeedback builds the corrective user message appended after an
// unparseable response.
func retryFeedback(parseErr error) string {
	return fmt.Sprintf("Invalid response: %v. Please fix the JSON and try again. Remember to escape quotes inside strings with backslash.", parseErr)
}
