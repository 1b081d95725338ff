package ai

import (
	"fmt"
	"strings"
)

// failureKind is the closed set of model-failure categories. Classification
// is substring-based over the provider's error text; upstream does not expose
// structured codes, so the matching stays deliberately string-shaped.
type failureKind int

const (
	failureUnknown failureKind = iota
	failureAPIKey
	failureNetwork
	failurePermission
	failureQuota
	failureNotFound
	failureSafety
	failureTimeout
)

// classifyFailure maps an error message to a failure category. Pure function;
// the match order mirrors the precedence of the user-facing messages.
func classifyFailure(msg string) failureKind {
	switch {
	case strings.Contains(msg, "API key"):
		return failureAPIKey
	case strings.Contains(msg, "network") || strings.Contains(msg, "Failed to fetch"):
		return failureNetwork
	case strings.Contains(msg, "PERMISSION_DENIED"):
		return failurePermission
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return failureQuota
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404"):
		return failureNotFound
	case strings.Contains(msg, "blocked") || strings.Contains(msg, "safety"):
		return failureSafety
	case strings.Contains(msg, "timeout"):
		return failureTimeout
	default:
		return failureUnknown
	}
}

// failureMessage renders the user-facing literal for a failure category. The
// unknown case includes the raw error text for diagnosis.
func failureMessage(kind failureKind, details string) string {
	switch kind {
	case failureAPIKey:
		return "**API Key Error**: It looks like there's an issue with the API key. Please check if it's valid and properly configured."
	case failureNetwork:
		return "**Network Error**: I couldn't connect to the AI service. Please check your internet connection and try again."
	case failurePermission:
		return "**Permission Error**: Your API key doesn't have permission to access this service. You may need to enable the Gemini API in your Google Cloud Console."
	case failureQuota:
		return "**Quota Exceeded**: We've hit the usage limit for the AI service. Please try again in a few minutes."
	case failureNotFound:
		return "**Model Not Found**: The AI model couldn't be found. Please try using a different model in the configuration."
	case failureSafety:
		return "**Content Filtered**: Your request was blocked by the AI's safety filters. Please try rephrasing your question."
	case failureTimeout:
		return "**Request Timeout**: The AI service took too long to respond. Please try again with a simpler question."
	default:
		return fmt.Sprintf("**Oops!** I'm having trouble processing your request right now. Please try again in a moment! 🧠✨\n\nTechnical details (for debugging): %s", details)
	}
}
