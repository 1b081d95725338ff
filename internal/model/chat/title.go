package chat

// DefaultTitle is used when a transcript has no user text to derive one from.
const DefaultTitle = "New Chat"

// maxTitleLength caps generated titles before the ellipsis is appended.
const maxTitleLength = 30

// GenerateTitle derives a chat title from the first user message, truncated
// to 30 characters with an ellipsis suffix when longer. Transcripts without
// any user message yield DefaultTitle.
func GenerateTitle(messages []Message) string {
	if len(messages) == 0 {
		return DefaultTitle
	}

	var firstUserText string
	for _, m := range messages {
		if m.Sender == SenderUser {
			firstUserText = m.Text
			break
		}
	}
	if firstUserText == "" {
		return DefaultTitle
	}

	runes := []rune(firstUserText)
	if len(runes) <= maxTitleLength {
		return firstUserText
	}
	return string(runes[:maxTitleLength]) + "..."
}
