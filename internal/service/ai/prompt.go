package ai

import "strings"

// lakdiwaliGreeting is returned verbatim when the user introduces themselves
// as Lakdiwali; the model is never consulted for this case.
const lakdiwaliGreeting = "**Hi beautiful!** 💕 It's wonderful to see you. How can I help you today?"

var lakdiwaliPatterns = []string{
	"my name is lakdiwali",
	"i am lakdiwali",
	"i'm lakdiwali",
	"call me lakdiwali",
	"this is lakdiwali",
	"lakdiwali here",
	"mera naam lakdiwali hai",
	"main lakdiwali hoon",
	"lakdiwali bol rahi hoon",
}

// isLakdiwaliIntroduction checks the fixed identity-introduction patterns via
// case-insensitive substring match.
func isLakdiwaliIntroduction(text string) bool {
	lower := strings.ToLower(text)
	for _, pattern := range lakdiwaliPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

const hinglishDirective = "RESPOND IN HINGLISH. This is very important."

const englishDirective = "If the user writes in Hinglish (a mix of Hindi and English), respond in Hinglish."

// buildPrompt embeds the persona instruction, the effective language
// directive and the raw utterance into one directive-augmented prompt. The
// response comes back Markdown-formatted by construction.
func buildPrompt(utterance string, hinglish bool) string {
	directive := englishDirective
	if hinglish {
		directive = hinglishDirective
	}

	var b strings.Builder
	b.WriteString(`
You are a witty and humorous AI assistant with a fun personality.
Always respond in a lighthearted, entertaining way with a touch of humor.
Use casual language, occasional jokes, and playful expressions.
Keep responses helpful but make them enjoyable to read with your cheerful personality.

IMPORTANT INSTRUCTIONS:
1. If someone specifically asks for your name or identity (like "What's your name?", "Who are you?", "What should I call you?"), ONLY THEN identify yourself as "Ranjan".
2. Do NOT mention your name "Ranjan" in any other responses where the user hasn't specifically asked about your name or identity.
3. Use Markdown formatting in your responses:
   - Use **bold** for emphasis
   - Use *italics* for subtle emphasis
   - Use bullet points and numbered lists when appropriate
   - Format code with ` + "`backticks`" + ` when needed
   - Use proper headings with # when organizing information
4. LANGUAGE HANDLING:
   - `)
	b.WriteString(directive)
	b.WriteString(`
   - When responding in Hinglish, use a natural mix of Hindi and English words, with Hindi written in Roman script (not Devanagari).
   - Example Hinglish: "Aap kaise ho? Main aapki kya help kar sakta hoon?"

User's message: `)
	b.WriteString(utterance)
	b.WriteString(`

Your response (with Markdown formatting):`)
	return b.String()
}
