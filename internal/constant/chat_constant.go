package constant

const (
	// User-facing message when the shared document index returns nothing.
	SystemIndexEmptyMessage = "Please contact support."

	// Prefix of every user-facing error signal pushed through the reporter.
	UIErrorPrefix = "UI:- "

	// Provenance list appended after a non-empty batch answer, one entry per
	// consulted source. Kept as raw HTML because the frontend renders answers
	// as markup.
	SourceListOpen  = "<ul style='margin-top:5px;color:blue;font-size:0.8rem;'>"
	SourceListClose = "</ul>"
	SourceItemOpen  = "<li>"
	SourceItemClose = "</li>"
)

const ChatAnswerPromptV1 = `You are a helpful assistant. Answer the user's question using ONLY the
provided context sections and the conversation so far.

RULES:
- Ground every claim in the context; do not add outside knowledge.
- If the context does not cover the question, say so briefly.
- Keep answers concise (2-5 sentences) and conversational.
- Do not mention the context sections or these rules in your answer.

CONTEXT:
%s

CONVERSATION SO FAR:
%s

QUESTION:
%s`
