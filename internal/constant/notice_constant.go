package constant

// Fixed user-facing notices. The client only ever sees one of these; the
// underlying error is logged with full detail and never leaks past the API.
const (
	NoticeModelFailure = "I apologize, but I'm having trouble responding right now. Please try again."

	NoticeModelConfig = "I apologize, but there seems to be an issue with my configuration. Please check the API key."

	NoticeSessionReset = "There seems to be an issue with your chat session. Please try starting a new chat."

	NoticeSaveFailure = "There was an issue saving your message. Please try again."

	NoticeSystemTrouble = "I apologize, but I'm having trouble with the chat system. Please refresh the page and try again."
)
