package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Bootstrap content for a first-time user. The greeting is the lone
	// assistant message inside the default session.
	WelcomeSessionTitle = "Welcome Chat"
	WelcomeGreeting     = "Hi! I'm MidGPT. Ask me anything, or toggle image mode to generate a picture."

	GenerationModeText  = "text"
	GenerationModeImage = "image"
)
