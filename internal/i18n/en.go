package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// UI - Panel titles
	"panel.chat":          "Chat",
	"panel.conversations": "Conversations",
	"panel.attachments":   "Attachments",

	// UI - Status bar
	"status.ready":       "Ready",
	"status.sending":     "Waiting for reply... (Enter to cancel)",
	"status.loading":     "Loading conversation...",
	"status.cancelled":   "Request cancelled",
	"status.new":         "New conversation",
	"status.vision_on":   "Vision on",
	"status.vision_off":  "Vision off",
	"status.tokens":      "~%d tokens",
	"status.attachments": "%d attachment(s)",

	// UI - Input
	"input.placeholder": "Type a message... (Enter to send)",
	"input.attach":      "Image path to attach:",

	// UI - Keybindings
	"keys.send":   "enter send/cancel",
	"keys.new":    "ctrl+n new",
	"keys.delete": "ctrl+d delete",
	"keys.vision": "ctrl+v vision",
	"keys.attach": "ctrl+o attach",
	"keys.quit":   "ctrl+c quit",

	// Conversation list
	"conv.empty":    "No conversations yet",
	"conv.loading":  "Loading conversations...",
	"conv.untitled": "(untitled)",

	// REPL commands
	"cmd.help":        "Show available commands",
	"cmd.new":         "Start a new conversation",
	"cmd.list":        "List conversations",
	"cmd.open":        "Open a conversation by number or id",
	"cmd.delete":      "Delete a conversation",
	"cmd.vision":      "Toggle vision mode (on/off)",
	"cmd.attach":      "Attach an image file",
	"cmd.attachments": "List pending attachments",
	"cmd.remove":      "Remove a pending attachment by number",
	"cmd.quit":        "Exit",

	// Auth
	"auth.email":            "Email:",
	"auth.password":         "Password:",
	"auth.username":         "Username:",
	"auth.confirm_password": "Confirm password:",
	"auth.phrase":           "Security phrase:",
	"auth.logged_in":        "Logged in as %s",
	"auth.logged_out":       "Session cleared",
	"auth.registered":       "Account created for %s",
	"auth.required":         "Session expired, please run: moia login",

	// Errors
	"error.send":   "Message failed: %s",
	"error.load":   "Could not load conversation: %s",
	"error.delete": "Could not delete conversation: %s",
	"error.attach": "Could not attach file: %s",
}
