package components

// Key Command Groups:
// 1. Global - available in every view
// 2. Session list - navigation and session management
// 3. Chat - composing and scrolling; printable keys go to the input

// Global keys
const (
	KeyQuit    = "ctrl+c"
	KeyQuitAlt = "q"

	KeyEscape = "esc"
	KeyEnter  = "enter"
	KeyTab    = "tab"
)

// Navigation keys
const (
	KeyUp       = "up"
	KeyDown     = "down"
	KeyPageUp   = "pgup"
	KeyPageDown = "pgdown"
	KeyHome     = "home"
	KeyEnd      = "end"
)

// Vim-style navigation
const (
	KeyVimUp     = "k"
	KeyVimDown   = "j"
	KeyVimTop    = "g"
	KeyVimBottom = "G"
)

// Session list keys
const (
	KeyNewChat      = "n"
	KeyNewAgentChat = "a"
	KeyRename       = "r"
	KeyDelete       = "d"
	KeyRefresh      = "R"
)

// Delete confirmation keys
const (
	KeyConfirmYes = "y"
	KeyConfirmNo  = "n"
)

// Chat view scrolling (Alt so plain keys reach the input)
const (
	KeyChatScrollUp   = "alt+up"
	KeyChatScrollDown = "alt+down"
)

// IsGlobalQuitKey checks if a key always quits, regardless of the view.
func IsGlobalQuitKey(key string) bool {
	return key == KeyQuit
}
