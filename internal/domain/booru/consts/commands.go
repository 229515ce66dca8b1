// Package consts contains constants for the booru domain
package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart        = Command{Name: "start", Description: "Start the bot"}
	CommandHelp         = Command{Name: "help", Description: "Show help message"}
	CommandSettings     = Command{Name: "settings", Description: "Choose a search source"}
	CommandSubscription = Command{Name: "subscription", Description: "Show subscription status"}
	CommandTimer        = Command{Name: "timer", Description: "Configure daily auto-send"}
	CommandCancel       = Command{Name: "cancel", Description: "Cancel the current dialog"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
	CommandSettings,
	CommandSubscription,
	CommandTimer,
	CommandCancel,
}

// Callback data prefixes for inline keyboards
const (
	CallbackSetSource   = "set_source_"
	CallbackTimerSource = "timer_source_"
	CallbackToggleSub   = "toggle_subscription"
)
