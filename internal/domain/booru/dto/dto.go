// Package dto contains data transfer objects for the booru domain
package dto

// InlineSearchRequest represents an incoming inline query
type InlineSearchRequest struct {
	UserID int64  `json:"userId"`
	Query  string `json:"query"`
	Offset string `json:"offset"`
}

// InlinePhotoItem represents one photo result for an inline answer
type InlinePhotoItem struct {
	ID       string `json:"id"`
	PhotoURL string `json:"photoUrl"`
	ThumbURL string `json:"thumbUrl"`
	Caption  string `json:"caption"`
}

// InlineSearchResponse represents the outcome of an inline search.
// When Info is non-empty the answer is a single informational article
// instead of photo results.
type InlineSearchResponse struct {
	Items      []InlinePhotoItem `json:"items"`
	Info       string            `json:"info,omitempty"`
	InfoTitle  string            `json:"infoTitle,omitempty"`
	NextOffset string            `json:"nextOffset,omitempty"`
}

// CommandResponse represents a response for bot commands
type CommandResponse struct {
	Message string `json:"message"`
}

// SourceOption represents one source in a selection keyboard
type SourceOption struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Restricted bool   `json:"restricted"`
}

// SettingsMenuResponse represents the /settings menu contents
type SettingsMenuResponse struct {
	Message string         `json:"message"`
	Options []SourceOption `json:"options"`
}

// SubscriptionMenuResponse represents the /subscription menu contents
type SubscriptionMenuResponse struct {
	Message      string `json:"message"`
	IsSubscriber bool   `json:"isSubscriber"`
}
