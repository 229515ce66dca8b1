// Package entities contains domain entities
package entities

// Post represents a normalized search result from any booru backend.
// Caption carries the backend-specific payload consumed by the source's
// caption renderer.
type Post struct {
	ID         int64
	FileURL    string
	PreviewURL string
	Caption    CaptionSource
}

// CaptionSource holds the backend-specific attribution fields.
// Each backend fills only the fields it has.
type CaptionSource struct {
	Artist  string   // danbooru tag_string_artist
	Artists []string // e621/e926 tags.artist
	Owner   string   // rule34 owner
	Tags    string   // rule34 flat tag string
}

// UserSettings represents one persisted row per Telegram user
type UserSettings struct {
	ID             int64   `gorm:"primaryKey;column:id"`
	Source         string  `gorm:"column:source;default:danbooru"`
	IsSubscriber   bool    `gorm:"column:is_subscriber;default:false"`
	AutoSendTime   *string `gorm:"column:auto_send_time"`
	AutoSendSource *string `gorm:"column:auto_send_source"`
	AutoSendTags   *string `gorm:"column:auto_send_tags"`
}

// TableName overrides the gorm table name
func (UserSettings) TableName() string {
	return "users"
}

// HasAutoSend reports whether the user has a fully configured auto-send schedule
func (s *UserSettings) HasAutoSend() bool {
	return s.AutoSendTime != nil && s.AutoSendSource != nil && s.AutoSendTags != nil
}
