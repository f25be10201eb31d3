package model

// Tag is a server-side tag record.
type Tag struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	BookmarkCount int    `json:"bookmarkCount"`
}

// UserProfile holds account-level preferences. Read-only for the client.
type UserProfile struct {
	Theme                 string `json:"theme"`
	BookmarkDateDisplay   string `json:"bookmark_date_display"`
	BookmarkLinkTarget    string `json:"bookmark_link_target"`
	WebArchiveIntegration string `json:"web_archive_integration"`
	TagSearch             string `json:"tag_search"`
	EnableSharing         bool   `json:"enable_sharing"`
	EnablePublicSharing   bool   `json:"enable_public_sharing"`
	EnableFavicons        bool   `json:"enable_favicons"`
	DisplayURL            bool   `json:"display_url"`
	PermanentNotes        bool   `json:"permanent_notes"`
	SearchPreferences     struct {
		Sort   string `json:"sort"`
		Shared string `json:"shared"`
		Unread string `json:"unread"`
	} `json:"search_preferences"`
}
