package jellyfin

// QuickConnect is a pending out-of-band approval: the code is shown to the
// user, the secret is polled until another device approves it.
type QuickConnect struct {
	Secret string `json:"Secret"`
	Code   string `json:"Code"`
}

// Session is a resolved user session.
type Session struct {
	UserID string
	Token  string
}

// User is the subset of the user record used for credential validation.
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// MediaStream is one stream of an item, as reported by the server.
type MediaStream struct {
	Type     string `json:"Type"`
	Index    int    `json:"Index"`
	Codec    string `json:"Codec"`
	Language string `json:"Language"`
	Title    string `json:"Title"`
}

// Item is the server's polymorphic library/content record (BaseItemDto).
type Item struct {
	ID                string        `json:"Id"`
	ParentID          string        `json:"ParentId"`
	Name              string        `json:"Name"`
	Overview          string        `json:"Overview"`
	Type              string        `json:"Type"`
	IsFolder          bool          `json:"IsFolder"`
	IndexNumber       *int          `json:"IndexNumber"`
	ParentIndexNumber *int          `json:"ParentIndexNumber"`
	MediaStreams      []MediaStream `json:"MediaStreams"`
}

type quickConnectResult struct {
	Secret        string `json:"Secret"`
	Code          string `json:"Code"`
	Authenticated bool   `json:"Authenticated"`
}

type authenticationResult struct {
	User        *User  `json:"User"`
	AccessToken string `json:"AccessToken"`
}

type itemsResult struct {
	Items []Item `json:"Items"`
}

type mediaSource struct {
	TranscodingURL string `json:"TranscodingUrl"`
}

type playbackInfoResponse struct {
	MediaSources []mediaSource `json:"MediaSources"`
}

type quickConnectDto struct {
	Secret string `json:"Secret"`
}

type capabilitiesDto struct {
	PlayableMediaTypes           []string `json:"PlayableMediaTypes"`
	SupportedCommands            []string `json:"SupportedCommands"`
	SupportsMediaControl         bool     `json:"SupportsMediaControl"`
	SupportsContentUploading     bool     `json:"SupportsContentUploading"`
	SupportsPersistentIdentifier bool     `json:"SupportsPersistentIdentifier"`
	SupportsSync                 bool     `json:"SupportsSync"`
}
