// Package events fans download notifications out to subscribers keyed by
// connection. Delivery is best-effort: a subscriber that cannot keep up
// loses messages rather than stalling the publisher.
package events

import "encoding/json"

// Notification is one message on the bus. Payload carries the progress
// report as wire-ready JSON so subscribers can forward it unmodified.
type Notification struct {
	ConnectionID int64           `json:"connection_id"`
	ContentID    string          `json:"content_id"`
	DownloadID   string          `json:"download_id"`
	Payload      json.RawMessage `json:"payload"`
}
