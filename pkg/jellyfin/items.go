package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// itemFields is the field set requested on every item query.
const itemFields = "ParentId,DateCreated,MediaSources,MediaStreams,Genres,Tags,Studios,Overview"

// Views lists the user's root libraries.
func (c *Client) Views(ctx context.Context, session Session) ([]Item, error) {
	start := time.Now()

	var result itemsResult
	u := c.baseURL + "/Users/" + url.PathEscape(session.UserID) + "/Views"
	if err := c.do(ctx, http.MethodGet, u, session.Token, nil, &result); err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("fetched views", "count", len(result.Items), "duration_ms", time.Since(start).Milliseconds())
	}
	return result.Items, nil
}

// Items lists the children of a directory. Ordering is delegated to the
// server: folders first, then by sort name and production year.
func (c *Client) Items(ctx context.Context, session Session, parentID string) ([]Item, error) {
	start := time.Now()

	q := url.Values{}
	q.Set("SortBy", "IsFolder,SortName,ProductionYear")
	q.Set("SortOrder", "Ascending")
	q.Set("ParentId", parentID)
	q.Set("Fields", itemFields)
	q.Set("ImageTypeLimit", "1")
	q.Set("EnableImageTypes", "Primary,Backdrop")
	q.Set("StartIndex", "0")
	q.Set("IsMissing", "false")

	var result itemsResult
	u := c.baseURL + "/Users/" + url.PathEscape(session.UserID) + "/Items?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, u, session.Token, nil, &result); err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debug("fetched items", "parent_id", parentID, "count", len(result.Items), "duration_ms", time.Since(start).Milliseconds())
	}
	return result.Items, nil
}

// Item fetches a single item by id.
func (c *Client) Item(ctx context.Context, session Session, id string) (*Item, error) {
	q := url.Values{}
	q.Set("Fields", itemFields)
	q.Set("ImageTypeLimit", "1")
	q.Set("EnableImageTypes", "Primary,Backdrop")

	var item Item
	u := c.baseURL + "/Users/" + url.PathEscape(session.UserID) + "/Items/" + url.PathEscape(id) + "?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, u, session.Token, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PlaybackInfo issues a playback-info request for an item with the given
// playback profile and preferred stream indices, and returns the absolute
// transcoding URL. Returns ErrNoTranscodingURL when the server declined to
// transcode.
func (c *Client) PlaybackInfo(ctx context.Context, session Session, itemID string,
	profile json.RawMessage, audioIndex, subtitleIndex *int) (string, error) {

	q := url.Values{}
	q.Set("UserId", session.UserID)
	q.Set("IsPlayback", "true")
	q.Set("AutoOpenLiveStream", "true")
	q.Set("MaxStreamingBitrate", "140000000")
	if audioIndex != nil {
		q.Set("AudioStreamIndex", strconv.Itoa(*audioIndex))
	}
	if subtitleIndex != nil {
		q.Set("SubtitleStreamIndex", strconv.Itoa(*subtitleIndex))
	}

	var result playbackInfoResponse
	u := c.baseURL + "/Items/" + url.PathEscape(itemID) + "/PlaybackInfo?" + q.Encode()
	if err := c.do(ctx, http.MethodPost, u, session.Token, profile, &result); err != nil {
		return "", fmt.Errorf("playback info: %w", err)
	}

	for _, source := range result.MediaSources {
		if source.TranscodingURL != "" {
			return c.baseURL + source.TranscodingURL, nil
		}
	}
	return "", ErrNoTranscodingURL
}

// VideoURL builds the absolute URL of a transcode asset relative to an
// item's video path, as used for variant playlists and segments.
func (c *Client) VideoURL(itemID, rel string) string {
	return c.baseURL + "/videos/" + url.PathEscape(itemID) + "/" + rel
}
