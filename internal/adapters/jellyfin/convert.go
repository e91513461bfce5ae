package jellyfin

import (
	"fmt"

	"github.com/vmunix/binge/internal/provider"
	"github.com/vmunix/binge/pkg/jellyfin"
)

// toItem converts a server DTO into the provider-neutral model. Root
// views are always containers even when the server omits IsFolder.
func toItem(dto jellyfin.Item, atRoot bool) provider.Item {
	if atRoot || dto.IsFolder {
		lib := toLibrary(dto)
		return provider.Item{Library: &lib}
	}
	content := toContent(dto)
	return provider.Item{Content: &content}
}

func toLibrary(dto jellyfin.Item) provider.Library {
	var kind provider.LibraryKind
	switch dto.Type {
	case "Folder":
		kind = provider.LibraryKind{Type: provider.LibraryFolder}
	case "Season":
		season := 0
		if dto.IndexNumber != nil {
			season = *dto.IndexNumber
		}
		kind = provider.LibraryKind{Type: provider.LibrarySeason, Season: season}
	case "Series":
		kind = provider.LibraryKind{Type: provider.LibraryShow}
	case "CollectionFolder":
		kind = provider.LibraryKind{Type: provider.LibraryCollection}
	default:
		kind = provider.LibraryKind{Type: provider.LibraryOther, Name: optional(dto.Type)}
	}

	image := "Backdrop"
	switch dto.Type {
	case "Season", "CollectionFolder", "Folder":
		image = "Primary"
	}

	return provider.Library{
		ID:       dto.ID,
		ParentID: optional(dto.ParentID),
		Name:     dto.Name,
		IconURL:  iconURL(dto.ID, image),
		Kind:     kind,
	}
}

func toContent(dto jellyfin.Item) provider.Content {
	var kind provider.ContentKind
	switch dto.Type {
	case "Movie":
		kind = provider.ContentKind{Type: provider.ContentMovie}
	case "Episode":
		episode := 0
		if dto.IndexNumber != nil {
			episode = *dto.IndexNumber
		}
		kind = provider.ContentKind{Type: provider.ContentEpisode, Season: dto.ParentIndexNumber, Episode: episode}
	default:
		kind = provider.ContentKind{Type: provider.ContentOther, Name: optional(dto.Type)}
	}

	image := "Primary"
	if dto.Type == "Movie" {
		image = "Backdrop"
	}

	streams := make([]provider.MediaStream, 0, len(dto.MediaStreams))
	for _, s := range dto.MediaStreams {
		switch s.Type {
		case "Video":
			streams = append(streams, provider.MediaStream{
				Type: provider.StreamVideo, Index: s.Index, Codec: s.Codec,
			})
		case "Audio":
			streams = append(streams, provider.MediaStream{
				Type: provider.StreamAudio, Index: s.Index, Codec: s.Codec,
				Language: optional(s.Language), Name: optional(s.Title),
			})
		case "Subtitle":
			streams = append(streams, provider.MediaStream{
				Type: provider.StreamSubtitle, Index: s.Index, Codec: s.Codec,
				Language: optional(s.Language), Name: optional(s.Title),
			})
		}
	}

	return provider.Content{
		ID:           dto.ID,
		ParentID:     optional(dto.ParentID),
		Name:         dto.Name,
		Description:  optional(dto.Overview),
		IconURL:      iconURL(dto.ID, image),
		MediaStreams: streams,
		Kind:         kind,
	}
}

func iconURL(id, image string) *string {
	u := fmt.Sprintf("/Items/%s/Images/%s?maxHeight=300&maxWidth=300&quality=90", id, image)
	return &u
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
