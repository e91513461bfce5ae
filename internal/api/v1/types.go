package v1

import (
	"time"

	"github.com/vmunix/binge/internal/catalog"
	"github.com/vmunix/binge/internal/download"
	"github.com/vmunix/binge/internal/provider"
)

type providerResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Profiles []profileResponse `json:"profiles"`
}

type profileResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func providerToResponse(d provider.Descriptor) providerResponse {
	resp := providerResponse{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Type,
		Profiles: make([]profileResponse, len(d.Profiles)),
	}
	for i, p := range d.Profiles {
		resp.Profiles[i] = profileResponse{Name: p.Name, Description: p.Description}
	}
	return resp
}

type connectionResponse struct {
	ID               int64                `json:"id"`
	ProviderID       string               `json:"provider_id"`
	PreferredProfile *string              `json:"preferred_profile,omitempty"`
	Credential       *provider.Credential `json:"credential,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func connectionToResponse(c *catalog.Connection, cred *provider.Credential) connectionResponse {
	return connectionResponse{
		ID:               c.ID,
		ProviderID:       c.ProviderID,
		PreferredProfile: c.PreferredProfile,
		Credential:       cred,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

type itemResponse struct {
	Item     provider.Item `json:"item"`
	ParentID *string       `json:"parent_id,omitempty"`
	SortKey  int64         `json:"sort_key,omitempty"`
	Status   *string       `json:"status,omitempty"`
}

func itemToResponse(item catalog.CachedItem) itemResponse {
	return itemResponse{
		Item:     item.Item,
		ParentID: item.ParentID,
		SortKey:  item.SortKey,
		Status:   item.Status,
	}
}

type searchResponse struct {
	itemResponse
	Score float64 `json:"score"`
}

type downloadResponse struct {
	ID           string    `json:"id"`
	ConnectionID int64     `json:"connection_id"`
	ContentID    string    `json:"content_id"`
	Status       string    `json:"status"`
	StatusInfo   *string   `json:"status_info,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func downloadToResponse(d *download.Download) downloadResponse {
	return downloadResponse{
		ID:           d.ID,
		ConnectionID: d.ConnectionID,
		ContentID:    d.ContentID,
		Status:       string(d.Status),
		StatusInfo:   d.StatusInfo,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
