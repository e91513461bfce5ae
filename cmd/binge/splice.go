package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var spliceCmd = &cobra.Command{
	Use:   "splice <name> <connection:content>...",
	Short: "Join downloaded items into one continuous playlist",
	Long: `Join downloaded items into one continuous playlist.

Each item is given as <connection-id>:<content-id>, in playback order.
All items must be fully downloaded and share the same variant set.

Examples:
  binge splice movie-night 1:abc123 1:def456`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSplice,
}

func init() {
	rootCmd.AddCommand(spliceCmd)
}

func runSplice(cmd *cobra.Command, args []string) error {
	name := args[0]

	type ref struct {
		ConnectionID int64  `json:"connection_id"`
		ContentID    string `json:"content_id"`
	}
	var items []ref
	for _, arg := range args[1:] {
		connStr, contentID, ok := strings.Cut(arg, ":")
		if !ok || contentID == "" {
			return fmt.Errorf("bad item %q, want <connection-id>:<content-id>", arg)
		}
		connID, err := strconv.ParseInt(connStr, 10, 64)
		if err != nil {
			return fmt.Errorf("bad connection id in %q", arg)
		}
		items = append(items, ref{ConnectionID: connID, ContentID: contentID})
	}

	client := NewClient(serverURL)
	var resp struct {
		Name string `json:"name"`
		Main string `json:"main"`
	}
	if err := client.post("/api/v1/playlists", map[string]any{"name": name, "items": items}, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}
	fmt.Printf("Playlist %s ready at %s\n", resp.Name, resp.Main)
	return nil
}
