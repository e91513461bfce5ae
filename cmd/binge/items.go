package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type listedItem struct {
	Item struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"item"`
	Status *string `json:"status,omitempty"`
}

type searchHit struct {
	listedItem
	Score float64 `json:"score"`
}

var itemsCmd = &cobra.Command{
	Use:   "items <connection-id>",
	Short: "Browse a connection's libraries and content",
	Long: `Browse a connection's libraries and content.

Examples:
  binge items 1                       # List root libraries
  binge items 1 --parent lib42        # List children of a directory
  binge items 1 --refresh             # Bypass the cache`,
	Args: cobra.ExactArgs(1),
	RunE: runItems,
}

var searchCmd = &cobra.Command{
	Use:   "search <connection-id> <query>",
	Short: "Fuzzy-search a connection's cached items",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	itemsCmd.Flags().String("parent", "", "Parent directory ID (empty for root)")
	itemsCmd.Flags().Bool("refresh", false, "Refresh from the provider")
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(searchCmd)
}

func runItems(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	query := url.Values{}
	if parent, _ := cmd.Flags().GetString("parent"); parent != "" {
		query.Set("parent", parent)
	}
	if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
		query.Set("refresh", "true")
	}
	path := fmt.Sprintf("/api/v1/connections/%s/items", args[0])
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var items []listedItem
	if err := client.get(path, &items); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(items)
	}
	for _, it := range items {
		status := ""
		if it.Status != nil {
			status = " [" + *it.Status + "]"
		}
		fmt.Printf("%-10s %-36s %s%s\n", it.Item.Type, it.Item.ID, it.Item.Name, status)
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	path := fmt.Sprintf("/api/v1/connections/%s/search?q=%s", args[0], url.QueryEscape(args[1]))

	var hits []searchHit
	if err := client.get(path, &hits); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(hits)
	}
	if len(hits) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%.2f  %-10s %-36s %s\n", hit.Score, hit.Item.Type, hit.Item.ID, hit.Item.Name)
	}
	return nil
}
