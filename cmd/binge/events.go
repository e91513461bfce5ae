package main

import (
	"bufio"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail live download progress",
	Long: `Tail live download progress as it is published.

Examples:
  binge events                        # All connections
  binge events --connection 1         # One connection`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().Int64Slice("connection", nil, "Connection IDs to follow")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	query := url.Values{}
	ids, _ := cmd.Flags().GetInt64Slice("connection")
	for _, id := range ids {
		query.Add("connection_id", fmt.Sprintf("%d", id))
	}
	path := "/api/v1/events"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	body, err := client.stream(path)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			fmt.Println(data)
		}
	}
	return scanner.Err()
}
