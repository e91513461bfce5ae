package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type downloadInfo struct {
	ID           string  `json:"id"`
	ConnectionID int64   `json:"connection_id"`
	ContentID    string  `json:"content_id"`
	Status       string  `json:"status"`
	StatusInfo   *string `json:"status_info,omitempty"`
}

var downloadsCmd = &cobra.Command{
	Use:   "downloads <connection-id>",
	Short: "Show a connection's downloads",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownloads,
}

var grabCmd = &cobra.Command{
	Use:   "grab <connection-id> <content-id>",
	Short: "Queue a transcode download of a content item",
	Long: `Queue a transcode download of a content item.

Examples:
  binge grab 1 abc123
  binge grab 1 abc123 --profile 1080p --audio 1 --subtitle 3`,
	Args: cobra.ExactArgs(2),
	RunE: runGrab,
}

func init() {
	grabCmd.Flags().String("profile", "", "Transcode profile name")
	grabCmd.Flags().Int("audio", -1, "Audio stream index")
	grabCmd.Flags().Int("subtitle", -1, "Subtitle stream index")
	rootCmd.AddCommand(downloadsCmd)
	rootCmd.AddCommand(grabCmd)
}

func runDownloads(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	var records []downloadInfo
	if err := client.get(fmt.Sprintf("/api/v1/connections/%s/downloads", args[0]), &records); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(records)
	}
	if len(records) == 0 {
		fmt.Println("No downloads.")
		return nil
	}
	for _, d := range records {
		info := ""
		if d.StatusInfo != nil {
			info = " (" + *d.StatusInfo + ")"
		}
		fmt.Printf("%s  %-12s %s%s\n", d.ID, d.Status, d.ContentID, info)
	}
	return nil
}

func runGrab(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	body := map[string]any{"content_id": args[1]}
	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		body["profile"] = profile
	}
	if audio, _ := cmd.Flags().GetInt("audio"); audio >= 0 {
		body["audio_stream"] = audio
	}
	if subtitle, _ := cmd.Flags().GetInt("subtitle"); subtitle >= 0 {
		body["subtitle_stream"] = subtitle
	}

	var record downloadInfo
	if err := client.post(fmt.Sprintf("/api/v1/connections/%s/transcode", args[0]), body, &record); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(record)
	}
	fmt.Printf("Download %s queued. Follow it with 'binge events --connection %s'.\n", record.ID, args[0])
	return nil
}
