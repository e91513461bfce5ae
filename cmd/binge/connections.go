package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

type credentialInfo struct {
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
	ID    string `json:"id,omitempty"`
	Cause string `json:"cause,omitempty"`
}

type connectionInfo struct {
	ID               int64           `json:"id"`
	ProviderID       string          `json:"provider_id"`
	PreferredProfile *string         `json:"preferred_profile,omitempty"`
	Credential       *credentialInfo `json:"credential,omitempty"`
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Show and manage provider connections",
	Long: `Show and manage provider connections.

Examples:
  binge connections                   # List connections
  binge connections add jf-home      # Connect to a configured provider
  binge connections setup 1          # Poll a pending login until it resolves`,
	RunE: runConnectionsList,
}

var connectionsAddCmd = &cobra.Command{
	Use:   "add <provider-id>",
	Short: "Create a connection and start the login handshake",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionsAdd,
}

var connectionsSetupCmd = &cobra.Command{
	Use:   "setup <id>",
	Short: "Poll a pending login until it resolves",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionsSetup,
}

func init() {
	rootCmd.AddCommand(connectionsCmd)
	connectionsAddCmd.Flags().String("profile", "", "Preferred transcode profile")
	connectionsCmd.AddCommand(connectionsAddCmd)
	connectionsCmd.AddCommand(connectionsSetupCmd)
}

func runConnectionsList(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	var conns []connectionInfo
	if err := client.get("/api/v1/connections", &conns); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(conns)
	}
	if len(conns) == 0 {
		fmt.Println("No connections. Run 'binge connections add <provider-id>'.")
		return nil
	}
	for _, c := range conns {
		state := "unknown"
		if c.Credential != nil {
			state = c.Credential.Type
		}
		fmt.Printf("%3d  %-20s %s\n", c.ID, c.ProviderID, state)
	}
	return nil
}

func runConnectionsAdd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	body := map[string]any{"provider_id": args[0]}
	if profile, _ := cmd.Flags().GetString("profile"); profile != "" {
		body["preferred_profile"] = profile
	}

	var conn connectionInfo
	if err := client.post("/api/v1/connections", body, &conn); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(conn)
	}
	fmt.Printf("Connection %d created.\n", conn.ID)
	if conn.Credential != nil && conn.Credential.Code != "" {
		fmt.Printf("Enter code %s on the provider, then run 'binge connections setup %d'.\n",
			conn.Credential.Code, conn.ID)
	}
	return nil
}

func runConnectionsSetup(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	path := fmt.Sprintf("/api/v1/connections/%s/setup", args[0])

	for {
		var conn connectionInfo
		if err := client.post(path, nil, &conn); err != nil {
			return err
		}
		if conn.Credential == nil {
			return fmt.Errorf("server returned no credential state")
		}
		switch conn.Credential.Type {
		case "auth":
			if jsonOutput {
				return printJSON(conn)
			}
			fmt.Println("Authenticated.")
			return nil
		case "failed":
			return fmt.Errorf("login failed: %s", conn.Credential.Cause)
		}
		fmt.Printf("Waiting for approval (code %s)...\n", conn.Credential.Code)
		time.Sleep(2 * time.Second)
	}
}
