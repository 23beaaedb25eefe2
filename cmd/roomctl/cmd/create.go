package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new room and print its code",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Post(serverAddr+"/api/rooms", "application/json", nil)
		if err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var body struct {
			Room struct {
				Id   string `json:"id"`
				Code string `json:"code"`
			} `json:"room"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		fmt.Println(body.Room.Code)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
