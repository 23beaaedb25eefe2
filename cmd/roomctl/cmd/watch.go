package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/watchroom/server/pkg/roomclient"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Join the room as a guest and print every state change",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(printState)
		if err != nil {
			return err
		}
		defer client.Close()

		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
		<-done

		return nil
	},
}

func printState(state roomclient.State) {
	current := "-"
	if state.CurrentVideoId != nil {
		current = *state.CurrentVideoId
	}

	status := "paused"
	if state.IsPlaying {
		status = "playing"
	}

	fmt.Printf("[%s] %s at %.1fs, %d queued\n", status, current, state.CurrentTime, len(state.Playlist))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
