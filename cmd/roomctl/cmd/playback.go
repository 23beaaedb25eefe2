package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Resume playback in the room",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer finish(client)

		client.Play()

		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback in the room",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer finish(client)

		client.Pause()

		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance to the next video in the playlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer finish(client)

		client.NextVideo()

		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <video-id>",
	Short: "Switch playback to the given video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer finish(client)

		client.SelectVideo(args[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(selectCmd)
}
