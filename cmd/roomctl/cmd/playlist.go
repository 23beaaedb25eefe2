package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/watchroom/server/pkg/protocol"
)

var (
	addTitle     string
	addThumbnail string
)

var addCmd = &cobra.Command{
	Use:   "add <video-id>",
	Short: "Append a video to the room playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := addTitle
		if title == "" {
			title = args[0]
		}

		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer finish(client)

		client.AddVideo(protocol.VideoInput{
			YoutubeId: args[0],
			Title:     title,
			Thumbnail: addThumbnail,
		})

		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <playlist-entry-id>",
	Short: "Remove an entry from the room playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer finish(client)

		client.RemoveVideo(args[0])

		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the room playlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectGuest(nil)
		if err != nil {
			return err
		}
		defer client.Close()

		state := client.State()
		for _, entry := range state.Playlist {
			marker := " "
			if state.CurrentVideoId != nil && entry.YoutubeId == *state.CurrentVideoId {
				marker = ">"
			}
			fmt.Printf("%s %-3d %-14s %s\n", marker, entry.Order, entry.YoutubeId, entry.Title)
		}

		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "video title (defaults to the id)")
	addCmd.Flags().StringVar(&addThumbnail, "thumbnail", "", "thumbnail URL")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
}
