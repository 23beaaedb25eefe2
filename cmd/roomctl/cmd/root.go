package cmd

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/watchroom/server/pkg/protocol"
	"github.com/watchroom/server/pkg/roomclient"
)

var (
	serverAddr string
	roomCode   string
	userId     string
)

var rootCmd = &cobra.Command{
	Use:   "roomctl",
	Short: "Remote control for a watchroom server",
	Long: `roomctl drives a shared-playback room from the terminal. It talks the
same protocol as the browser clients: create a room, queue videos, and
control playback for everyone in it.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "http://localhost:8080", "server base URL")
	rootCmd.PersistentFlags().StringVarP(&roomCode, "room", "r", "", "room code")
	rootCmd.PersistentFlags().StringVarP(&userId, "user", "u", "", "user id (random when omitted)")
}

func wsURL() (string, error) {
	u, err := url.Parse(serverAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	return u.String(), nil
}

func requireRoom() error {
	if roomCode == "" {
		return fmt.Errorf("--room is required")
	}
	roomCode = strings.ToUpper(roomCode)

	return nil
}

// connectGuest joins the room as a guest and blocks until the connection
// is up and the first snapshot arrived.
func connectGuest(onState func(roomclient.State)) (*roomclient.Client, error) {
	if err := requireRoom(); err != nil {
		return nil, err
	}
	if userId == "" {
		userId = uuid.NewString()
	}

	endpoint, err := wsURL()
	if err != nil {
		return nil, err
	}

	connected := make(chan struct{}, 1)
	synced := make(chan struct{}, 1)
	client := roomclient.New(roomclient.Options{
		URL:      endpoint,
		RoomCode: roomCode,
		UserId:   userId,
		Role:     protocol.RoleGuest,
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		OnConnChange: func(state roomclient.ConnState, _ int) {
			if state == roomclient.StateConnected {
				select {
				case connected <- struct{}{}:
				default:
				}
			}
		},
		OnStateChange: func(state roomclient.State) {
			if state.LastError != "" {
				fmt.Fprintln(os.Stderr, "server error:", state.LastError)
			}
			if onState != nil {
				onState(state)
			}
			// An ERROR (e.g. unknown room) is not a snapshot.
			if state.LastError == "" {
				select {
				case synced <- struct{}{}:
				default:
				}
			}
		},
	})
	client.Start()

	select {
	case <-connected:
	case <-time.After(10 * time.Second):
		client.Close()
		return nil, fmt.Errorf("timed out connecting to %s", endpoint)
	}

	select {
	case <-synced:
	case <-time.After(10 * time.Second):
		client.Close()
		return nil, fmt.Errorf("timed out waiting for room snapshot (unknown room code?)")
	}

	return client, nil
}

// finish gives the server a beat to process the last frame, then closes.
func finish(client *roomclient.Client) {
	time.Sleep(300 * time.Millisecond)
	client.Close()
}
