package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	ws "codeberg.org/pixelpress/server/internal/websocket"
)

type watchOptions struct {
	server       string
	pingInterval time.Duration
}

// streams queue and notification events for the token's account
func newWatchCommand() *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <token>",
		Short: "Print live queue events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "localhost:8080", "Server host:port")
	cmd.Flags().DurationVar(&opts.pingInterval, "ping", 30*time.Second, "Keep-alive ping interval")

	return cmd
}

func watchURL(server, token string) string {
	u := url.URL{Scheme: "ws", Host: server, Path: "/api/v1/ws"}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// one line per event: type, then the payload
func formatEvent(raw []byte) string {
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return string(raw)
	}

	return fmt.Sprintf("%s %-14s %s", msg.Timestamp.Format(time.TimeOnly), msg.Type, msg.Payload)
}

func runWatch(out io.Writer, token string, opts watchOptions) error {
	conn, _, err := websocket.DefaultDialer.Dial(watchURL(opts.server, token), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	fmt.Fprintln(out, "connected")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan error, 1)

	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				done <- err
				return
			}

			fmt.Fprintln(out, formatEvent(message))
		}
	}()

	ticker := time.NewTicker(opts.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err

		case <-ticker.C:
			if err := conn.WriteJSON(map[string]string{"type": ws.TypePing}); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case <-interrupt:
			err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				return fmt.Errorf("write close: %w", err)
			}

			select {
			case <-done:
			case <-time.After(time.Second):
			}

			return nil
		}
	}
}
