package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomLookupCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomCloseCmd())
	cmd.AddCommand(newRoomCardsCmd())
	cmd.AddCommand(newRoomChatCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var title string
	var prePopulate string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"title": title}
			if prePopulate != "" {
				req["prePopulate"] = prePopulate
			}

			var result RoomCreated

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Room title (required)")
	cmd.Flags().StringVar(&prePopulate, "pre-populate", "", "Pool seeding: off, placeholders, ai_gen")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Get the full room state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomState

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <join-code>",
		Short: "Look up a room by join code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomSummary

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/by-code/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var name string
	var avatarURL string

	cmd := &cobra.Command{
		Use:   "join <join-code>",
		Short: "Join a room and save the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			if avatarURL != "" {
				req["avatarUrl"] = avatarURL
			}

			var result JoinResult

			if err := client.Post(fmt.Sprintf("/api/v1/rooms/by-code/%s/join", args[0]), req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save session token: %w", err)
			}
			client.SetToken(result.SessionToken)

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&avatarURL, "avatar", "", "Avatar URL")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <room-id>",
		Short: "Close a room to new players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(fmt.Sprintf("/api/v1/rooms/%s/close", args[0]), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Room %s closed", args[0]))
			return nil
		},
	}
}

func newRoomCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards <room-id>",
		Short: "List every player's card in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CardList

			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s/cards", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomChatCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "chat <room-id>",
		Short: "Show room chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/rooms/%s/chat", args[0])
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result []ChatMessage

			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of messages")

	return cmd
}
