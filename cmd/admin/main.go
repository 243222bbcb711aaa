package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"marketzone/backend/internal/auth"
	"marketzone/backend/internal/config"
	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/messaging"
	"marketzone/backend/internal/models"
	"marketzone/backend/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  token <user_id>                  issue an API token for a user
  unread <user_id>                 print the user's unread message count
  conversations <user_id>          print the user's conversation list as JSON
  mark-read <user_id> <other_id>   mark everything other_id sent to user_id as read
  purge <user_a> <user_b>          delete every message between two users
  link-telegram <user_id> <chat>   attach a Telegram chat id for offline pings`

// commands lists the argument count and usage line of every command.
var commands = map[string]struct {
	args int
	help string
}{
	"token":         {1, "admin token <user_id>"},
	"unread":        {1, "admin unread <user_id>"},
	"conversations": {1, "admin conversations <user_id>"},
	"mark-read":     {2, "admin mark-read <user_id> <other_id>"},
	"purge":         {2, "admin purge <user_a> <user_b>"},
	"link-telegram": {2, "admin link-telegram <user_id> <chat_id>"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadRaw()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read configuration")
	}
	logger.Init(cfg.AppEnv)

	command, args := os.Args[1], os.Args[2:]
	cmd, ok := commands[command]
	if !ok {
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
	if len(args) != cmd.args {
		fmt.Println("Usage:", cmd.help)
		os.Exit(1)
	}

	// token needs only the secret, not the database
	if command == "token" {
		if cfg.JWTSecret == "" {
			logger.Fatal().Msg("JWT_SECRET is required to issue tokens")
		}
		token, err := auth.NewTokenService(cfg.JWTSecret).Issue(args[0])
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	err = withStore(cfg, func(s *storage.Service) error {
		return run(context.Background(), s, command, args)
	})
	if err != nil {
		logger.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

// withStore opens the database, runs fn and closes the pool before returning,
// so a failing command never leaves connections behind.
func withStore(cfg *config.Config, fn func(s *storage.Service) error) error {
	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	return fn(storage.NewStorageService(db, cfg.StoreTimeout))
}

func run(ctx context.Context, s *storage.Service, command string, args []string) error {
	switch command {
	case "unread":
		n, err := s.CountUnread(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("User %s has %d unread message(s).\n", args[0], n)

	case "conversations":
		convs, err := messaging.NewAggregator(s, s, s).GetConversations(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(convs)

	case "mark-read":
		n, err := s.MarkRead(ctx, args[1], args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Marked %d message(s) as read.\n", n)

	case "purge":
		n, err := s.DeleteConversation(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Conversation %s purged, %d message(s) deleted.\n", models.ConversationKey(args[0], args[1]), n)

	case "link-telegram":
		chatID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q: %w", args[1], err)
		}
		user, err := s.GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		user.TelegramChatID = &chatID
		if err := s.SaveUser(ctx, user); err != nil {
			return err
		}
		fmt.Printf("User %s linked to Telegram chat %d.\n", user.ID, chatID)

	}
	return nil
}
