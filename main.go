package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rewarder/cmd"
	"rewarder/config"
	"rewarder/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: rewarder [command]

commands:
  (none)                           run the HTTP API and reward scheduler
  migrate up|down [steps]|status   manage the database schema
  process-rewards                  execute all due rewards once
  create-user <username> <email>   register a user
  issue-token <username>           print a bearer token for a user`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return cmd.Run(ctx)
	}

	// Migrations only need the database settings
	if args[0] == "migrate" {
		_ = godotenv.Load()
		return handleMigrationCommand(args[1:])
	}

	cfg := config.Get()
	cmd.SetupLogging(cfg)

	switch args[0] {
	case "process-rewards":
		return cmd.ProcessRewards(ctx, cfg, os.Stdout)
	case "create-user":
		if len(args) != 3 {
			return fmt.Errorf("usage: rewarder create-user <username> <email>")
		}
		return cmd.CreateUser(ctx, cfg, args[1], args[2], os.Stdout)
	case "issue-token":
		if len(args) != 2 {
			return fmt.Errorf("usage: rewarder issue-token <username>")
		}
		return cmd.IssueToken(ctx, cfg, args[1], os.Stdout)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: rewarder migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
