package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"rewarder/api"
	"rewarder/config"
	"rewarder/database"
	"rewarder/events"
	"rewarder/metrics"
	"rewarder/repository"
	"rewarder/service"
)

// ProcessRewards runs a single execution pass and reports every applied reward to out
func ProcessRewards(ctx context.Context, cfg *config.Config, out io.Writer) error {
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())
	return processRewards(ctx, service.NewRewardExecutionService(uowFactory), time.Now().UTC(), out)
}

func processRewards(ctx context.Context, engine service.RewardExecutionService, now time.Time, out io.Writer) error {
	start := time.Now()
	executed, err := engine.ProcessDueRewards(ctx, now)
	metrics.RecordRewardPass(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to process rewards: %w", err)
	}

	for _, reward := range executed {
		fmt.Fprintf(out, "Processed reward: %s\n", reward)
	}
	fmt.Fprintf(out, "Successfully processed %d rewards\n", len(executed))
	return nil
}

// CreateUser registers a new account with a zero balance
func CreateUser(ctx context.Context, cfg *config.Config, username, email string, out io.Writer) error {
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	users := service.NewUserService(repository.NewUnitOfWorkFactory(db, events.NewBus()))
	user, err := users.CreateUser(ctx, username, email)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %s (ID: %d)\n", user.Username, user.ID)
	return nil
}

// IssueToken prints a bearer token for an existing user
func IssueToken(ctx context.Context, cfg *config.Config, username string, out io.Writer) error {
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	users := service.NewUserService(repository.NewUnitOfWorkFactory(db, events.NewBus()))
	return issueToken(ctx, users, []byte(cfg.JWTSecret), cfg.JWTTTL, username, out)
}

func issueToken(ctx context.Context, users service.UserService, secret []byte, ttl time.Duration, username string, out io.Writer) error {
	user, err := users.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", username, err)
	}

	token, err := api.IssueToken(secret, user.ID, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, token)
	return nil
}
