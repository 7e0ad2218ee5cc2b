package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"goldwork/internal/adapter/repo"
	"goldwork/internal/app"
	"goldwork/internal/domain"
	"goldwork/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		actorFlag    string
		amountFlag   int64
		operatorFlag string
		showFlag     bool
	)

	flag.StringVar(&actorFlag, "actor", "", "account to credit (user id)")
	flag.Int64Var(&amountFlag, "amount", 0, "gold to credit (must be positive)")
	flag.StringVar(&operatorFlag, "operator", "", "admin id recorded as the grantor (defaults to $USER)")
	flag.BoolVar(&showFlag, "show", false, "print the balance and recent entries without granting")
	flag.Parse()

	actorID := strings.TrimSpace(actorFlag)
	if actorID == "" {
		exitWithError(errors.New("-actor is required"))
	}
	if !showFlag && amountFlag <= 0 {
		exitWithError(errors.New("-amount must be positive"))
	}
	operator := strings.TrimSpace(operatorFlag)
	if operator == "" {
		operator = "cli:" + strings.TrimSpace(os.Getenv("USER"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", "goldgrant").With().Str("operator", operator).Logger()
	svc := app.New(repo.NewStore(infra.NewSQLRunner(pool, logger)), app.Options{Logger: logger})
	admin := domain.Admin(operator)

	if !showFlag {
		balance, err := svc.Ledger.Grant(ctx, admin, actorID, amountFlag)
		if err != nil {
			exitWithError(fmt.Errorf("failed to grant gold: %w", err))
		}
		fmt.Printf("Granted %d gold to %s, balance now %d\n", amountFlag, actorID, balance)
		return
	}

	acc, err := svc.Ledger.Balance(ctx, admin, actorID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load balance: %w", err))
	}
	fmt.Printf("%s balance=%d\n", acc.ActorID, acc.Balance)
	entries, err := svc.Ledger.Entries(ctx, admin, actorID, 10)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load entries: %w", err))
	}
	for _, e := range entries {
		fmt.Printf("%s %-8s %+d -> %d\n", e.CreatedAt.Format(time.RFC3339), e.Kind, e.Amount, e.BalanceAfter)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
