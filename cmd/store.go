package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Zerofake/musicflow1/internal/shared"
	"github.com/urfave/cli/v3"
)

// StoreStatus prints the coin balance and the ad-free window.
func (r *Runner) StoreStatus(ctx context.Context, cmd *cli.Command) error {
	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ledger := a.Ledger.Ledger()

	r.writePlainHeader("Store")
	r.writePlain("Coins: %d\n", ledger.Coins)
	if a.Ledger.AdFree() && ledger.AdFreeUntil != nil {
		until := time.UnixMilli(*ledger.AdFreeUntil)
		r.writePlain("Ad-free until: %s\n", until.Format(time.RFC1123))
	} else {
		r.writePlain("Ad-free: inactive\n")
	}
	return nil
}

// StoreAdd credits coins to the balance.
func (r *Runner) StoreAdd(ctx context.Context, cmd *cli.Command) error {
	amount, err := parseAmount(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.Ledger.AddCoins(amount); err != nil {
		return err
	}

	r.writePlain("✓ Balance: %d coins\n", a.Ledger.Coins())
	return nil
}

// StoreSpend converts coins into ad-free listening time.
func (r *Runner) StoreSpend(ctx context.Context, cmd *cli.Command) error {
	amount, err := parseAmount(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ok, err := a.Ledger.Spend(amount)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: balance is %d coins", shared.ErrInsufficientCoins, a.Ledger.Coins())
	}

	minutes := amount * r.config.Credits.AdFreeMinutesPerCoin
	r.writePlain("✓ Spent %d coins for %d ad-free minutes (balance: %d)\n", amount, minutes, a.Ledger.Coins())
	return nil
}

func parseAmount(cmd *cli.Command) (int, error) {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: amount is required", shared.ErrMissingArgument)
	}

	amount, err := strconv.Atoi(args[0])
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be a positive integer", shared.ErrInvalidArgument)
	}
	return amount, nil
}
