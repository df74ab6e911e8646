// Package ledger manages the coin balance and the ad-free window it buys.
// Spending coins converts them into ad-free listening time at a configured
// rate, stacking onto any window still running.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Zerofake/musicflow1/internal/models"
	"github.com/Zerofake/musicflow1/internal/repositories"
	"github.com/Zerofake/musicflow1/internal/shared"
)

// Service exposes the single-user ledger. The ad-free flag is cached and
// recomputed on a short interval so an expiring window is noticed without a
// read on every query.
type Service struct {
	repo   *repositories.LedgerRepository
	logger *log.Logger

	minutesPerCoin int
	now            func() time.Time

	mu     sync.RWMutex
	ledger models.UserLedger
	adFree bool

	done chan struct{}
}

// NewService ensures the ledger row exists and starts the ad-free recheck
// ticker.
func NewService(repo *repositories.LedgerRepository, notifier *repositories.Notifier, credits shared.CreditsConfig, logger *log.Logger) (*Service, error) {
	if err := repo.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger: %w", err)
	}

	s := &Service{
		repo:           repo,
		logger:         logger.With("component", "ledger"),
		minutesPerCoin: credits.AdFreeMinutesPerCoin,
		now:            time.Now,
		done:           make(chan struct{}),
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}

	events, cancel := notifier.Subscribe()
	go s.watch(events, cancel, time.Duration(credits.RecheckSeconds)*time.Second)
	return s, nil
}

func (s *Service) Close() {
	close(s.done)
}

// watch refreshes the cache on ledger writes and rechecks the ad-free
// window on a fixed interval so it expires without any write happening.
func (s *Service) watch(events <-chan repositories.Event, cancel func(), recheck time.Duration) {
	defer cancel()

	ticker := time.NewTicker(recheck)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case event := <-events:
			if event.Table != repositories.TableLedger {
				continue
			}
			if err := s.refresh(); err != nil {
				s.logger.Error("failed to refresh ledger", "error", err)
			}
		case <-ticker.C:
			s.mu.Lock()
			s.adFree = s.ledger.AdFreeAt(s.now())
			s.mu.Unlock()
		}
	}
}

func (s *Service) refresh() error {
	ledger, err := s.repo.Get()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.ledger = *ledger
	s.adFree = ledger.AdFreeAt(s.now())
	s.mu.Unlock()
	return nil
}

// Coins returns the current balance.
func (s *Service) Coins() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Coins
}

// AdFree reports whether an ad-free window is currently active.
func (s *Service) AdFree() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adFree
}

// Ledger returns a copy of the current ledger record.
func (s *Service) Ledger() models.UserLedger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger
}

// AddCoins credits the balance.
func (s *Service) AddCoins(amount int) error {
	if err := s.repo.AddCoins(amount); err != nil {
		return err
	}
	return s.refresh()
}

// Spend converts amount coins into ad-free time, extending any active
// window. It reports false without touching the balance when the balance is
// short.
func (s *Service) Spend(amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: spend amount must be positive", shared.ErrInvalidArgument)
	}

	extend := time.Duration(amount*s.minutesPerCoin) * time.Minute
	ok, err := s.repo.Spend(amount, extend, s.now())
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debug("spend rejected, balance too low", "amount", amount)
		return false, nil
	}

	s.logger.Info("spent coins", "amount", amount, "minutes", amount*s.minutesPerCoin)
	return true, s.refresh()
}
