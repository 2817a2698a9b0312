package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"costmanager/internal/core"
)

// Store is the persistence surface the cost service needs. It is satisfied by
// storage.SQLiteRepository and by in-memory fakes in tests.
type Store interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	CreateCost(ctx context.Context, c core.Cost) (core.Cost, error)
	ListCostsByUser(ctx context.Context, userID int64) ([]core.Cost, error)
	ListCostsByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Cost, error)
}

// EventPublisher announces newly created costs to the tally pipeline.
type EventPublisher interface {
	PublishCostCreated(ctx context.Context, id int64) error
}

// CostService orchestrates user and cost operations across the store and the
// event publisher. The publisher may be nil; cost creation then skips the
// announcement and the periodic worker sweep picks the cost up instead.
type CostService struct {
	store     Store
	publisher EventPublisher
}

func NewCostService(store Store, publisher EventPublisher) *CostService {
	return &CostService{
		store:     store,
		publisher: publisher,
	}
}

func (s *CostService) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	return s.store.CreateUser(ctx, u)
}

// GetUserWithTotal fetches the user and the running total of all their costs.
// The two store reads are independent and run concurrently; a missing user
// surfaces as core.ErrNotFound regardless of how the cost query fared.
func (s *CostService) GetUserWithTotal(ctx context.Context, id int64) (core.User, float64, error) {
	var (
		user  core.User
		total float64
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.store.GetUser(ctx, id)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		costs, err := s.store.ListCostsByUser(ctx, id)
		if err != nil {
			return err
		}
		total = core.TotalSpend(costs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.User{}, 0, err
	}

	return user, total, nil
}

// CreateCost validates the cost, verifies the owning user exists, and stores
// it. A zero date defaults to the creation time. The existence check precedes
// the insert, so a rejected cost leaves no side effect; the gap between check
// and insert is not closed.
func (s *CostService) CreateCost(ctx context.Context, c core.Cost) (core.Cost, error) {
	if err := c.Validate(); err != nil {
		return core.Cost{}, err
	}

	if _, err := s.store.GetUser(ctx, c.UserID); err != nil {
		return core.Cost{}, err
	}

	if c.Date.IsZero() {
		c.Date = time.Now().UTC()
	}

	created, err := s.store.CreateCost(ctx, c)
	if err != nil {
		return core.Cost{}, fmt.Errorf("save cost: %w", err)
	}

	// Best effort: the cost is stored either way, the worker sweep catches
	// anything that was never announced.
	if s.publisher != nil {
		if err := s.publisher.PublishCostCreated(ctx, created.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish cost created event",
				"id", created.ID, "error", err)
		}
	}

	return created, nil
}

// MonthlyReport produces the category-grouped report for one calendar month.
// userID is echoed into the report exactly as supplied; it still has to parse
// as an integer to query the store.
func (s *CostService) MonthlyReport(ctx context.Context, userID string, year, month int) (core.Report, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return core.Report{}, core.ErrInvalidUserID
	}

	start, end := core.MonthRange(year, month)
	costs, err := s.store.ListCostsByUserAndRange(ctx, id, start, end)
	if err != nil {
		return core.Report{}, fmt.Errorf("fetch costs for report: %w", err)
	}

	return core.Report{
		UserID: userID,
		Year:   year,
		Month:  month,
		Groups: core.GroupCosts(costs),
	}, nil
}
