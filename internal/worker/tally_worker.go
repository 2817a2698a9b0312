// Package worker maintains the monthly_totals rollup from stored costs.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"costmanager/internal/amqp"
	"costmanager/internal/core"
)

// TallyStore is the storage surface the tally worker needs.
type TallyStore interface {
	GetCost(ctx context.Context, id int64) (core.Cost, error)
	ListPendingTally(ctx context.Context, limit int) ([]core.Cost, error)
	MarkTallied(ctx context.Context, id int64) error
	AddToMonthlyTotal(ctx context.Context, userID int64, year, month int, category string, amount float64) error
}

// TallyWorker folds newly created costs into the per-user monthly category
// totals. It is fed by cost.created messages and by a periodic sweep over
// costs still flagged as pending.
type TallyWorker struct {
	storage   TallyStore
	batchSize int
}

func NewTallyWorker(storage TallyStore, batchSize int) *TallyWorker {
	return &TallyWorker{
		storage:   storage,
		batchSize: batchSize,
	}
}

// HandleCostCreated processes a single cost.created message from AMQP.
func (w *TallyWorker) HandleCostCreated(ctx context.Context, msg *amqp.CostCreatedMessage) error {
	slog.InfoContext(ctx, "Processing cost created message", "id", msg.ID)

	cost, err := w.storage.GetCost(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get cost from storage: %w", err)
	}

	if err := w.tallyCost(ctx, cost); err != nil {
		return fmt.Errorf("tally cost: %w", err)
	}

	return nil
}

// ProcessPending sweeps one batch of untallied costs. It keeps going past
// individual failures so one bad row cannot wedge the queue.
func (w *TallyWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingTally(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending costs: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending costs", "count", len(pending))

	for _, cost := range pending {
		if err := w.tallyCost(ctx, cost); err != nil {
			slog.ErrorContext(ctx, "Failed to tally pending cost",
				"id", cost.ID, "error", err)
		}
	}

	return nil
}

// StartupCheck drains the pending backlog accumulated while the worker was
// down, one batch at a time.
func (w *TallyWorker) StartupCheck(ctx context.Context) error {
	for {
		pending, err := w.storage.ListPendingTally(ctx, w.batchSize)
		if err != nil {
			return fmt.Errorf("list pending costs: %w", err)
		}
		if len(pending) == 0 {
			return nil
		}
		for _, cost := range pending {
			if err := w.tallyCost(ctx, cost); err != nil {
				return fmt.Errorf("tally cost %d: %w", cost.ID, err)
			}
		}
	}
}

// tallyCost books the cost under its stored category name, valid or not.
// Dropping unknown categories is a report concern; the rollup keeps every row
// accounted for.
func (w *TallyWorker) tallyCost(ctx context.Context, cost core.Cost) error {
	date := cost.Date.UTC()
	err := w.storage.AddToMonthlyTotal(ctx,
		cost.UserID, date.Year(), int(date.Month()), string(cost.Category), cost.Sum)
	if err != nil {
		return fmt.Errorf("add to monthly total: %w", err)
	}

	if err := w.storage.MarkTallied(ctx, cost.ID); err != nil {
		return fmt.Errorf("mark tallied: %w", err)
	}

	slog.InfoContext(ctx, "Cost tallied",
		"id", cost.ID,
		"user_id", cost.UserID,
		"year", date.Year(),
		"month", int(date.Month()),
		"category", string(cost.Category))

	return nil
}
