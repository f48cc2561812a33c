// Package guard gates charged export actions. Given a consumer snapshot and a
// pricing snapshot it decides whether the wrapped action runs, and performs
// the diamond charge atomically before the action ever starts — never after,
// so a charge failure can never follow a completed export.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrInsufficientBalance rejects an attempt whose balance cannot cover
	// the unit price. Nothing is charged and the action does not run.
	ErrInsufficientBalance = errors.New("guard: insufficient balance")

	// ErrConfirmationRequired is returned when the attempt would charge the
	// consumer but no explicit confirmation was supplied.
	ErrConfirmationRequired = errors.New("guard: confirmation required")
)

// Consumer is a point-in-time snapshot of the requesting user. The caller
// builds it from one ledger read immediately before the attempt; the guard
// never reads ambient state.
type Consumer struct {
	ID        string
	Balance   int
	Admin     bool
	ManualVIP bool
}

// Pricing is the economy snapshot in effect for the attempt.
type Pricing struct {
	UnitPrice    int
	VIPThreshold int
}

// Reason identifies which rule allowed the action, for auditing. The original
// economy treated manual VIP and threshold VIP identically; keeping distinct
// reasons costs nothing and preserves the audit trail.
type Reason string

const (
	ReasonAdmin     Reason = "admin"
	ReasonManualVIP Reason = "manual_vip"
	ReasonThreshold Reason = "balance_threshold"
	ReasonCharged   Reason = "charged"
)

// Outcome reports how an authorized attempt proceeded.
type Outcome struct {
	Reason  Reason
	Charged int
}

// Debitor performs the atomic balance deduction. ledger.SQLiteRepository
// satisfies it.
type Debitor interface {
	DebitUser(ctx context.Context, id string, amount int) error
}

type Guard struct {
	debitor Debitor
	logger  *slog.Logger
}

func New(debitor Debitor, logger *slog.Logger) *Guard {
	return &Guard{debitor: debitor, logger: logger}
}

// Authorize evaluates the decision table in order — administrator, manual
// VIP, balance threshold, price check, confirmed charge — and runs action
// exactly once if a rule permits it. When a charge is due it is applied
// before the action; a failed charge means the action never runs.
func (g *Guard) Authorize(ctx context.Context, consumer Consumer, pricing Pricing, confirmed bool, action func(ctx context.Context) error) (Outcome, error) {
	switch {
	case consumer.Admin:
		return g.proceed(ctx, Outcome{Reason: ReasonAdmin}, action)
	case consumer.ManualVIP:
		return g.proceed(ctx, Outcome{Reason: ReasonManualVIP}, action)
	case consumer.Balance >= pricing.VIPThreshold:
		return g.proceed(ctx, Outcome{Reason: ReasonThreshold}, action)
	case consumer.Balance < pricing.UnitPrice:
		return Outcome{}, ErrInsufficientBalance
	}

	if !confirmed {
		return Outcome{}, ErrConfirmationRequired
	}

	if err := g.debitor.DebitUser(ctx, consumer.ID, pricing.UnitPrice); err != nil {
		// Fail closed: no charge means no export.
		return Outcome{}, fmt.Errorf("guard: charge failed: %w", err)
	}

	if g.logger != nil {
		g.logger.Info("export charged", "user_id", consumer.ID, "cost", pricing.UnitPrice)
	}

	return g.proceed(ctx, Outcome{Reason: ReasonCharged, Charged: pricing.UnitPrice}, action)
}

func (g *Guard) proceed(ctx context.Context, outcome Outcome, action func(ctx context.Context) error) (Outcome, error) {
	if err := action(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}
