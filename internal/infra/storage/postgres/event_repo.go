package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage"
)

// EventRepo implements storage.EventRepository on PostgreSQL.
type EventRepo struct {
	db *DB
}

// NewEventRepo creates a PostgreSQL-backed event archive.
func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

type eventRow struct {
	ContractAddress string         `db:"contract_address"`
	EventID         string         `db:"event_id"`
	TxHash          string         `db:"tx_hash"`
	Action          string         `db:"action"`
	FromAddress     sql.NullString `db:"from_address"`
	ToAddress       sql.NullString `db:"to_address"`
	Amount          sql.NullString `db:"amount"`
	TradePair       sql.NullString `db:"trade_pair"`
	SellPrice       sql.NullString `db:"sell_price"`
	EscrowAddress   sql.NullString `db:"escrow_address"`
	RemainingAmount sql.NullString `db:"remaining_amount"`
	PreferredAgent  sql.NullString `db:"preferred_agent"`
	MatchOthers     bool           `db:"match_others"`
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (row *eventRow) toDomain() *domain.Event {
	return &domain.Event{
		ID:              row.EventID,
		TxHash:          row.TxHash,
		Action:          domain.ActionType(row.Action),
		From:            row.FromAddress.String,
		To:              row.ToAddress.String,
		Amount:          row.Amount.String,
		TradePair:       row.TradePair.String,
		SellPrice:       row.SellPrice.String,
		EscrowAddress:   row.EscrowAddress.String,
		RemainingAmount: row.RemainingAmount.String,
		PreferredAgent:  row.PreferredAgent.String,
		MatchOthers:     row.MatchOthers,
	}
}

// SaveBatch archives events for a contract. Replayed events are skipped via
// the unique constraint so re-fetching the same page is harmless.
func (r *EventRepo) SaveBatch(ctx context.Context, contract string, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO events (
			contract_address, event_id, tx_hash, action,
			from_address, to_address, amount, trade_pair, sell_price,
			escrow_address, remaining_amount, preferred_agent, match_others
		) VALUES (
			:contract_address, :event_id, :tx_hash, :action,
			:from_address, :to_address, :amount, :trade_pair, :sell_price,
			:escrow_address, :remaining_amount, :preferred_agent, :match_others
		)
		ON CONFLICT (contract_address, tx_hash, event_id) DO NOTHING`

	for _, e := range events {
		row := eventRow{
			ContractAddress: contract,
			EventID:         e.ID,
			TxHash:          e.TxHash,
			Action:          string(e.Action),
			FromAddress:     nullable(e.From),
			ToAddress:       nullable(e.To),
			Amount:          nullable(e.Amount),
			TradePair:       nullable(e.TradePair),
			SellPrice:       nullable(e.SellPrice),
			EscrowAddress:   nullable(e.EscrowAddress),
			RemainingAmount: nullable(e.RemainingAmount),
			PreferredAgent:  nullable(e.PreferredAgent),
			MatchOthers:     e.MatchOthers,
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// GetByTxHash retrieves an archived event.
func (r *EventRepo) GetByTxHash(ctx context.Context, contract, txHash string) (*domain.Event, error) {
	const query = `
		SELECT contract_address, event_id, tx_hash, action,
		       from_address, to_address, amount, trade_pair, sell_price,
		       escrow_address, remaining_amount, preferred_agent, match_others
		FROM events
		WHERE contract_address = $1 AND tx_hash = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, contract, txHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return row.toDomain(), nil
}

// ListByContract returns the most recently archived events.
func (r *EventRepo) ListByContract(ctx context.Context, contract string, limit int) ([]*domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT contract_address, event_id, tx_hash, action,
		       from_address, to_address, amount, trade_pair, sell_price,
		       escrow_address, remaining_amount, preferred_agent, match_others
		FROM events
		WHERE contract_address = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, contract, limit); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*domain.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toDomain())
	}
	return events, nil
}

// CountByAction returns archived event counts per action.
func (r *EventRepo) CountByAction(ctx context.Context, contract string) (map[domain.ActionType]int, error) {
	const query = `
		SELECT action, COUNT(*) AS n
		FROM events
		WHERE contract_address = $1
		GROUP BY action`

	var rows []struct {
		Action string `db:"action"`
		N      int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, contract); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	counts := make(map[domain.ActionType]int, len(rows))
	for _, row := range rows {
		counts[domain.ActionType(row.Action)] = row.N
	}
	return counts, nil
}
