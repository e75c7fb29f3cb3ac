// Package emitter delivers fetched events to consumers.
package emitter

import (
	"context"
	"log/slog"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
)

// Emitter receives the events of one fetch cycle.
type Emitter interface {
	// Emit delivers events fetched for a contract. Implementations must
	// not retain the slice past the call.
	Emit(ctx context.Context, contract string, events []*domain.Event) error
}

// LogEmitter writes each event to the structured log. It is the default
// sink when nothing downstream consumes events.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates a log-backed emitter.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, contract string, events []*domain.Event) error {
	for _, ev := range events {
		e.logger.Info("event",
			"contract", contract,
			"id", ev.ID,
			"tx_hash", ev.TxHash,
			"action", ev.Action,
			"from", ev.From,
			"to", ev.To,
			"amount", ev.Amount,
			"trade_pair", ev.TradePair,
		)
	}
	return nil
}

// ChannelEmitter pushes events onto a channel for in-process consumers.
type ChannelEmitter struct {
	ch chan *domain.Event
}

// NewChannelEmitter creates a channel-backed emitter with the given buffer.
func NewChannelEmitter(buffer int) *ChannelEmitter {
	return &ChannelEmitter{ch: make(chan *domain.Event, buffer)}
}

// Events returns the receive side of the channel.
func (e *ChannelEmitter) Events() <-chan *domain.Event {
	return e.ch
}

func (e *ChannelEmitter) Emit(ctx context.Context, contract string, events []*domain.Event) error {
	for _, ev := range events {
		select {
		case e.ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
