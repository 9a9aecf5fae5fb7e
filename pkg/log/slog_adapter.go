package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger, for interactive
// development where a human is watching the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes event at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("media", event.Frame.MediaIndex),
			slog.Uint64("can_id", uint64(event.Frame.CANID)),
			slog.Int("size", event.Frame.Size),
		)
	case event.Transfer != nil:
		attrs = append(attrs,
			slog.String("kind", event.Transfer.Kind.String()),
			slog.Uint64("port", uint64(event.Transfer.PortID)),
			slog.Uint64("transfer_id", uint64(event.Transfer.TransferID)),
			slog.String("priority", event.Transfer.Priority.String()),
			slog.Uint64("peer_node", uint64(event.Transfer.PeerNode)),
		)
	case event.Session != nil:
		attrs = append(attrs,
			slog.String("kind", event.Session.Kind.String()),
			slog.Uint64("port", uint64(event.Session.PortID)),
			slog.String("old_state", event.Session.OldState),
			slog.String("new_state", event.Session.NewState),
		)
	case event.Promise != nil:
		attrs = append(attrs,
			slog.Uint64("service", uint64(event.Promise.ServiceID)),
			slog.Uint64("transfer_id", uint64(event.Promise.TransferID)),
			slog.String("outcome", event.Promise.Outcome),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "cyphal", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
