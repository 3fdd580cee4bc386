package status

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultChannelSize is the buffer size of the update channel
	DefaultChannelSize = 100

	// DefaultFlushTimeout bounds how long cleanup waits for pending updates
	DefaultFlushTimeout = 5 * time.Second
)

// Level is the severity of an update
type Level string

const (
	LevelInfo     Level = "info"
	LevelProgress Level = "progress"
	LevelSuccess  Level = "success"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
)

// Update is one progress message emitted while synchronizing a zone
type Update struct {
	Level   Level
	Message string

	// Zone is the zone being changed, if any
	Zone string

	// Action is what is being done, e.g. "create-zone", "create", "update", "delete"
	Action string

	// Record is the affected record in "name TYPE" form
	Record string

	Timestamp time.Time
}

// NewUpdate creates an Update stamped with the current time
func NewUpdate(level Level, message string) Update {
	return Update{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// ForZone sets the zone of the update
func (u Update) ForZone(zone string) Update {
	u.Zone = zone
	return u
}

// WithAction sets the action of the update
func (u Update) WithAction(action string) Update {
	u.Action = action
	return u
}

// WithRecord sets the affected record of the update
func (u Update) WithRecord(record string) Update {
	u.Record = record
	return u
}

// Send delivers an update to the channel in ctx, if there is one.
// It never blocks: updates are dropped when the channel is full.
func Send(ctx context.Context, update Update) {
	ch := getChannel(ctx)
	if ch == nil {
		return
	}
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}
	select {
	case ch <- update:
	default:
	}
}

// Infof sends a formatted informational update
func Infof(ctx context.Context, format string, args ...any) {
	Send(ctx, NewUpdate(LevelInfo, fmt.Sprintf(format, args...)))
}

// Progressf sends a formatted progress update
func Progressf(ctx context.Context, format string, args ...any) {
	Send(ctx, NewUpdate(LevelProgress, fmt.Sprintf(format, args...)))
}

// Successf sends a formatted success update
func Successf(ctx context.Context, format string, args ...any) {
	Send(ctx, NewUpdate(LevelSuccess, fmt.Sprintf(format, args...)))
}

// Warningf sends a formatted warning update
func Warningf(ctx context.Context, format string, args ...any) {
	Send(ctx, NewUpdate(LevelWarning, fmt.Sprintf(format, args...)))
}

// Errorf sends a formatted error update
func Errorf(ctx context.Context, format string, args ...any) {
	Send(ctx, NewUpdate(LevelError, fmt.Sprintf(format, args...)))
}

// Handler processes updates received from the channel
type Handler func(Update)

// CleanupFunc closes the channel and waits for the handler to drain it
type CleanupFunc func()

// StartHandler attaches a new update channel to ctx and runs handler for
// every update in a background goroutine. The returned cleanup must be
// deferred; it waits at most DefaultFlushTimeout for pending updates.
func StartHandler(ctx context.Context, handler Handler) (context.Context, CleanupFunc) {
	return StartHandlerWithOptions(ctx, handler, DefaultChannelSize, DefaultFlushTimeout)
}

// StartHandlerWithOptions is StartHandler with an explicit buffer size and
// flush timeout
func StartHandlerWithOptions(ctx context.Context, handler Handler, channelSize int, flushTimeout time.Duration) (context.Context, CleanupFunc) {
	ch := make(chan Update, channelSize)
	ctx = WithChannel(ctx, ch)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range ch {
			handler(update)
		}
	}()

	cleanup := func() {
		close(ch)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(flushTimeout):
		}
	}

	return ctx, cleanup
}
