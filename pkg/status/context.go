package status

import "context"

type contextKey string

const channelKey contextKey = "status-channel"

// WithChannel returns a context carrying ch. The channel should be buffered
// since Send drops updates instead of blocking.
func WithChannel(ctx context.Context, ch chan<- Update) context.Context {
	return context.WithValue(ctx, channelKey, ch)
}

func getChannel(ctx context.Context) chan<- Update {
	if ctx == nil {
		return nil
	}
	ch, _ := ctx.Value(channelKey).(chan<- Update)
	return ch
}

// HasChannel reports whether ctx carries an update channel
func HasChannel(ctx context.Context) bool {
	return getChannel(ctx) != nil
}
