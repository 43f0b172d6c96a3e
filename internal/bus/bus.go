// Package bus implements the pub/sub bus contract the simulator core
// depends on: a latest-state key/value SET, a channel PUBLISH, and
// per-rental breadcrumb lists (RPUSH/LRANGE/DEL), plus a left-pushed,
// published completed-rentals list. This maps directly onto Redis, the
// only primitive in the reference pack offering all three shapes at once.
package bus

import "context"

// Bus is the pub/sub contract the simulator core talks to. It deliberately
// mirrors Redis command names rather than abstracting them away, since the
// spec's contract (SET/PUBLISH/RPUSH/LPUSH/LRANGE/DEL) already is the
// abstraction boundary.
type Bus interface {
	// Set stores value under key with latest-known retention (no publish).
	Set(ctx context.Context, key string, value []byte) error
	// Publish publishes value on channel.
	Publish(ctx context.Context, channel string, value []byte) error
	// RPush appends value to the right of the list at key.
	RPush(ctx context.Context, key string, value []byte) error
	// LPush prepends value to the left of the list at key.
	LPush(ctx context.Context, key string, value []byte) error
	// LRange returns the full contents of the list at key, in order.
	LRange(ctx context.Context, key string) ([][]byte, error)
	// Del deletes the key (used to clear a rental's coordinate list).
	Del(ctx context.Context, key string) error
	// Subscribe subscribes to channel and streams published payloads on the
	// returned channel until ctx is canceled, at which point the channel is
	// closed. The subscription itself, not just delivery, is a blocking
	// network call, so Subscribe can fail (bad connection, closed client).
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	// Close releases underlying connections.
	Close() error
}
