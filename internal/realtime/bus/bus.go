// Package bus relays live messages between server instances so that a
// broadcast on one instance reaches clients connected to another.
package bus

import (
	"context"

	"github.com/yungbote/hive-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
