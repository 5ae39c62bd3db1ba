package core

import "context"

// Message represents work to be processed by a worker.
type Message struct {
	Type string
	Body []byte
}

// Queue is the abstraction over the job queue backends.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	// Consume streams messages until ctx is done; the channel is then closed.
	Consume(ctx context.Context) (<-chan Message, error)
}
