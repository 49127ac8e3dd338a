package email

import (
	"context"
	"sync"
	"sync/atomic"
)

type StubSender struct {
	Count int32
	mux   sync.Mutex
	last  *Message
}

var _ Sender = (*StubSender)(nil)

func (sm *StubSender) SendEmail(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	atomic.AddInt32(&sm.Count, 1)

	sm.mux.Lock()
	sm.last = msg
	sm.mux.Unlock()

	return nil
}

func (sm *StubSender) LastMessage() *Message {
	sm.mux.Lock()
	defer sm.mux.Unlock()

	return sm.last
}
