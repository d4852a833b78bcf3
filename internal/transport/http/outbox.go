package http

import "log"

// outbox funnels messages to a single writer goroutine; gorilla connections
// do not allow concurrent writes. Once the writer fails, pushes stop
// blocking and report false so the caller can wind the connection down.
type outbox struct {
	send chan outboundMessage[any]
	done chan struct{}
}

func newOutbox(size int, write func(outboundMessage[any]) error) *outbox {
	o := &outbox{
		send: make(chan outboundMessage[any], size),
		done: make(chan struct{}),
	}
	go func() {
		defer close(o.done)
		for msg := range o.send {
			if err := write(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()
	return o
}

// push queues msg and reports whether the writer is still accepting.
func (o *outbox) push(msg outboundMessage[any]) bool {
	return o.pushUntil(msg, nil)
}

// pushUntil is push that also gives up when stop is closed.
func (o *outbox) pushUntil(msg outboundMessage[any], stop <-chan struct{}) bool {
	select {
	case <-o.done:
		return false
	default:
	}
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	case <-stop:
		return false
	}
}

// close drains queued messages and waits for the writer to exit.
// No push may run concurrently with or after close.
func (o *outbox) close() {
	close(o.send)
	<-o.done
}
