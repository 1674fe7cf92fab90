package convert

import "github.com/slok/hkxbatch/internal/model"

// eventStream is an unbounded multi producer, single consumer event channel.
// Producers never wait for the consumer: a pump goroutine is always ready to
// receive and queues the events the consumer has not read yet.
type eventStream struct {
	in  chan model.ProgressEvent
	out chan model.ProgressEvent
}

func newEventStream() *eventStream {
	s := &eventStream{
		in:  make(chan model.ProgressEvent),
		out: make(chan model.ProgressEvent),
	}
	go s.pump()
	return s
}

func (s *eventStream) pump() {
	defer close(s.out)

	var queue []model.ProgressEvent
	in := s.in
	for in != nil || len(queue) > 0 {
		// A nil channel disables the send case while the queue is empty.
		var out chan model.ProgressEvent
		var next model.ProgressEvent
		if len(queue) > 0 {
			out = s.out
			next = queue[0]
		}

		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, ev)
		case out <- next:
			queue[0] = model.ProgressEvent{}
			queue = queue[1:]
		}
	}
}

// send queues an event. It must not be called after close.
func (s *eventStream) send(ev model.ProgressEvent) { s.in <- ev }

// close ends the stream, the consumer still receives the queued events.
func (s *eventStream) close() { close(s.in) }

// events is the consumer side.
func (s *eventStream) events() <-chan model.ProgressEvent { return s.out }
