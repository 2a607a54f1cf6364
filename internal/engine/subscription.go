package engine

const statusBufferSize = 16

// Subscription delivers status snapshots to one subscriber.
type Subscription struct {
	Status <-chan Status
	Done   <-chan struct{}

	statusCh chan Status
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		statusCh: make(chan Status, statusBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Status = s.statusCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers a snapshot without blocking; a slow subscriber loses
// intermediate snapshots, never the engine's progress.
func (s *Subscription) send(st Status) {
	select {
	case s.statusCh <- st:
	default:
	}
}
