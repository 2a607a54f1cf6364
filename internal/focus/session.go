package focus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const changeBufferSize = 8

// Session is the in-process broker. On a desktop session there is no
// system-wide focus arbiter to consult, so the sole local requester is
// always granted; loss events come from outside glue (device unplugged,
// another consumer claiming the sink) through Deliver.
type Session struct {
	mu     sync.Mutex
	held   bool
	ch     chan Change
	logger *logrus.Logger
}

// NewSession creates a session broker.
func NewSession(logger *logrus.Logger) *Session {
	return &Session{
		ch:     make(chan Change, changeBufferSize),
		logger: logger,
	}
}

// Request grants the device to the caller and runs onGranted inline.
func (s *Session) Request(onGranted func()) bool {
	s.mu.Lock()
	s.held = true
	s.mu.Unlock()
	onGranted()
	return true
}

// Release relinquishes the device. Safe to call when not held.
func (s *Session) Release() {
	s.mu.Lock()
	s.held = false
	s.mu.Unlock()
}

// Held reports whether the device is currently held.
func (s *Session) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// Changes delivers asynchronous focus notifications.
func (s *Session) Changes() <-chan Change {
	return s.ch
}

// Deliver injects a focus change, dropping it if the buffer is full.
// Gain and transient-loss events are only meaningful while held.
func (s *Session) Deliver(c Change) {
	select {
	case s.ch <- c:
	default:
		s.logger.WithField("change", c.String()).Warn("focus change dropped, buffer full")
	}
}

// Verify Session implements Broker at compile time.
var _ Broker = (*Session)(nil)
