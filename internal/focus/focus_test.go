package focus

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSession_RequestRunsCallbackInline(t *testing.T) {
	s := NewSession(testLogger())

	ran := false
	granted := s.Request(func() { ran = true })

	if !granted {
		t.Error("Request() should grant on a session broker")
	}
	if !ran {
		t.Error("onGranted should run inline before Request returns")
	}
	if !s.Held() {
		t.Error("Held() should be true after grant")
	}
}

func TestSession_ReleaseIdempotent(t *testing.T) {
	s := NewSession(testLogger())
	s.Request(func() {})

	s.Release()
	s.Release()

	if s.Held() {
		t.Error("Held() should be false after release")
	}
}

func TestSession_Deliver(t *testing.T) {
	s := NewSession(testLogger())

	s.Deliver(LossTransient)

	select {
	case c := <-s.Changes():
		if c != LossTransient {
			t.Errorf("change = %v, want LossTransient", c)
		}
	default:
		t.Fatal("no change delivered")
	}
}

func TestSession_DeliverDropsWhenFull(t *testing.T) {
	s := NewSession(testLogger())

	for i := 0; i < changeBufferSize+4; i++ {
		s.Deliver(Gain)
	}

	// Buffer holds at most changeBufferSize; the rest were dropped
	// without blocking.
	count := 0
	for {
		select {
		case <-s.Changes():
			count++
			continue
		default:
		}
		break
	}
	if count != changeBufferSize {
		t.Errorf("buffered changes = %d, want %d", count, changeBufferSize)
	}
}

func TestMock_Deny(t *testing.T) {
	m := NewMock()
	m.SetDeny(true)

	ran := false
	granted := m.Request(func() { ran = true })

	if granted {
		t.Error("Request() should be denied")
	}
	if ran {
		t.Error("onGranted must not run when denied")
	}
}

func TestChange_Transient(t *testing.T) {
	if Gain.Transient() || LossPermanent.Transient() {
		t.Error("Gain and LossPermanent are not transient")
	}
	if !LossTransient.Transient() || !LossTransientCanDuck.Transient() {
		t.Error("transient losses should report Transient()")
	}
}
