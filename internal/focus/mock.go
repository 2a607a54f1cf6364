package focus

// Mock is a scriptable broker for tests.
type Mock struct {
	deny     bool
	held     bool
	requests int
	releases int
	ch       chan Change
}

// NewMock creates a granting mock broker.
func NewMock() *Mock {
	return &Mock{ch: make(chan Change, changeBufferSize)}
}

func (m *Mock) Request(onGranted func()) bool {
	m.requests++
	if m.deny {
		return false
	}
	m.held = true
	onGranted()
	return true
}

func (m *Mock) Release() {
	m.releases++
	m.held = false
}

func (m *Mock) Changes() <-chan Change { return m.ch }

// Test helpers

// SetDeny makes subsequent requests fail without invoking the callback.
func (m *Mock) SetDeny(deny bool) { m.deny = deny }

// Deliver injects an asynchronous focus change.
func (m *Mock) Deliver(c Change) { m.ch <- c }

func (m *Mock) Held() bool { return m.held }

func (m *Mock) Requests() int { return m.requests }

func (m *Mock) Releases() int { return m.releases }

// Verify Mock implements Broker at compile time.
var _ Broker = (*Mock)(nil)
