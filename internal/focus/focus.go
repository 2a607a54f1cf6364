// Package focus arbitrates exclusive use of the audio output device.
//
// Requesting the device is synchronous: the decision is known before
// Request returns. Losing the device is asynchronous and is delivered
// on the Changes channel without caller involvement, which is why the
// contract is split into request/notify halves.
package focus

// Change is an asynchronous focus notification from the broker.
type Change int

const (
	// Gain reports the device is available again after a transient loss.
	Gain Change = iota
	// LossPermanent reports another owner took the device for good.
	// The holder should release and persist its position.
	LossPermanent
	// LossTransient reports a short-lived interruption. The holder
	// should pause but keep its ownership intent.
	LossTransient
	// LossTransientCanDuck is a transient loss where lowering the
	// volume would be acceptable. Treated like LossTransient here.
	LossTransientCanDuck
)

// String returns the change kind name.
func (c Change) String() string {
	switch c {
	case Gain:
		return "Gain"
	case LossPermanent:
		return "LossPermanent"
	case LossTransient:
		return "LossTransient"
	case LossTransientCanDuck:
		return "LossTransientCanDuck"
	default:
		return "Unknown"
	}
}

// Transient reports whether the change is a loss the holder may
// recover from without re-requesting.
func (c Change) Transient() bool {
	return c == LossTransient || c == LossTransientCanDuck
}

// Broker grants exclusive use of the output device to one requester at
// a time.
type Broker interface {
	// Request asks for the device. If granted, onGranted runs inline
	// and Request returns true. If denied, the callback is not invoked
	// and Request returns false.
	Request(onGranted func()) bool
	// Release relinquishes the device unconditionally. Idempotent.
	Release()
	// Changes delivers asynchronous focus notifications.
	Changes() <-chan Change
}
