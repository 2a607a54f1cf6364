// Package notify raises desktop notifications for playback events,
// chiefly the title of the track that just started. Delivery goes over
// the freedesktop notification D-Bus service; on hosts without a
// session bus the notifier degrades to a no-op.
package notify

// Urgency is the freedesktop notification urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is a single message to the desktop. Track announcements
// use Title for the track title and Body for the album or artist line.
type Notification struct {
	Title      string  // summary line, required
	Body       string  // optional detail below the summary
	Icon       string  // icon name or image path
	Timeout    int32   // ms; -1 for server default, 0 to never expire
	ReplacesID uint32  // replace this earlier notification instead of stacking
	Urgency    Urgency
}

// Notifier delivers notifications to the desktop.
type Notifier interface {
	// Notify raises a notification and returns the server-assigned id,
	// or 0 when notifications are unavailable.
	Notify(n Notification) (uint32, error)
	// Close withdraws a previously raised notification.
	Close(id uint32) error
}
