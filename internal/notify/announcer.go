package notify

import (
	"github.com/ndelorme/quaver/internal/engine"
)

const trackNotificationTimeout = 4000 // ms

// Announcer watches the engine and raises a desktop notification each
// time a different track starts playing. Consecutive snapshots for the
// same track replace the existing notification instead of stacking.
type Announcer struct {
	notifier Notifier
	sub      *engine.Subscription

	lastID   uint32
	lastPath string
}

// StartAnnouncer subscribes to the engine and announces track changes
// until the engine closes.
func StartAnnouncer(e *engine.Engine, notifier Notifier) *Announcer {
	a := &Announcer{
		notifier: notifier,
		sub:      e.Subscribe(),
	}
	go a.run()
	return a
}

func (a *Announcer) run() {
	for {
		select {
		case <-a.sub.Done:
			return
		case st := <-a.sub.Status:
			a.handle(st)
		}
	}
}

func (a *Announcer) handle(st engine.Status) {
	if st.State != engine.StatePlaying || st.Track == nil {
		return
	}
	if st.Track.Path == a.lastPath {
		return
	}
	a.lastPath = st.Track.Path

	id, err := a.notifier.Notify(Notification{
		Title:      st.Track.Title,
		Body:       st.Track.Subtitle,
		Icon:       "media-playback-start",
		Timeout:    trackNotificationTimeout,
		ReplacesID: a.lastID,
		Urgency:    UrgencyLow,
	})
	if err == nil && id != 0 {
		a.lastID = id
	}
}
