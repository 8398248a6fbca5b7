// Package notify raises user-visible notifications. Delivery is best
// effort: permission may be denied or no surface may exist, and callers
// never fail an operation because a notification could not be shown.
package notify

import "go.uber.org/zap"

// Notification is a user-visible message.
type Notification struct {
	Title string
	Body  string
	Icon  string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification) error
}

// LogNotifier writes notifications to the structured log. It stands in
// where no platform notification surface is available.
type LogNotifier struct {
	Log *zap.Logger
}

func (l *LogNotifier) Notify(n Notification) error {
	l.Log.Info("notification",
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.String("icon", n.Icon),
	)
	return nil
}
