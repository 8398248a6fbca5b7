package syncer

import "github.com/wesigned/wesigned/internal/client/notify"

// Fixed notifications raised on sync success.
var (
	AttendanceSynced = notify.Notification{
		Title: "Attendance Synced",
		Body:  "Your offline attendance has been successfully synced!",
		Icon:  "/images/logo.png",
	}
	SessionSynced = notify.Notification{
		Title: "Session Synced",
		Body:  "Your offline session has been successfully synced!",
		Icon:  "/images/logo.png",
	}
)
