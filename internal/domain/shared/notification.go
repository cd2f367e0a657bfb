package shared

// NotificationKind separates celebratory messages from corrective hints.
type NotificationKind string

const (
	// NotificationSuccess marks completions, level-ups, and unlocks.
	NotificationSuccess NotificationKind = "success"
	// NotificationError marks mismatch hints shown to the player.
	NotificationError NotificationKind = "error"
)

// Notification is a user-facing message produced by the reward dispatcher.
// Within one completion the order is fixed: completion first, then a
// level-up if any, then achievement unlocks in evaluation order. Callers
// must present the list as-is.
type Notification struct {
	Message string           `json:"message"`
	Kind    NotificationKind `json:"kind"`
}

// SuccessNotification builds a success notification.
func SuccessNotification(message string) Notification {
	return Notification{Message: message, Kind: NotificationSuccess}
}

// ErrorNotification builds an error (hint) notification.
func ErrorNotification(message string) Notification {
	return Notification{Message: message, Kind: NotificationError}
}
