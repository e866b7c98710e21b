package domain

import "errors"

type NotificationType string

const (
	NotificationInfo    NotificationType = "INFO"
	NotificationSuccess NotificationType = "SUCCESS"
	NotificationWarning NotificationType = "WARNING"
	NotificationAlert   NotificationType = "ALERT"
)

// NotificationFeedLimit is how many notifications the feed keeps.
const NotificationFeedLimit = 10

var (
	MessageSuccessGetNotifications = "notifications retrieved successfully"
	MessageSuccessMarkRead         = "notifications marked as read"
	MessageFailedGetNotifications  = "failed to retrieve notifications"
	MessageFailedMarkRead          = "failed to mark notifications as read"

	ErrInvalidNotificationType = errors.New("invalid notification type")
)

type (
	Notification struct {
		ID        string           `json:"id"`
		Title     string           `json:"title"`
		Message   string           `json:"message"`
		Timestamp int64            `json:"timestamp"`
		IsRead    bool             `json:"isRead"`
		Type      NotificationType `json:"type"`
		Role      UserRole         `json:"role,omitempty"`
	}

	NotificationFeedResponse struct {
		Notifications []Notification `json:"notifications"`
		Unread        int            `json:"unread"`
	}
)

// VisibleTo reports whether a notification belongs in the feed of role.
func (n Notification) VisibleTo(role UserRole) bool {
	return n.Role == "" || n.Role == role
}
