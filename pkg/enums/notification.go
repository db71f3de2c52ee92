package enums

import "fmt"

// NotificationType classifies in-app notification records.
type NotificationType string

const (
	NotificationTypeStatusChanged      NotificationType = "status_changed"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeStatusChanged,
	NotificationTypeSystemAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationKind names a lifecycle trigger handled by the dispatcher.
type NotificationKind string

const (
	NotificationKindLeaseCreated            NotificationKind = "lease_created"
	NotificationKindCampaignRedirectPending NotificationKind = "campaign_redirect_pending"
	NotificationKindCampaignRedirectUpdated NotificationKind = "campaign_redirect_updated"
	NotificationKindStatusChanged           NotificationKind = "status_changed"
)

// String implements fmt.Stringer.
func (k NotificationKind) String() string {
	return string(k)
}
