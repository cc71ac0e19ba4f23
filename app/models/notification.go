package models

import "time"

const NotificationNewOrder = "NEW_ORDER"

// Notification is an administrative inbox entry. There is at most one entry
// of each type per target.
type Notification struct {
	ID        uint      `gorm:"primaryKey"                                        json:"id"`
	Message   string    `gorm:"type:text;not null"                                json:"message"`
	Type      string    `gorm:"size:50;not null;uniqueIndex:idx_notification_target" json:"type"`
	TargetID  uint      `gorm:"uniqueIndex:idx_notification_target"               json:"targetId"`
	IsRead    bool      `gorm:"not null;default:false"                            json:"isRead"`
	CreatedAt time.Time `gorm:"index"                                             json:"createdAt"`
}
