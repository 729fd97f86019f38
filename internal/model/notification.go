package model

import "time"

// 通知类型
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
)

// NotificationState 通知生命周期
// Pending → Persisted → Delivered → Read；推送失败的通知停留在 Delivered 且未读
type NotificationState string

const (
	NotificationPending   NotificationState = "pending"
	NotificationPersisted NotificationState = "persisted"
	NotificationDelivered NotificationState = "delivered"
	NotificationRead      NotificationState = "read"
)

// Notification 通知消息表 — 对应 notifications
// 由通知分发器创建；仅允许接收人标记已读，其他字段写入后不再修改
type Notification struct {
	NotificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string     `gorm:"type:varchar(20);not null"                      json:"type"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string     `gorm:"type:text;not null"                             json:"message"`
	Link           string     `gorm:"type:varchar(500);not null;default:''"          json:"link"`
	IsRead         bool       `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt         *time.Time `gorm:"type:timestamptz"                               json:"read_at,omitempty"`
	DeliveredAt    *time.Time `gorm:"type:timestamptz"                               json:"-"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// State 由持久化字段推导当前状态
func (n *Notification) State() NotificationState {
	switch {
	case n.IsRead:
		return NotificationRead
	case n.DeliveredAt != nil:
		return NotificationDelivered
	case n.NotificationID != "":
		return NotificationPersisted
	default:
		return NotificationPending
	}
}
