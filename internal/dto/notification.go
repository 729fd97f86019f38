package dto

// ── 通知模块 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GetLimit 默认 20 条
func (r *NotificationListRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}

// BroadcastRequest 系统公告
type BroadcastRequest struct {
	Title   string `json:"title"   binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required,min=1,max=2000"`
	Link    string `json:"link"    binding:"omitempty,max=500"`
}

// NotificationResponse 通知信息
type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Link      string  `json:"link"`
	IsRead    bool    `json:"is_read"`
	ReadAt    *string `json:"read_at,omitempty"`
	CreatedAt string  `json:"created_at"`
}
