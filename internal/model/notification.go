package model

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// 通知只追加，唯一的修改是批量标记已读
type Notification struct {
	BaseModel
	UserID  uint64  `gorm:"not null;index"` // 接收者
	Content string  `gorm:"type:text;not null"`
	VideoID *uint64 `gorm:"index"` // 关注通知没有视频
	Type    string  `gorm:"type:varchar(16);not null"`
	Seen    bool    `gorm:"not null;default:false"`
	// 触发者被删除时置空，通知本身保留
	TriggeringUserID *uint64

	TriggeringUser *User  `gorm:"foreignKey:TriggeringUserID;constraint:OnDelete:SET NULL"`
	Video          *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
