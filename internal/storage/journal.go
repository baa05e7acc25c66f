package storage

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// 事件类型与结果，写入 ingest_events.kind / result
const (
	KindFeedSync = "feed_sync"
	KindWebhook  = "webhook"

	ResultOK        = "ok"
	ResultFallback  = "fallback"
	ResultKept      = "kept"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
)

// IngestEvent 一次采集（feed 同步或 webhook 推送）的结果，只用于审计，不参与读路径
type IngestEvent struct {
	ID      uint              `gorm:"primaryKey" json:"id"`
	Kind    string            `gorm:"size:32;index" json:"kind"`
	Result  string            `gorm:"size:32;index" json:"result"`
	Link    string            `gorm:"size:1024" json:"link,omitempty"`
	PostID  string            `gorm:"size:64" json:"postId,omitempty"`
	Count   int               `json:"count"`
	Error   string            `gorm:"size:512" json:"error,omitempty"`
	Payload datatypes.JSONMap `gorm:"type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Journal 把采集事件追加到 PostgreSQL
type Journal struct {
	DB *gorm.DB
}

// NewJournal dsn 为空时返回 nil（不启用审计）
func NewJournal(dsn string) (*Journal, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&IngestEvent{}); err != nil {
		return nil, err
	}
	return &Journal{DB: db}, nil
}

// Record 追加一条事件
func (j *Journal) Record(ctx context.Context, ev *IngestEvent) error {
	if j == nil || j.DB == nil {
		return nil
	}
	ev.Link = truncateRunesDB(toValidUTF8(ev.Link), 1024)
	ev.Error = truncateRunesDB(toValidUTF8(ev.Error), 512)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	return j.DB.WithContext(ctx).Create(ev).Error
}

// Recent 返回最近 limit 条事件（新 → 旧）
func (j *Journal) Recent(ctx context.Context, limit int) ([]IngestEvent, error) {
	if j == nil || j.DB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var list []IngestEvent
	if err := j.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
