package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/cristofima/TaskAgent-AgenticAI-sub001/internal/domain/thread"
)

// ChatThread is the database schema for conversation threads.
//
// State uses the Postgres json type, not jsonb: the serialized blob carries
// a leading type discriminator per content item and jsonb re-orders keys,
// which would break reconstruction on the agent side.
type ChatThread struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ThreadID     string         `gorm:"type:varchar(64);uniqueIndex;not null"`
	State        datatypes.JSON `gorm:"type:json"`
	Title        *string        `gorm:"type:varchar(64)"`
	Preview      *string        `gorm:"type:varchar(128)"`
	MessageCount int            `gorm:"not null;default:0"`
	IsActive     bool           `gorm:"not null;default:true;index"`
	DeletedAt    *time.Time     `gorm:"index"`
}

// TableName specifies the table name for ChatThread.
func (ChatThread) TableName() string {
	return "chat_threads"
}

// EtoD converts the database entity to the domain model.
func (t *ChatThread) EtoD() *thread.Thread {
	return &thread.Thread{
		ID:           t.ID,
		ThreadID:     t.ThreadID,
		State:        json.RawMessage(t.State),
		Title:        t.Title,
		Preview:      t.Preview,
		MessageCount: t.MessageCount,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewSchemaThread creates a database entity from the domain model.
func NewSchemaThread(t *thread.Thread) *ChatThread {
	return &ChatThread{
		ID:           t.ID,
		ThreadID:     t.ThreadID,
		State:        datatypes.JSON(t.State),
		Title:        t.Title,
		Preview:      t.Preview,
		MessageCount: t.MessageCount,
		IsActive:     t.IsActive,
	}
}
