package model

import "time"

// Comment is an inline annotation on an assistant message. SelectedText and
// the offsets point into the message's flattened plain text; messages are
// immutable so offsets stay valid for the comment's lifetime.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MessageID    uint      `gorm:"not null;index" json:"message_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	SelectedText string    `gorm:"type:text;not null" json:"selected_text"`
	StartOffset  int       `gorm:"not null" json:"start_offset"`
	EndOffset    int       `gorm:"not null" json:"end_offset"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	AIReply      string    `gorm:"type:text" json:"ai_reply,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
