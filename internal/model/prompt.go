package model

import "time"

// Prompt is a reusable snippet resolved by slash syntax ("/title rest") when
// a chat message is sent.
type Prompt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_prompts_user_title" json:"user_id"`
	Title     string    `gorm:"size:128;not null;uniqueIndex:idx_prompts_user_title" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
