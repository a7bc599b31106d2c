package model

import (
	"encoding/json"
	"time"
)

// Message content is stored as raw JSON: either a JSON string or an array of
// typed parts (text / image_url / file) for multimodal messages.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"size:16;not null;index" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentJSON returns the stored content as raw JSON. Non-JSON legacy text is
// wrapped into a JSON string so callers always see a valid value.
func (m *Message) ContentJSON() json.RawMessage {
	raw := json.RawMessage(m.Content)
	if len(raw) > 0 && json.Valid(raw) {
		return raw
	}
	wrapped, _ := json.Marshal(m.Content)
	return wrapped
}

func (m *Message) SetContentJSON(raw json.RawMessage) {
	m.Content = string(raw)
}

func (m *Message) SetContentText(text string) {
	b, _ := json.Marshal(text)
	m.Content = string(b)
}

func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		alias
		Content json.RawMessage `json:"content"`
	}{
		alias:   alias(m),
		Content: m.ContentJSON(),
	})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	aux := struct {
		*alias
		Content json.RawMessage `json:"content"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Content = string(aux.Content)
	return nil
}
