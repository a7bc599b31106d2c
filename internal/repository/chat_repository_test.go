package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"gopherchat/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Chat{}, &model.Message{}, &model.Comment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	chats := NewChatRepository(db)
	messages := NewMessageRepository(db)
	comments := NewCommentRepository(db)

	mine := &model.Chat{UserID: 1, Title: "mine", Model: "openai/gpt-4o-mini"}
	theirs := &model.Chat{UserID: 2, Title: "theirs", Model: "openai/gpt-4o-mini"}
	for _, chat := range []*model.Chat{mine, theirs} {
		if err := chats.Create(chat); err != nil {
			t.Fatalf("create chat: %v", err)
		}
	}

	reply := &model.Message{ChatID: mine.ID, UserID: 1, Role: "assistant"}
	reply.SetContentText("hello")
	if err := messages.Create(reply); err != nil {
		t.Fatalf("create message: %v", err)
	}
	theirReply := &model.Message{ChatID: theirs.ID, UserID: 2, Role: "assistant"}
	theirReply.SetContentText("hi")
	if err := messages.Create(theirReply); err != nil {
		t.Fatalf("create message: %v", err)
	}

	note := &model.Comment{MessageID: reply.ID, UserID: 1, SelectedText: "hello", Body: "why hello"}
	if err := comments.Create(note); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := chats.DeleteCascade(mine.ID, 1); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}

	if got, err := chats.GetByIDAndUserID(mine.ID, 1); err != nil || got != nil {
		t.Errorf("deleted chat still readable: (%+v, %v)", got, err)
	}
	if got, err := messages.GetByID(reply.ID); err != nil || got != nil {
		t.Errorf("deleted chat's message still readable: (%+v, %v)", got, err)
	}
	if got, err := comments.GetByIDAndUserID(note.ID, 1); err != nil || got != nil {
		t.Errorf("deleted chat's comment still readable: (%+v, %v)", got, err)
	}

	if got, err := chats.GetByIDAndUserID(theirs.ID, 2); err != nil || got == nil {
		t.Errorf("other user's chat should survive: (%+v, %v)", got, err)
	}
	if got, err := messages.GetByID(theirReply.ID); err != nil || got == nil {
		t.Errorf("other user's message should survive: (%+v, %v)", got, err)
	}
}

func TestDeleteCascadeWrongOwnerKeepsChat(t *testing.T) {
	db := newTestDB(t)
	chats := NewChatRepository(db)

	chat := &model.Chat{UserID: 1, Title: "mine", Model: "openai/gpt-4o-mini"}
	if err := chats.Create(chat); err != nil {
		t.Fatalf("create chat: %v", err)
	}

	if err := chats.DeleteCascade(chat.ID, 2); err != nil {
		t.Fatalf("delete cascade: %v", err)
	}
	if got, err := chats.GetByIDAndUserID(chat.ID, 1); err != nil || got == nil {
		t.Errorf("chat deleted by a non-owner: (%+v, %v)", got, err)
	}
}
