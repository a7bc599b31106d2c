package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"gopherchat/internal/ai"
	"gopherchat/internal/content"
	"gopherchat/internal/model"
	"gopherchat/internal/repository"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	messageRepo *repository.MessageRepository
	chatRepo    *repository.ChatRepository
	llmClient   *ai.OpenAICompatibleClient
	defaultLLM  ai.ChatConfig
}

type CreateCommentInput struct {
	UserID       uint
	MessageID    uint
	SelectedText string
	StartOffset  int
	EndOffset    int
	Body         string
	WantAIReply  bool
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	messageRepo *repository.MessageRepository,
	chatRepo *repository.ChatRepository,
	defaultLLM ai.ChatConfig,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		llmClient:   ai.NewOpenAICompatibleClient(),
		defaultLLM:  defaultLLM,
	}
}

// Create stores the annotation. When an AI reply is requested it is attempted
// once after the comment exists; a reply failure never fails the creation.
func (s *CommentService) Create(ctx context.Context, input CreateCommentInput) (*model.Comment, error) {
	if input.UserID == 0 || input.MessageID == 0 || strings.TrimSpace(input.Body) == "" {
		return nil, ErrInvalidInput
	}
	if input.StartOffset < 0 || input.EndOffset < input.StartOffset {
		return nil, ErrInvalidInput
	}

	message, err := s.ownedMessage(input.MessageID, input.UserID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		MessageID:    input.MessageID,
		UserID:       input.UserID,
		SelectedText: input.SelectedText,
		StartOffset:  input.StartOffset,
		EndOffset:    input.EndOffset,
		Body:         strings.TrimSpace(input.Body),
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	if input.WantAIReply {
		if reply, replyErr := s.generateReply(ctx, message, comment); replyErr != nil {
			log.Printf("comment ai reply failed: %v", replyErr)
		} else {
			comment.AIReply = reply
		}
	}
	return comment, nil
}

func (s *CommentService) List(userID, messageID uint) ([]model.Comment, error) {
	if userID == 0 || messageID == 0 {
		return nil, ErrInvalidInput
	}
	if _, err := s.ownedMessage(messageID, userID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByMessageID(messageID)
}

func (s *CommentService) Delete(userID, commentID uint) error {
	if userID == 0 || commentID == 0 {
		return ErrInvalidInput
	}
	comment, err := s.commentRepo.GetByIDAndUserID(commentID, userID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	return s.commentRepo.DeleteByIDAndUserID(commentID, userID)
}

// GenerateReply produces (or regenerates) the AI reply for an existing
// comment on demand.
func (s *CommentService) GenerateReply(ctx context.Context, userID, commentID uint) (*model.Comment, error) {
	if userID == 0 || commentID == 0 {
		return nil, ErrInvalidInput
	}
	comment, err := s.commentRepo.GetByIDAndUserID(commentID, userID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	message, err := s.ownedMessage(comment.MessageID, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.generateReply(ctx, message, comment)
	if err != nil {
		return nil, err
	}
	comment.AIReply = reply
	return comment, nil
}

// generateReply asks the default model about the annotated span, using the
// message's flattened text as context. One attempt, then the result is
// persisted best-effort.
func (s *CommentService) generateReply(ctx context.Context, message *model.Message, comment *model.Comment) (string, error) {
	messageText := content.FlattenToText(message.ContentJSON())

	prompt := "A user annotated part of an assistant reply with a question or note. " +
		"Answer the note concisely, using the reply as context.\n\n" +
		"Full reply:\n" + messageText + "\n\n" +
		"Annotated span:\n" + comment.SelectedText + "\n\n" +
		"User's note:\n" + comment.Body

	completion, err := s.llmClient.Complete(ctx, s.defaultLLM, []ai.ChatMessage{
		ai.TextMessage("system", baseSystemPrompt),
		ai.TextMessage("user", prompt),
	})
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(completion.Text())
	if reply == "" {
		return "", errors.New("empty ai reply")
	}

	if err := s.commentRepo.UpdateAIReply(comment.ID, reply); err != nil {
		log.Printf("persist comment ai reply failed: %v", err)
	}
	return reply, nil
}

// ownedMessage loads a message and checks it belongs to one of the user's
// chats; cross-tenant access reads as not found.
func (s *CommentService) ownedMessage(messageID, userID uint) (*model.Message, error) {
	message, err := s.messageRepo.GetByID(messageID)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}
	chat, err := s.chatRepo.GetByIDAndUserID(message.ChatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrMessageNotFound
	}
	return message, nil
}
