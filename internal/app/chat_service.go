package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"gopherchat/internal/ai"
	"gopherchat/internal/content"
	"gopherchat/internal/model"
	"gopherchat/internal/repository"
	"gopherchat/internal/tool"
)

var (
	ErrChatNotFound   = errors.New("chat not found")
	ErrMessageEmpty   = errors.New("message content is empty")
	ErrLLMConfig      = errors.New("llm config is invalid")
	ErrMessageEnqueue = errors.New("message enqueue failed")
)

const (
	baseSystemPrompt = "You are a concise and helpful AI assistant."
	maxTitleRunes    = 60
)

type ChatService struct {
	chatRepo     *repository.ChatRepository
	messageRepo  *repository.MessageRepository
	promptRepo   *repository.PromptRepository
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	llmClient    *ai.OpenAICompatibleClient
	toolPool     *tool.Pool
	defaultLLM   ai.ChatConfig
	maxContext   int
}

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, chatID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, chatID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, chatID uint) error
	MarkDirty(ctx context.Context, chatID uint) error
	IsDirty(ctx context.Context, chatID uint) (bool, error)
}

type CreateChatInput struct {
	UserID uint
	Title  string
	Model  string
}

type SendMessageInput struct {
	UserID  uint
	ChatID  uint
	Content json.RawMessage
	LLM     LLMOverride
}

type SendMessageResult struct {
	Messages []model.Message `json:"messages"`
}

type LLMOverride struct {
	BaseURL string
	APIKey  string
	Model   string
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	messageRepo *repository.MessageRepository,
	promptRepo *repository.PromptRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	toolPool *tool.Pool,
	defaultLLM ai.ChatConfig,
	maxContext int,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 20
	}
	return &ChatService{
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		promptRepo:   promptRepo,
		publisher:    publisher,
		historyCache: historyCache,
		llmClient:    ai.NewOpenAICompatibleClient(),
		toolPool:     toolPool,
		defaultLLM:   defaultLLM,
		maxContext:   maxContext,
	}
}

func (s *ChatService) CreateChat(input CreateChatInput) (*model.Chat, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	chat := &model.Chat{
		UserID: input.UserID,
		Title:  strings.TrimSpace(input.Title),
		Model:  strings.TrimSpace(input.Model),
	}
	if chat.Model == "" {
		chat.Model = s.defaultLLM.Model
	}
	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats(userID uint) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.chatRepo.ListByUserID(userID)
}

func (s *ChatService) GetChat(userID, chatID uint) (*model.Chat, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}
	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

// DeleteChat cascades to the chat's messages and their comments.
func (s *ChatService) DeleteChat(userID, chatID uint) error {
	if userID == 0 || chatID == 0 {
		return ErrInvalidInput
	}
	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return err
	}
	if chat == nil {
		return ErrChatNotFound
	}
	if err := s.chatRepo.DeleteCascade(chatID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), chatID)
	}
	return nil
}

// SendMessage runs one completion round: slash-prompt expansion, system
// prompt with the tool catalog, provider transform, gateway call, multimodal
// normalization, generated-image detection, tool execution, persistence.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == 0 || input.ChatID == 0 {
		return nil, ErrInvalidInput
	}
	if content.FlattenToText(input.Content) == "" && !isPartsArray(input.Content) {
		return nil, ErrMessageEmpty
	}

	chat, err := s.chatRepo.GetByIDAndUserID(input.ChatID, input.UserID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	cfg, err := s.resolveLLM(chat, input.LLM)
	if err != nil {
		return nil, err
	}

	userContent, err := s.expandSlashPrompt(input.UserID, input.Content)
	if err != nil {
		return nil, err
	}

	promptMessages, err := s.buildPromptMessages(ctx, input.ChatID, userContent)
	if err != nil {
		return nil, err
	}

	userMessage := &model.Message{
		ChatID:    input.ChatID,
		UserID:    input.UserID,
		Role:      "user",
		CreatedAt: time.Now(),
	}
	userMessage.SetContentJSON(userContent)

	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.ChatID)
		_ = s.historyCache.DeleteHistory(ctx, input.ChatID)
	}
	if err := s.publisher.Publish(ctx, *userMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	completion, err := s.llmClient.Complete(ctx, cfg, promptMessages)
	if err != nil {
		return nil, err
	}

	assistantContent := s.normalizeReply(ctx, cfg, completion)

	assistantMessage := &model.Message{
		ChatID:    input.ChatID,
		UserID:    input.UserID,
		Role:      "assistant",
		CreatedAt: time.Now(),
	}
	assistantMessage.SetContentJSON(assistantContent)

	// The user already has the reply at this point; a persist failure is
	// logged, not surfaced.
	if err := s.publisher.Publish(ctx, *assistantMessage); err != nil {
		log.Printf("enqueue assistant message failed: %v", err)
	}

	s.deriveTitle(chat, userContent)

	return &SendMessageResult{
		Messages: []model.Message{*userMessage, *assistantMessage},
	}, nil
}

// normalizeReply converts a raw completion into storable content: reasoning
// fallback, generated-image detection, then the tool-call round.
func (s *ChatService) normalizeReply(ctx context.Context, cfg ai.ChatConfig, completion *ai.Completion) json.RawMessage {
	normalized := content.ToMultimodal(completion.Content, completion.Reasoning)

	if images := content.DetectImages(completion.RawMessage); len(images) > 0 {
		merged := content.MergeImagesIntoContent(content.FlattenToText(normalized), images)
		normalized = content.MarshalParts(merged)
	}

	draft := content.FlattenToText(normalized)
	calls := tool.ParseCalls(draft)
	if len(calls) == 0 || s.toolPool == nil {
		if draft == "" && !isPartsArray(normalized) {
			return mustJSONString("The model returned an empty response.")
		}
		return normalized
	}

	results := tool.ExecuteCalls(ctx, s.toolPool, calls)
	cleaned := tool.StripCalls(draft, calls)

	summary, err := s.summarizeToolRun(ctx, cfg, cleaned, results)
	if err != nil {
		log.Printf("tool summary completion failed: %v", err)
		if cleaned == "" {
			cleaned = tool.JoinResults(results)
		}
		return mustJSONString(cleaned)
	}
	return mustJSONString(summary)
}

// summarizeToolRun asks the same model for a natural-language account of the
// executed tools. One attempt, no retry.
func (s *ChatService) summarizeToolRun(ctx context.Context, cfg ai.ChatConfig, draft string, results []tool.Result) (string, error) {
	prompt := "The following tools were executed on the user's behalf. Summarize what " +
		"was done and the results in plain language.\n\nTool results:\n" + tool.JoinResults(results)
	if draft != "" {
		prompt += "\n\nYour draft reply before the tools ran:\n" + draft
	}

	completion, err := s.llmClient.Complete(ctx, cfg, []ai.ChatMessage{
		ai.TextMessage("system", baseSystemPrompt),
		ai.TextMessage("user", prompt),
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(completion.Text())
	if text == "" {
		return "", errors.New("empty tool summary")
	}
	return text, nil
}

func (s *ChatService) GetHistory(userID, chatID uint, limit int) ([]model.Message, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}

	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	ctx := context.Background()
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, chatID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, chatID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListByChatID(chatID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, chatID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, chatID, messages)
		}
	}
	return messages, nil
}

// StreamMessage streams a text-only completion over the chunk callback.
// Image detection and tool execution need the whole reply, so they only run
// on the non-streaming path.
func (s *ChatService) StreamMessage(
	ctx context.Context,
	input SendMessageInput,
	onChunk func(string) error,
) (string, error) {
	if input.UserID == 0 || input.ChatID == 0 {
		return "", ErrInvalidInput
	}
	if content.FlattenToText(input.Content) == "" && !isPartsArray(input.Content) {
		return "", ErrMessageEmpty
	}

	chat, err := s.chatRepo.GetByIDAndUserID(input.ChatID, input.UserID)
	if err != nil {
		return "", err
	}
	if chat == nil {
		return "", ErrChatNotFound
	}

	cfg, err := s.resolveLLM(chat, input.LLM)
	if err != nil {
		return "", err
	}

	userContent, err := s.expandSlashPrompt(input.UserID, input.Content)
	if err != nil {
		return "", err
	}

	promptMessages, err := s.buildPromptMessages(ctx, input.ChatID, userContent)
	if err != nil {
		return "", err
	}

	userMessage := &model.Message{
		ChatID:    input.ChatID,
		UserID:    input.UserID,
		Role:      "user",
		CreatedAt: time.Now(),
	}
	userMessage.SetContentJSON(userContent)

	if s.publisher == nil {
		return "", ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.ChatID)
		_ = s.historyCache.DeleteHistory(ctx, input.ChatID)
	}
	if err := s.publisher.Publish(ctx, *userMessage); err != nil {
		return "", ErrMessageEnqueue
	}

	full, err := s.llmClient.StreamComplete(ctx, cfg, promptMessages, onChunk)
	if err != nil {
		return "", err
	}
	full = strings.TrimSpace(full)
	if full == "" {
		full = "The model returned an empty response."
	}

	assistantMessage := &model.Message{
		ChatID:    input.ChatID,
		UserID:    input.UserID,
		Role:      "assistant",
		CreatedAt: time.Now(),
	}
	assistantMessage.SetContentText(full)

	if err := s.publisher.Publish(ctx, *assistantMessage); err != nil {
		log.Printf("enqueue assistant message failed: %v", err)
	}

	s.deriveTitle(chat, userContent)

	return full, nil
}

// expandSlashPrompt replaces a leading "/title rest" in plain-text content
// with the owner's matching prompt snippet.
func (s *ChatService) expandSlashPrompt(userID uint, raw json.RawMessage) (json.RawMessage, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return raw, nil
	}

	expanded, err := ExpandSlashCommand(text, func(title string) (string, bool, error) {
		prompt, lookupErr := s.promptRepo.GetByTitleAndUserID(title, userID)
		if lookupErr != nil {
			return "", false, lookupErr
		}
		if prompt == nil {
			return "", false, nil
		}
		return prompt.Content, true, nil
	})
	if err != nil {
		return nil, err
	}
	if expanded == text {
		return raw, nil
	}
	return mustJSONString(expanded), nil
}

func (s *ChatService) deriveTitle(chat *model.Chat, userContent json.RawMessage) {
	if chat.Title != "" {
		return
	}
	title := strings.TrimSpace(content.FlattenToText(userContent))
	if title == "" {
		return
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	if err := s.chatRepo.UpdateTitle(chat.ID, title); err != nil {
		log.Printf("derive chat title failed: %v", err)
		return
	}
	chat.Title = title
}

func (s *ChatService) buildPromptMessages(ctx context.Context, chatID uint, currentContent json.RawMessage) ([]ai.ChatMessage, error) {
	recent, err := s.messageRepo.ListRecentByChatID(chatID, s.maxContext)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.ChatMessage, 0, len(recent)+2)
	messages = append(messages, ai.TextMessage("system", s.systemPrompt(ctx)))
	for _, item := range recent {
		role := item.Role
		if role == "" {
			role = "user"
		}
		messages = append(messages, ai.ChatMessage{
			Role:    role,
			Content: item.ContentJSON(),
		})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: currentContent})
	return messages, nil
}

// systemPrompt advertises every reachable tool server's tools. A server that
// fails discovery is skipped for this request.
func (s *ChatService) systemPrompt(ctx context.Context) string {
	if s.toolPool == nil {
		return baseSystemPrompt
	}

	var catalog []tool.ServerTools
	for _, server := range s.toolPool.Servers() {
		tools, err := s.toolPool.ListTools(ctx, server.Name)
		if err != nil {
			log.Printf("list tools for %s failed: %v", server.Name, err)
			continue
		}
		catalog = append(catalog, tool.ServerTools{Server: server.Name, Tools: tools})
	}
	return tool.AugmentSystemPrompt(baseSystemPrompt, catalog)
}

func (s *ChatService) resolveLLM(chat *model.Chat, override LLMOverride) (ai.ChatConfig, error) {
	cfg := s.defaultLLM
	if chat != nil && strings.TrimSpace(chat.Model) != "" {
		cfg.Model = strings.TrimSpace(chat.Model)
	}
	if strings.TrimSpace(override.BaseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(override.BaseURL)
	}
	if strings.TrimSpace(override.APIKey) != "" {
		cfg.APIKey = strings.TrimSpace(override.APIKey)
	}
	if strings.TrimSpace(override.Model) != "" {
		cfg.Model = strings.TrimSpace(override.Model)
	}
	if cfg.BaseURL == "" || cfg.APIKey == "" || cfg.Model == "" {
		return ai.ChatConfig{}, ErrLLMConfig
	}
	return cfg, nil
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func isPartsArray(raw json.RawMessage) bool {
	var parts []content.Part
	if err := json.Unmarshal(raw, &parts); err != nil {
		return false
	}
	return len(parts) > 0
}

func mustJSONString(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
