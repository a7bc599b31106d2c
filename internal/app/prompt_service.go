package app

import (
	"errors"
	"strings"

	"gopherchat/internal/model"
	"gopherchat/internal/repository"
)

var (
	ErrPromptNotFound    = errors.New("prompt not found")
	ErrPromptTitleExists = errors.New("prompt title already exists")
)

type PromptService struct {
	promptRepo *repository.PromptRepository
}

type PromptInput struct {
	UserID  uint
	Title   string
	Content string
}

func NewPromptService(promptRepo *repository.PromptRepository) *PromptService {
	return &PromptService{promptRepo: promptRepo}
}

func (s *PromptService) Create(input PromptInput) (*model.Prompt, error) {
	title := normalizePromptTitle(input.Title)
	promptContent := strings.TrimSpace(input.Content)
	if input.UserID == 0 || title == "" || promptContent == "" {
		return nil, ErrInvalidInput
	}

	existing, err := s.promptRepo.GetByTitleAndUserID(title, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPromptTitleExists
	}

	prompt := &model.Prompt{
		UserID:  input.UserID,
		Title:   title,
		Content: promptContent,
	}
	if err := s.promptRepo.Create(prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *PromptService) List(userID uint) ([]model.Prompt, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.promptRepo.ListByUserID(userID)
}

func (s *PromptService) Update(promptID uint, input PromptInput) (*model.Prompt, error) {
	title := normalizePromptTitle(input.Title)
	promptContent := strings.TrimSpace(input.Content)
	if input.UserID == 0 || promptID == 0 || title == "" || promptContent == "" {
		return nil, ErrInvalidInput
	}

	prompt, err := s.promptRepo.GetByIDAndUserID(promptID, input.UserID)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, ErrPromptNotFound
	}

	if title != prompt.Title {
		existing, err := s.promptRepo.GetByTitleAndUserID(title, input.UserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrPromptTitleExists
		}
	}

	prompt.Title = title
	prompt.Content = promptContent
	if err := s.promptRepo.Update(prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

func (s *PromptService) Delete(userID, promptID uint) error {
	if userID == 0 || promptID == 0 {
		return ErrInvalidInput
	}
	prompt, err := s.promptRepo.GetByIDAndUserID(promptID, userID)
	if err != nil {
		return err
	}
	if prompt == nil {
		return ErrPromptNotFound
	}
	return s.promptRepo.DeleteByIDAndUserID(promptID, userID)
}

// PromptLookup resolves a slash title to its snippet content.
type PromptLookup func(title string) (content string, found bool, err error)

// ExpandSlashCommand rewrites "/title rest of message" into the snippet's
// content followed by the rest. Text not starting with a slash, or naming an
// unknown snippet, is returned unchanged.
func ExpandSlashCommand(text string, lookup PromptLookup) (string, error) {
	if !strings.HasPrefix(text, "/") {
		return text, nil
	}

	name, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	if name == "" {
		return text, nil
	}

	snippet, found, err := lookup(name)
	if err != nil {
		return "", err
	}
	if !found {
		return text, nil
	}

	if strings.TrimSpace(rest) == "" {
		return snippet, nil
	}
	return snippet + " " + rest, nil
}

func normalizePromptTitle(title string) string {
	return strings.TrimPrefix(strings.TrimSpace(title), "/")
}
