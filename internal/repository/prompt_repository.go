package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gopherchat/internal/model"
)

type PromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

func (r *PromptRepository) Create(prompt *model.Prompt) error {
	if err := r.db.Create(prompt).Error; err != nil {
		return fmt.Errorf("create prompt failed: %w", err)
	}
	return nil
}

func (r *PromptRepository) ListByUserID(userID uint) ([]model.Prompt, error) {
	var prompts []model.Prompt
	if err := r.db.Where("user_id = ?", userID).Order("title ASC").Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("list prompts failed: %w", err)
	}
	return prompts, nil
}

func (r *PromptRepository) GetByIDAndUserID(promptID, userID uint) (*model.Prompt, error) {
	var prompt model.Prompt
	if err := r.db.Where("id = ? AND user_id = ?", promptID, userID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prompt failed: %w", err)
	}
	return &prompt, nil
}

func (r *PromptRepository) GetByTitleAndUserID(title string, userID uint) (*model.Prompt, error) {
	var prompt model.Prompt
	if err := r.db.Where("title = ? AND user_id = ?", title, userID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prompt by title failed: %w", err)
	}
	return &prompt, nil
}

func (r *PromptRepository) Update(prompt *model.Prompt) error {
	if err := r.db.Save(prompt).Error; err != nil {
		return fmt.Errorf("update prompt failed: %w", err)
	}
	return nil
}

func (r *PromptRepository) DeleteByIDAndUserID(promptID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", promptID, userID).Delete(&model.Prompt{}).Error; err != nil {
		return fmt.Errorf("delete prompt failed: %w", err)
	}
	return nil
}
