package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gopherchat/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("create comment failed: %w", err)
	}
	return nil
}

func (r *CommentRepository) GetByIDAndUserID(commentID, userID uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.Where("id = ? AND user_id = ?", commentID, userID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get comment failed: %w", err)
	}
	return &comment, nil
}

func (r *CommentRepository) ListByMessageID(messageID uint) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.Where("message_id = ?", messageID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) UpdateAIReply(commentID uint, reply string) error {
	if err := r.db.Model(&model.Comment{}).Where("id = ?", commentID).Update("ai_reply", reply).Error; err != nil {
		return fmt.Errorf("update comment ai reply failed: %w", err)
	}
	return nil
}

func (r *CommentRepository) DeleteByIDAndUserID(commentID, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", commentID, userID).Delete(&model.Comment{}).Error; err != nil {
		return fmt.Errorf("delete comment failed: %w", err)
	}
	return nil
}
