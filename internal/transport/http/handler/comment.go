package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/app"
	"gopherchat/internal/transport/http/response"
)

type CommentHandler struct {
	commentService *app.CommentService
}

type CreateCommentRequest struct {
	SelectedText string `json:"selected_text" binding:"max=4096"`
	StartOffset  int    `json:"start_offset" binding:"gte=0"`
	EndOffset    int    `json:"end_offset" binding:"gte=0"`
	Body         string `json:"body" binding:"required,max=4096"`
	WantAIReply  bool   `json:"want_ai_reply"`
}

func NewCommentHandler(commentService *app.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	messageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), app.CreateCommentInput{
		UserID:       userID,
		MessageID:    messageID,
		SelectedText: req.SelectedText,
		StartOffset:  req.StartOffset,
		EndOffset:    req.EndOffset,
		Body:         req.Body,
		WantAIReply:  req.WantAIReply,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrMessageNotFound):
			response.Error(c, http.StatusNotFound, response.CodeMessageNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create comment failed")
		}
		return
	}

	c.JSON(http.StatusCreated, response.APIResponse{
		Code:    response.CodeOK,
		Message: "ok",
		Data:    comment,
	})
}

func (h *CommentHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	messageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.commentService.List(userID, messageID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageNotFound):
			response.Error(c, http.StatusNotFound, response.CodeMessageNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list comments failed")
		}
		return
	}

	response.OK(c, comments)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(userID, commentID); err != nil {
		switch {
		case errors.Is(err, app.ErrCommentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeCommentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete comment failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_comment_id": commentID})
}

func (h *CommentHandler) GenerateAIReply(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comment, err := h.commentService.GenerateReply(c.Request.Context(), userID, commentID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrCommentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeCommentNotFound, err.Error())
		case errors.Is(err, app.ErrMessageNotFound):
			response.Error(c, http.StatusNotFound, response.CodeMessageNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate ai reply failed")
		}
		return
	}

	response.OK(c, comment)
}
