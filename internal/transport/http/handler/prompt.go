package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/app"
	"gopherchat/internal/transport/http/response"
)

type PromptHandler struct {
	promptService *app.PromptService
}

type PromptRequest struct {
	Title   string `json:"title" binding:"required,max=128"`
	Content string `json:"content" binding:"required"`
}

func NewPromptHandler(promptService *app.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

func (h *PromptHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	prompt, err := h.promptService.Create(app.PromptInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrPromptTitleExists):
			response.Error(c, http.StatusBadRequest, response.CodePromptTitleExists, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create prompt failed")
		}
		return
	}

	c.JSON(http.StatusCreated, response.APIResponse{
		Code:    response.CodeOK,
		Message: "ok",
		Data:    prompt,
	})
}

func (h *PromptHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	prompts, err := h.promptService.List(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list prompts failed")
		return
	}

	response.OK(c, prompts)
}

func (h *PromptHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	prompt, err := h.promptService.Update(promptID, app.PromptInput{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrPromptTitleExists):
			response.Error(c, http.StatusBadRequest, response.CodePromptTitleExists, err.Error())
		case errors.Is(err, app.ErrPromptNotFound):
			response.Error(c, http.StatusNotFound, response.CodePromptNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update prompt failed")
		}
		return
	}

	response.OK(c, prompt)
}

func (h *PromptHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	promptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.promptService.Delete(userID, promptID); err != nil {
		switch {
		case errors.Is(err, app.ErrPromptNotFound):
			response.Error(c, http.StatusNotFound, response.CodePromptNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete prompt failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_prompt_id": promptID})
}
