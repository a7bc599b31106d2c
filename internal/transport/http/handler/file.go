package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/filestore"
	"gopherchat/internal/transport/http/response"
)

// FileHandler exposes attachment upload, serving and the retention sweep.
type FileHandler struct {
	store         *filestore.Store
	cleanupSecret string
}

func NewFileHandler(store *filestore.Store, cleanupSecret string) *FileHandler {
	return &FileHandler{store: store, cleanupSecret: cleanupSecret}
}

// Upload accepts a multipart form with "file".
func (h *FileHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file (form field 'file')")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read uploaded file")
		return
	}

	saved, err := h.store.Save(file.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, filestore.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, err.Error())
		case errors.Is(err, filestore.ErrTypeNotAllowed):
			response.Error(c, http.StatusBadRequest, response.CodeFileTypeRejected, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store file failed")
		}
		return
	}

	c.JSON(http.StatusCreated, response.APIResponse{
		Code:    response.CodeOK,
		Message: "ok",
		Data:    saved,
	})
}

// Serve streams a stored file back. The store rejects traversal attempts
// before any filesystem access.
func (h *FileHandler) Serve(c *gin.Context) {
	name := c.Param("name")
	path, err := h.store.Resolve(name)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid file name")
		return
	}

	c.Header("Content-Type", h.store.ContentType(name))
	c.File(path)
}

// Cleanup triggers the retention sweep. When a cleanup secret is configured
// the caller must present it as a bearer token.
func (h *FileHandler) Cleanup(c *gin.Context) {
	if h.cleanupSecret != "" {
		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		if auth != "Bearer "+h.cleanupSecret {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid cleanup token")
			return
		}
	}

	removed, err := h.store.Sweep(time.Now())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "cleanup failed")
		return
	}

	response.OK(c, gin.H{"removed": removed})
}
