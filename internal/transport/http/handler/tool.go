package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/tool"
	"gopherchat/internal/transport/http/response"
)

// ToolHandler exposes tool-server discovery and direct invocation.
type ToolHandler struct {
	pool *tool.Pool
}

type CallToolRequest struct {
	Server string          `json:"server" binding:"required,max=64"`
	Tool   string          `json:"tool" binding:"required,max=64"`
	Args   json.RawMessage `json:"args"`
}

func NewToolHandler(pool *tool.Pool) *ToolHandler {
	return &ToolHandler{pool: pool}
}

// List returns every configured server with its advertised tools. A server
// that fails discovery is reported with an error instead of its tools.
func (h *ToolHandler) List(c *gin.Context) {
	type serverEntry struct {
		Name  string      `json:"name"`
		Tools []tool.Tool `json:"tools,omitempty"`
		Error string      `json:"error,omitempty"`
	}

	servers := make([]serverEntry, 0)
	for _, server := range h.pool.Servers() {
		entry := serverEntry{Name: server.Name}
		tools, err := h.pool.ListTools(c.Request.Context(), server.Name)
		if err != nil {
			log.Printf("list tools for %s failed: %v", server.Name, err)
			entry.Error = "tool server unavailable"
		} else {
			entry.Tools = tools
		}
		servers = append(servers, entry)
	}

	response.OK(c, gin.H{"servers": servers})
}

func (h *ToolHandler) Call(c *gin.Context) {
	var req CallToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	output, err := h.pool.CallTool(c.Request.Context(), req.Server, req.Tool, req.Args)
	if err != nil {
		response.Error(c, http.StatusBadGateway, response.CodeInternalServer, err.Error())
		return
	}

	response.OK(c, gin.H{"output": output})
}
