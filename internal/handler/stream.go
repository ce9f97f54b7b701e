package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GoLaunchpad/launchgate/internal/stream"
)

type StreamHandler struct {
	hub *stream.Hub
}

func NewStreamHandler(hub *stream.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

func (h *StreamHandler) Subscribe(c *gin.Context) {
	h.hub.ServeHTTP(c.Writer, c.Request)
}
