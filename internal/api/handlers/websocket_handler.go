package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/router"
	"github.com/math-tutor/backend/pkg/logger"
)

type WebSocketHandler struct {
	router *router.Router
}

func NewWebSocketHandler(r *router.Router) *WebSocketHandler {
	return &WebSocketHandler{router: r}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string `json:"type"`
			Question string `json:"question"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "solve" {
			continue
		}

		logger.Info("Processing WebSocket question", zap.String("question", msg.Question))

		if err := h.streamAnswer(c, msg.Question); err != nil {
			logger.Error("Failed to stream answer", zap.Error(err))
			h.sendError(c, "Failed to process question")
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, question string) error {
	h.send(c, "status", "Working on it...")

	answer, err := h.router.Solve(context.Background(), question)
	if err != nil {
		var rejected *router.ContentRejectedError
		if errors.As(err, &rejected) {
			h.sendError(c, rejected.Message)
			return nil
		}
		return err
	}

	for _, chunk := range splitIntoChunks(answer.Answer) {
		if err := h.send(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":       "complete",
		"route":      answer.RouteTaken,
		"component":  answer.ComponentUsed,
		"confidence": answer.Confidence,
		"source":     answer.SourceInfo,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

// splitIntoChunks breaks the answer into word chunks for streaming,
// preserving line breaks.
func splitIntoChunks(text string) []string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		for i, word := range words {
			if i < len(words)-1 {
				word += " "
			}
			chunks = append(chunks, word)
		}
		chunks = append(chunks, "\n")
	}
	if len(chunks) > 0 {
		chunks = chunks[:len(chunks)-1]
	}
	return chunks
}
