package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"claira-social/internal/app"
	"claira-social/internal/transport/http/middleware"
	"claira-social/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	log         zerolog.Logger
}

type ChatRequest struct {
	Message string `json:"message"`
}

func NewChatHandler(chatService *app.ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

// Stream answers one chat turn as server-sent events. The response ends when
// generation completes, with no closing frame. Errors found before the first
// byte is written use the JSON envelope; later failures are reported in-band
// as an error event.
func (h *ChatHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	ctx := c.Request.Context()
	reply, err := h.chatService.Begin(ctx, userID, req.Message)
	if err != nil {
		writeError(c, h.log, err, "chat failed")
		return
	}
	defer reply.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher.Flush()

	for {
		fragment, err := reply.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				h.log.Info().Uint("owner_id", userID).Int("partial_len", len(reply.Text())).Msg("chat client disconnected")
				return
			}
			h.log.Error().Err(err).
				Str("request_id", c.GetString(middleware.ContextRequestIDKey)).
				Uint("owner_id", userID).
				Msg("chat stream failed")
			writeEvent(c.Writer, "error", app.ErrUpstreamFailure.Error())
			flusher.Flush()
			return
		}
		if writeErr := writeEvent(c.Writer, "", fragment); writeErr != nil {
			return
		}
		flusher.Flush()
	}
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.History(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, h.log, err, "get history failed")
		return
	}

	response.OK(c, history)
}

// writeEvent writes one SSE frame. A payload spanning several lines becomes
// several data lines, which clients join back with newlines.
func writeEvent(w io.Writer, event, data string) error {
	var sb strings.Builder
	if event != "" {
		sb.WriteString("event: ")
		sb.WriteString(event)
		sb.WriteByte('\n')
	}
	data = strings.ReplaceAll(data, "\r\n", "\n")
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}
