package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/plumechat/plume/internal/attachment"
	"github.com/plumechat/plume/internal/memory"
	"github.com/plumechat/plume/internal/provider"
	"github.com/plumechat/plume/internal/turn"
)

// PartReader reads persisted turn part sequences.
type PartReader interface {
	ListTurnParts(ctx context.Context, turnID string) ([]turn.Part, error)
}

// ChatHandler accepts turn submissions (free text plus attachments) and
// serves the persisted part sequence back for rendering.
type ChatHandler struct {
	pipeline         *turn.Pipeline
	client           *provider.Client
	memories         *memory.Service
	parts            PartReader
	maxArtifactBytes int64
	logger           *slog.Logger
}

func NewChatHandler(log *slog.Logger, pipeline *turn.Pipeline, client *provider.Client, memories *memory.Service, parts PartReader, maxArtifactBytes int64) *ChatHandler {
	if maxArtifactBytes <= 0 {
		maxArtifactBytes = attachment.MaxArtifactBytes
	}
	return &ChatHandler{
		pipeline:         pipeline,
		client:           client,
		memories:         memories,
		parts:            parts,
		maxArtifactBytes: maxArtifactBytes,
		logger:           log.With(slog.String("handler", "chat")),
	}
}

func (h *ChatHandler) Register(e *echo.Echo) {
	e.POST("/chats/:chat_id/turns", h.SubmitTurn)
	e.GET("/chats/:chat_id/turns/:turn_id/parts", h.TurnParts)
}

type attachmentPayload struct {
	Name      string `json:"name" validate:"required"`
	MediaType string `json:"media_type" validate:"required"`
	// Data is the artifact content, standard base64.
	Data string `json:"data" validate:"required"`
}

type turnPayload struct {
	UserID      string              `json:"user_id" validate:"required"`
	Text        string              `json:"text"`
	Attachments []attachmentPayload `json:"attachments" validate:"dive"`
}

type turnResponse struct {
	TurnID string      `json:"turn_id"`
	State  string      `json:"state"`
	Parts  []turn.Part `json:"parts"`
	Reply  string      `json:"reply,omitempty"`
}

func (h *ChatHandler) SubmitTurn(c echo.Context) error {
	chatID, err := requireChatID(c)
	if err != nil {
		return err
	}

	var payload turnPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if strings.TrimSpace(payload.Text) == "" && len(payload.Attachments) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "turn needs text or at least one attachment")
	}

	artifacts := make([]attachment.Artifact, 0, len(payload.Attachments))
	for _, item := range payload.Attachments {
		data, err := decodeAttachmentBase64(item.Data, h.maxArtifactBytes)
		if err != nil {
			if errors.Is(err, attachment.ErrArtifactTooLarge) {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "attachment "+item.Name+": "+err.Error())
			}
			return echo.NewHTTPError(http.StatusBadRequest, "attachment "+item.Name+": invalid base64 data")
		}
		artifacts = append(artifacts, attachment.Artifact{
			ID:        uuid.NewString(),
			Name:      item.Name,
			MediaType: attachment.MediaType(item.MediaType),
			SizeBytes: int64(len(data)),
			Data:      data,
			CreatedAt: time.Now().UTC(),
		})
	}

	var texts []string
	if strings.TrimSpace(payload.Text) != "" {
		texts = append(texts, payload.Text)
	}

	input := turn.AssembleInput{
		UserID:    payload.UserID,
		ChatID:    chatID,
		TurnID:    uuid.NewString(),
		Texts:     texts,
		Artifacts: artifacts,
	}

	result, err := h.pipeline.AssembleTurn(c.Request().Context(), input)
	if err != nil {
		return h.mapPipelineError(result, err)
	}

	reply, err := h.client.Send(c.Request().Context(), result.MemoryContext, result.Parts)
	if err != nil {
		if errors.Is(err, provider.ErrGatewayUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Memory extraction never delays or fails the response.
	if h.memories != nil {
		go func(userID, chatID, userText, reply string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			h.memories.ExtractMemories(ctx, userID, chatID, userText, reply)
		}(payload.UserID, chatID, payload.Text, reply)
	}

	return c.JSON(http.StatusOK, turnResponse{
		TurnID: result.TurnID,
		State:  string(result.State),
		Parts:  result.Parts,
		Reply:  reply,
	})
}

// TurnParts returns a turn's persisted part sequence in assembly order.
func (h *ChatHandler) TurnParts(c echo.Context) error {
	if h.parts == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "message service not available")
	}
	if _, err := requireChatID(c); err != nil {
		return err
	}
	turnID := strings.TrimSpace(c.Param("turn_id"))
	if _, err := uuid.Parse(turnID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "turn_id must be a valid UUID")
	}

	parts, err := h.parts.ListTurnParts(c.Request().Context(), turnID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if parts == nil {
		parts = []turn.Part{}
	}
	return c.JSON(http.StatusOK, parts)
}

func (h *ChatHandler) mapPipelineError(result turn.AssembleResult, err error) error {
	switch {
	case errors.Is(err, attachment.ErrArtifactTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, attachment.ErrUnsupportedMediaType):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case result.State == turn.StateRejected:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("turn pipeline failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// requireChatID validates the chat path param up front so a malformed id
// fails as a client error, never as a storage error deep in the pipeline.
func requireChatID(c echo.Context) (string, error) {
	chatID := strings.TrimSpace(c.Param("chat_id"))
	if chatID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "chat_id is required")
	}
	if _, err := uuid.Parse(chatID); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "chat_id must be a valid UUID")
	}
	return chatID, nil
}

// decodeAttachmentBase64 decodes artifact content while enforcing the
// size cap on the decoded stream, so an oversized upload is rejected
// without ever buffering past the limit.
func decodeAttachmentBase64(encoded string, maxBytes int64) ([]byte, error) {
	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(encoded))
	return attachment.ReadAllWithLimit(decoder, maxBytes)
}
