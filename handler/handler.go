package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"cg-sahayak/internal/domain"
	"cg-sahayak/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type chatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	CreateSession(ctx context.Context, in usecase.CreateSessionInput) (usecase.CreateSessionOutput, error)
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}

// Handler adapts API Gateway proxy events to the chat use case. It owns JSON
// shapes, status-code mapping and the correlation id; all conversation logic
// lives below it.
type Handler struct {
	uc chatUseCase
}

func NewHandler(uc chatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

type chatRequest struct {
	Message        string `json:"message"`
	AudioContent   string `json:"audioContent,omitempty"`
	Tone           string `json:"tone,omitempty"`
	ResponseLength string `json:"responseLength,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
	UserID         string `json:"userId,omitempty"`
	VoiceOutput    bool   `json:"voiceOutput,omitempty"`
}

type chatResponse struct {
	Response       string `json:"response"`
	Emotion        string `json:"emotion"`
	ResponseLength string `json:"responseLength"`
	AudioContent   string `json:"audioContent,omitempty"`
}

type createSessionRequest struct {
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type messageJSON struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	Text           string `json:"text"`
	Tone           string `json:"tone,omitempty"`
	ResponseLength string `json:"responseLength,omitempty"`
	AudioRef       string `json:"audioRef,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

type messagesResponse struct {
	Messages []messageJSON `json:"messages"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	log := slog.With("correlationId", corrID, "method", event.HTTPMethod, "path", event.Path)

	var resp events.APIGatewayProxyResponse
	switch {
	case event.HTTPMethod == http.MethodPost && event.Path == "/chat":
		resp = h.handleChat(ctx, event.Body, log)
	case event.HTTPMethod == http.MethodPost && event.Path == "/sessions":
		resp = h.handleCreateSession(ctx, event.Body, log)
	case event.HTTPMethod == http.MethodGet && event.Path == "/messages":
		resp = h.handleMessages(ctx, event.QueryStringParameters, log)
	default:
		resp = errorJSON(http.StatusNotFound, "NOT_FOUND", "unknown route")
	}

	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers["Content-Type"] = "application/json"
	resp.Headers[correlationHeader] = corrID
	return resp, nil
}

func (h *Handler) handleChat(ctx context.Context, body string, log *slog.Logger) events.APIGatewayProxyResponse {
	var req chatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "request body is not valid JSON")
	}

	in := usecase.ChatInput{
		Message:        req.Message,
		Tone:           req.Tone,
		ResponseLength: req.ResponseLength,
		SessionID:      req.SessionID,
		UserID:         req.UserID,
		VoiceOutput:    req.VoiceOutput,
	}
	if req.AudioContent != "" {
		audio, err := base64.StdEncoding.DecodeString(req.AudioContent)
		if err != nil {
			return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "audioContent is not valid base64")
		}
		in.Audio = audio
	}

	out, err := h.uc.Chat(ctx, in)
	if err != nil {
		return mapError(err, log)
	}
	return okJSON(http.StatusOK, chatResponse{
		Response:       out.Reply,
		Emotion:        out.Tone,
		ResponseLength: out.ResponseLength,
		AudioContent:   out.AudioContent,
	})
}

func (h *Handler) handleCreateSession(ctx context.Context, body string, log *slog.Logger) events.APIGatewayProxyResponse {
	var req createSessionRequest
	if body != "" {
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "request body is not valid JSON")
		}
	}
	out, err := h.uc.CreateSession(ctx, usecase.CreateSessionInput{
		Name:     req.Name,
		Language: req.Language,
		UserID:   req.UserID,
	})
	if err != nil {
		return mapError(err, log)
	}
	return okJSON(http.StatusCreated, createSessionResponse{SessionID: out.SessionID})
}

func (h *Handler) handleMessages(ctx context.Context, query map[string]string, log *slog.Logger) events.APIGatewayProxyResponse {
	sessionID := query["sessionId"]
	limit := 0
	if raw := query["limit"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errorJSON(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "limit must be an integer")
		}
		limit = n
	}

	msgs, err := h.uc.RecentMessages(ctx, sessionID, limit)
	if err != nil {
		return mapError(err, log)
	}
	out := messagesResponse{Messages: make([]messageJSON, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, messageJSON{
			ID:             m.ID,
			Role:           m.Role,
			Text:           m.Text,
			Tone:           m.Tone,
			ResponseLength: m.Length,
			AudioRef:       m.AudioRef,
			CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return okJSON(http.StatusOK, out)
}

func mapError(err error, log *slog.Logger) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		switch ucErr.Code {
		case usecase.ErrorInvalidInput:
			return errorJSON(http.StatusBadRequest, string(ucErr.Code), ucErr.Reason)
		case usecase.ErrorTranscription:
			log.Warn("transcription failed", "reason", ucErr.Reason, "err", ucErr.Unwrap())
			return errorJSON(http.StatusBadGateway, string(ucErr.Code), ucErr.Reason)
		}
	}
	log.Error("request failed", "err", err)
	return errorJSON(http.StatusInternalServerError, string(usecase.ErrorInternal), "internal error")
}

func okJSON(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorJSON(http.StatusInternalServerError, string(usecase.ErrorInternal), "failed to encode response")
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(body)}
}

func errorJSON(status int, code, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Error: code, Message: message})
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(body)}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
