package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cg-sahayak/internal/domain"
)

const (
	defaultCultureLimit   = 5
	defaultWeatherLimit   = 3
	defaultContextTimeout = 3 * time.Second

	// History page bounds. The cap keeps caller-supplied limits inside the
	// int32 the store hands to DynamoDB.
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200

	// Whisper has no Chhattisgarhi model; Hindi gives the closest recognition.
	transcriptionLanguage = "hi"

	// Marks persisted assistant messages whose audio was delivered with the
	// response body rather than stored.
	audioRefInline = "inline"
)

type Generator interface {
	Generate(ctx context.Context, prompt string, params domain.GenerationParams) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

type ContextProvider interface {
	FetchCulture(ctx context.Context, limit int) ([]domain.ContextSnippet, error)
	FetchWeather(ctx context.Context, limit int) ([]domain.ContextSnippet, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, name, language, userID string) (domain.ChatSession, error)
	AppendMessages(ctx context.Context, sessionID string, msgs []domain.ChatMessage) error
	GetRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
}

// ChatService drives one exchange: transcription, validation, concurrent
// grounding fetch, prompt assembly, generation, synthesis, persistence. It is
// stateless between calls; everything mutable is request-scoped.
type ChatService struct {
	generator   Generator
	transcriber Transcriber
	synthesizer Synthesizer
	contexts    ContextProvider
	store       SessionStore

	cultureLimit   int
	weatherLimit   int
	contextTimeout time.Duration
}

type Option func(*ChatService)

func WithContextLimits(culture, weather int) Option {
	return func(s *ChatService) {
		if culture > 0 {
			s.cultureLimit = culture
		}
		if weather > 0 {
			s.weatherLimit = weather
		}
	}
}

func WithContextTimeout(d time.Duration) Option {
	return func(s *ChatService) {
		if d > 0 {
			s.contextTimeout = d
		}
	}
}

// ChatInput is the normalized request. Audio, when present, replaces Message.
// SessionID absent means stateless mode: the exchange is served but nothing
// is persisted.
type ChatInput struct {
	Message        string
	Audio          []byte
	Tone           string
	ResponseLength string
	SessionID      string
	UserID         string
	VoiceOutput    bool
}

// ChatOutput is the normalized reply. AudioContent is base64 MPEG audio and
// is only set when voice output was requested and synthesis succeeded.
type ChatOutput struct {
	Reply          string
	Tone           string
	ResponseLength string
	AudioContent   string
}

type CreateSessionInput struct {
	Name     string
	Language string
	UserID   string
}

type CreateSessionOutput struct {
	SessionID string
}

// NewChatService wires the orchestrator. Transcriber and synthesizer may be
// nil when the deployment has no voice providers; the matching request
// features then degrade per their failure policy.
func NewChatService(gen Generator, contexts ContextProvider, store SessionStore, stt Transcriber, tts Synthesizer, opts ...Option) (*ChatService, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if contexts == nil {
		return nil, errors.New("usecase: context provider must not be nil")
	}
	if store == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	s := &ChatService{
		generator:      gen,
		transcriber:    stt,
		synthesizer:    tts,
		contexts:       contexts,
		store:          store,
		cultureLimit:   defaultCultureLimit,
		weatherLimit:   defaultWeatherLimit,
		contextTimeout: defaultContextTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat handles one exchange. The returned error is non-nil only for
// validation and transcription failures; every other failure degrades and the
// caller still receives a textual reply.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)

	if len(in.Audio) > 0 {
		if s.transcriber == nil {
			return ChatOutput{}, newError(ErrorTranscription, "transcription_unavailable", nil)
		}
		text, err := s.transcriber.Transcribe(ctx, in.Audio, transcriptionLanguage)
		if err != nil {
			return ChatOutput{}, newError(ErrorTranscription, "transcription_failed", err)
		}
		message = strings.TrimSpace(text)
	}

	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}

	tone := domain.ResolveTone(in.Tone)
	length := domain.ResolveLength(in.ResponseLength)

	culture, weather := s.fetchGrounding(ctx)

	prompt := buildPrompt(tone, length, culture, weather, message)

	reply, genErr := s.generator.Generate(ctx, prompt, length.GenerationParams())
	if genErr != nil {
		// No retry: the provider gives no idempotency guarantee for partial
		// completions. The user still gets a reply.
		slog.Warn("generation failed, serving fallback reply", "err", genErr)
		reply = FallbackReply
	}

	var audioContent string
	if genErr == nil && in.VoiceOutput {
		audioContent = s.synthesizeReply(ctx, reply, tone)
	}

	if sessionID := strings.TrimSpace(in.SessionID); sessionID != "" {
		s.persistExchange(ctx, sessionID, strings.TrimSpace(in.UserID), message, reply, tone, length, genErr == nil, audioContent != "")
	}

	return ChatOutput{
		Reply:          reply,
		Tone:           string(tone),
		ResponseLength: string(length),
		AudioContent:   audioContent,
	}, nil
}

// CreateSession starts a new conversation and returns its identifier.
func (s *ChatService) CreateSession(ctx context.Context, in CreateSessionInput) (CreateSessionOutput, error) {
	session, err := s.store.CreateSession(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Language), strings.TrimSpace(in.UserID))
	if err != nil {
		return CreateSessionOutput{}, newError(ErrorInternal, "session_create_error", err)
	}
	return CreateSessionOutput{SessionID: session.ID}, nil
}

// RecentMessages returns up to limit messages of a session, oldest first.
func (s *ChatService) RecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, newError(ErrorInvalidInput, "empty_session_id", nil)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	msgs, err := s.store.GetRecentMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, newError(ErrorInternal, "session_history_error", err)
	}
	return msgs, nil
}

// fetchGrounding issues the two corpus reads concurrently, each under its own
// timeout, and degrades either failure to an empty block. Total added latency
// is bounded by the slower read, not the sum.
func (s *ChatService) fetchGrounding(ctx context.Context) (culture, weather []domain.ContextSnippet) {
	var g errgroup.Group
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()
		rows, err := s.contexts.FetchCulture(fctx, s.cultureLimit)
		if err != nil {
			slog.Warn("cultural context fetch failed, continuing without it", "err", err)
			return nil
		}
		culture = rows
		return nil
	})
	g.Go(func() error {
		fctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()
		rows, err := s.contexts.FetchWeather(fctx, s.weatherLimit)
		if err != nil {
			slog.Warn("weather context fetch failed, continuing without it", "err", err)
			return nil
		}
		weather = rows
		return nil
	})
	_ = g.Wait()
	return culture, weather
}

// synthesizeReply renders the reply with the tone's voice. Failure is
// non-terminal: the textual reply is always delivered.
func (s *ChatService) synthesizeReply(ctx context.Context, reply string, tone domain.Tone) string {
	if s.synthesizer == nil {
		slog.Warn("voice output requested but no synthesizer configured")
		return ""
	}
	audio, err := s.synthesizer.Synthesize(ctx, reply, tone.Profile().VoiceID)
	if err != nil {
		slog.Warn("synthesis failed, returning text only", "err", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}

// persistExchange appends the exchange to the session. Both halves carry the
// requesting user's id when one was given. On a failed generation only the
// user message is written, keeping continuity for the next turn without
// recording a reply that was never generated. Errors are logged and
// swallowed; durability is best-effort relative to the synchronous reply.
func (s *ChatService) persistExchange(ctx context.Context, sessionID, userID, message, reply string, tone domain.Tone, length domain.Length, generated, hasAudio bool) {
	msgs := []domain.ChatMessage{
		newChatMessage(sessionID, userID, domain.RoleUser, message),
	}
	if generated {
		assistant := newChatMessage(sessionID, userID, domain.RoleAssistant, reply)
		assistant.Tone = string(tone)
		assistant.Length = string(length)
		if hasAudio {
			assistant.AudioRef = audioRefInline
		}
		msgs = append(msgs, assistant)
	}
	if err := s.store.AppendMessages(ctx, sessionID, msgs); err != nil {
		slog.Warn("failed to persist exchange", "sessionId", sessionID, "err", err)
	}
}

func newChatMessage(sessionID, userID, role, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        newUUID(),
		SessionID: sessionID,
		UserID:    userID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

var newUUID = func() string {
	return uuid.NewString()
}
