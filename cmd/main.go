package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"cg-sahayak/handler"
	"cg-sahayak/internal/contextstore"
	"cg-sahayak/internal/integrations/elevenlabs"
	"cg-sahayak/internal/integrations/gemini"
	"cg-sahayak/internal/integrations/paramstore"
	"cg-sahayak/internal/integrations/whisper"
	"cg-sahayak/internal/repository"
	"cg-sahayak/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	contextTable := mustEnv("CONTEXT_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	cultureLimit := envInt("CULTURE_CONTEXT_LIMIT", 5)
	weatherLimit := envInt("WEATHER_CONTEXT_LIMIT", 3)
	contextTimeoutMS := envInt("CONTEXT_TIMEOUT_MS", 3000)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	stateClient, err := repository.New(dynamoClient, stateTable)
	if err != nil {
		slog.Error("failed to create state client", "err", err)
		os.Exit(1)
	}
	contextClient, err := contextstore.New(dynamoClient, contextTable)
	if err != nil {
		slog.Error("failed to create context client", "err", err)
		os.Exit(1)
	}

	// API keys are fetched here so a misconfigured parameter store kills the
	// process at startup instead of on the first request.
	geminiClient, err := gemini.NewClient(ctx, ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create Gemini client", "err", err)
		os.Exit(1)
	}
	whisperClient, err := whisper.NewClient(ctx, ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create Whisper client", "err", err)
		os.Exit(1)
	}
	elevenClient, err := elevenlabs.NewClient(ctx, ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create ElevenLabs client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(geminiClient, contextClient, stateClient, whisperClient, elevenClient,
		usecase.WithContextLimits(cultureLimit, weatherLimit),
		usecase.WithContextTimeout(time.Duration(contextTimeoutMS)*time.Millisecond),
	)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
