// Command llmtest exercises the configured LLM providers with a short kiosk
// conversation. Useful before an open house to confirm credentials and model
// ids without starting the full API.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/assistant"
	appconfig "github.com/ProgramacionCECADE/kiosk-assistant/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := assistant.LLMRequest{
		System: []string{
			"Eres el asistente virtual del kiosco de CECADE. Responde en español, breve y amable.",
		},
		Messages: []assistant.ChatMessage{
			{Role: assistant.ChatRoleUser, Content: "Hola, ¿qué cursos de programación tienen?"},
			{Role: assistant.ChatRoleAssistant, Content: "¡Hola! Tenemos cursos de Python, JavaScript y desarrollo web. ¿Te gustaría saber los horarios?"},
			{Role: assistant.ChatRoleUser, Content: "Sí, ¿qué horarios hay para Python?"},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	}

	fmt.Println("LLM Provider Test")
	fmt.Println("-----------------")

	if cfg.GeminiAPIKey != "" {
		fmt.Println("\n[1] Testing Gemini...")
		geminiClient, err := assistant.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			fmt.Printf("    failed to create Gemini client: %v\n", err)
		} else {
			defer geminiClient.Close()
			runProvider(ctx, "Gemini", geminiClient, req)
		}
	} else {
		fmt.Println("\n[1] Skipping Gemini test (GEMINI_API_KEY not set)")
	}

	if cfg.BedrockModelID != "" {
		fmt.Println("\n[2] Testing Bedrock...")
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("    failed to load AWS config: %v\n", err)
		} else {
			bedrockReq := req
			bedrockReq.Model = cfg.BedrockModelID
			client := assistant.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
			runProvider(ctx, "Bedrock", client, bedrockReq)
		}
	} else {
		fmt.Println("\n[2] Skipping Bedrock test (BEDROCK_MODEL_ID not set)")
	}

	fmt.Println("\nIf both providers responded, the fallback chain is fully covered.")
}

func runProvider(ctx context.Context, name string, client assistant.LLMClient, req assistant.LLMRequest) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    %s error: %v\n", name, err)
		return
	}
	fmt.Printf("    %s response (%v):\n", name, elapsed.Round(time.Millisecond))
	fmt.Printf("    %s\n", resp.Text)
	fmt.Printf("    Tokens: in=%d, out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
}

func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.AWSEndpointOverride != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
	}
	return awsCfg, nil
}
