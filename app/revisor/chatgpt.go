package revisor

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/Semior001/headlines/app/store"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
)

//go:embed data/prompt.tmpl
var promptText string

var promptTmpl = template.Must(template.New("prompt").Parse(promptText))

// maxRequestTokens bounds the prompt, the words of the prompt are
// counted as tokens.
const maxRequestTokens = 4097

// ErrTooManyTokens is returned when the article doesn't fit into the prompt.
var ErrTooManyTokens = errors.New("too many tokens")

//go:generate moq -out mock_openai_client.go . OpenAIClient

// OpenAIClient makes chat completions.
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatGPT turns article digests into bullet points.
type ChatGPT struct {
	log               *slog.Logger
	cl                OpenAIClient
	maxResponseTokens int
}

// NewChatGPT makes a ChatGPT over the OpenAI API, requests are made
// with the given http client.
func NewChatGPT(lg *slog.Logger, cl *http.Client, token string, maxResponseTokens int) *ChatGPT {
	cfg := openai.DefaultConfig(token)
	cfg.HTTPClient = cl

	return &ChatGPT{
		log:               lg,
		cl:                openai.NewClientWithConfig(cfg),
		maxResponseTokens: maxResponseTokens,
	}
}

// BulletPoints asks the model to summarize the article.
// The answer is trimmed, its format is up to the prompt.
func (s *ChatGPT) BulletPoints(ctx context.Context, d store.Digest) (string, error) {
	prompt, err := buildPrompt(d)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := s.cl.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     openai.GPT3Dot5Turbo,
		MaxTokens: s.maxResponseTokens,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
	})
	s.log.DebugCtx(ctx, "chat completion made",
		slog.String("title", d.Title),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any("err", err))
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(d store.Digest) (string, error) {
	sb := &strings.Builder{}
	if err := promptTmpl.Execute(sb, d); err != nil {
		return "", fmt.Errorf("execute prompt template: %w", err)
	}

	if words := len(strings.Fields(sb.String())); words > maxRequestTokens {
		return "", fmt.Errorf("%w: prompt has %d words", ErrTooManyTokens, words)
	}

	return sb.String(), nil
}
