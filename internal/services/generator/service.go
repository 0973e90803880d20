package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/bingoparty/bingoparty-go/internal/model"
)

// OptionCount is the number of options a generation run must yield
const OptionCount = model.PoolMinimum

// Config holds settings for the external generation service. The API is
// OpenAI-compatible chat completions; the default target is a local
// Ollama instance.
type Config struct {
	APIURL  string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// DefaultConfig returns default generator configuration
func DefaultConfig() Config {
	return Config{
		APIURL:  "http://localhost:11434/v1/chat/completions",
		Model:   "llama3.2",
		Timeout: 30 * time.Second,
	}
}

// Service calls an external text-generation API to produce themed bingo
// options. Transport failures and timeouts surface as
// model.ErrGeneratorUnavailable; short or malformed output is recovered
// and padded instead.
type Service struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new generator Service
func New(cfg Config, logger *slog.Logger) *Service {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(slog.String("component", "generator")),
	}
}

const systemPrompt = `You are a creative bingo option generator. Generate exactly 24 unique, fun, and relevant bingo options based on the theme provided. Each option should be:
- Concise (under 50 characters)
- Specific and observable (something that can clearly happen or be said)
- Appropriate for a family game night
- Varied in likelihood (some common, some rare)

Return ONLY a JSON array of 24 strings, nothing else. Example format:
["Option 1", "Option 2", ...]`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateOptions produces 24 options for the given theme
func (s *Service) GenerateOptions(ctx context.Context, theme string) ([]string, error) {
	reqBody := chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Generate 24 bingo options for a game themed: %q", theme)},
		},
		Temperature: 0.8,
		MaxTokens:   1000,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	s.logger.Info("generating options",
		slog.String("theme", theme),
		slog.String("model", s.cfg.Model))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("generation request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", model.ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("generation request rejected", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", model.ErrGeneratorUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGeneratorUnavailable, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGeneratorUnavailable, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty response", model.ErrGeneratorUnavailable)
	}

	options := parseOptions(parsed.Choices[0].Message.Content)

	if len(options) < OptionCount {
		s.logger.Warn("short generation output, padding with placeholders",
			slog.Int("count", len(options)))
		for len(options) < OptionCount {
			options = append(options, fmt.Sprintf("Option %d", len(options)+1))
		}
	}

	return options[:OptionCount], nil
}

var (
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*\]`)
	listPrefixRe = regexp.MustCompile(`^[\d.\-*\s]+`)
	letterRe     = regexp.MustCompile(`[a-zA-Z]`)
)

// parseOptions extracts option strings from model output: direct JSON
// array first, then a bracketed-array substring, then line-based recovery.
func parseOptions(content string) []string {
	if options, ok := parseJSONArray(content); ok {
		return options
	}

	if match := jsonArrayRe.FindString(content); match != "" {
		if options, ok := parseJSONArray(match); ok {
			return options
		}
	}

	// Fallback: split by lines and strip list decoration
	var options []string
	for _, line := range strings.Split(content, "\n") {
		line = listPrefixRe.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		line = strings.TrimRight(line, ",")
		line = strings.TrimSpace(line)
		if line != "" && len(line) < 100 && letterRe.MatchString(line) {
			options = append(options, line)
		}
		if len(options) == OptionCount {
			break
		}
	}
	return options
}

func parseJSONArray(content string) ([]string, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, false
	}
	options := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			options = append(options, s)
		}
	}
	return options, true
}
