package openai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	gopenai "github.com/sashabaranov/go-openai"
)

type Config struct {
	Debug bool
	Token string
	Model string
}

type Client struct {
	client *gopenai.Client
	model  string
	debug  bool
}

func New(cfg *Config) *Client {
	model := cfg.Model
	if model == "" {
		model = gopenai.GPT3Dot5Turbo
	}
	return &Client{
		client: gopenai.NewClient(cfg.Token),
		model:  model,
		debug:  cfg.Debug,
	}
}

func (c *Client) log(format string, args ...interface{}) {
	if c.debug {
		format += "\n"
		log.Printf(format, args...)
	}
}

// ChatCompletion sends a single user message and returns the first choice.
func (c *Client) ChatCompletion(ctx context.Context, msg string) (string, error) {
	return c.chatCompletion(ctx, msg, nil)
}

// ChatCompletionWithTemperature sends a single user message using the
// given sampling temperature.
func (c *Client) ChatCompletionWithTemperature(ctx context.Context, msg string, temperature float64) (string, error) {
	t := float32(temperature)
	return c.chatCompletion(ctx, msg, &t)
}

func (c *Client) newRequest(msg string, temperature *float32) gopenai.ChatCompletionRequest {
	req := gopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []gopenai.ChatCompletionMessage{
			{
				Role:    gopenai.ChatMessageRoleUser,
				Content: msg,
			},
		},
	}
	if temperature != nil {
		t := *temperature
		// The temperature field is tagged omitempty, so a literal 0 would be
		// dropped from the request and the API default would apply instead.
		if t == 0 {
			t = math.SmallestNonzeroFloat32
		}
		req.Temperature = t
	}
	return req
}

func (c *Client) chatCompletion(ctx context.Context, msg string, temperature *float32) (string, error) {
	c.log("openai: chat completion request (%d chars)", len(msg))
	resp, err := c.client.CreateChatCompletion(ctx, c.newRequest(msg, temperature))
	if err != nil {
		return "", fmt.Errorf("openai: couldn't create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: chat completion returned no choices")
	}
	c.log("openai: chat completion response (%d chars)", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}
