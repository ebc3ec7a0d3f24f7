// Package vertex implements a minimal client for the Vertex AI predict
// endpoint used in external generation mode.
package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultModel = "text-bison"

type Config struct {
	Project  string
	Location string
	Token    string
	Model    string
	Debug    bool
	Client   *http.Client
}

type Client struct {
	client   *http.Client
	project  string
	location string
	token    string
	model    string
	debug    bool
}

func New(cfg *Config) (*Client, error) {
	if cfg.Project == "" {
		return nil, errors.New("vertex: missing project")
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: 2 * time.Minute,
		}
	}
	return &Client{
		client:   client,
		project:  cfg.Project,
		location: location,
		token:    cfg.Token,
		model:    model,
		debug:    cfg.Debug,
	}, nil
}

func (c *Client) log(format string, args ...interface{}) {
	if c.debug {
		format += "\n"
		log.Printf(format, args...)
	}
}

type predictRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

type instance struct {
	Prompt string `json:"prompt"`
}

type parameters struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type predictResponse struct {
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	Content string `json:"content"`
}

// Predict sends the prompt to the model and returns the first prediction.
// Failures are surfaced to the caller as is, there is no retry policy.
func (c *Client) Predict(ctx context.Context, prompt string, temperature float64) (string, error) {
	req := &predictRequest{
		Instances: []instance{{Prompt: prompt}},
		Parameters: parameters{
			Temperature:     temperature,
			MaxOutputTokens: 1024,
		},
	}
	var resp predictResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("publishers/google/models/%s:predict", c.model), req, &resp); err != nil {
		return "", err
	}
	if len(resp.Predictions) == 0 {
		return "", errors.New("vertex: predict returned no predictions")
	}
	return resp.Predictions[0].Content, nil
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return fmt.Sprintf("%d", e)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("vertex: couldn't marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(body)
	}
	u := fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/%s", c.location, c.project, c.location, path)
	c.log("vertex: do %s %s", method, u)

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("vertex: couldn't create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	if c.token != "" {
		req.Header.Set("authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("vertex: couldn't %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vertex: couldn't read response body: %w", err)
	}
	c.log("vertex: response %s %s %d", method, path, resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMessage := string(respBody)
		if len(errMessage) > 100 {
			errMessage = errMessage[:100] + "..."
		}
		return fmt.Errorf("vertex: %s %s returned (%s): %w", method, u, errMessage, errStatusCode(resp.StatusCode))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("vertex: couldn't unmarshal response body (%T): %w", out, err)
		}
	}
	return nil
}
