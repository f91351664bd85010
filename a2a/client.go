package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ClientOptions configure a Client.
type ClientOptions struct {
	// HTTPClient performs the requests. Defaults to a client with a
	// 60 second timeout; specialist turns can be slow.
	HTTPClient *http.Client
}

// Client sends messages to a single specialist endpoint using the protocol's
// JSON-RPC "message/send" method. It implements only the request/response
// slice of the contract the host needs to relay a caller's question.
type Client struct {
	url    string
	client *http.Client
}

// NewClient constructs a Client bound to the specialist base URL.
func NewClient(url string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{url: url, client: opts.HTTPClient}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Message Message `json:"message"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// SendMessageResult is the union a specialist may return for message/send:
// a direct reply message or a task carrying status and artifacts.
type SendMessageResult struct {
	Message *Message
	Task    *Task
}

// Text extracts the most useful text rendering of the result: the reply
// message's text, or for tasks the latest artifact (falling back to the last
// status message).
func (r SendMessageResult) Text() string {
	if r.Message != nil {
		return r.Message.JoinedText()
	}
	if r.Task != nil {
		for i := len(r.Task.Artifacts) - 1; i >= 0; i-- {
			for _, p := range r.Task.Artifacts[i].Parts {
				if p.Kind == "text" && p.Text != "" {
					return p.Text
				}
				if p.Kind == "data" && p.Data != nil {
					if b, err := json.Marshal(p.Data); err == nil {
						return string(b)
					}
				}
			}
		}
		if r.Task.Status.Message != nil {
			return r.Task.Status.Message.JoinedText()
		}
	}
	return ""
}

// SendMessage posts the message to the specialist and decodes its reply.
func (c *Client) SendMessage(ctx context.Context, msg Message) (SendMessageResult, error) {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "message/send",
		Params:  rpcParams{Message: msg},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return SendMessageResult{}, fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return SendMessageResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return SendMessageResult{}, fmt.Errorf("message send failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return SendMessageResult{}, fmt.Errorf("message send returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return SendMessageResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return SendMessageResult{}, fmt.Errorf("specialist error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return decodeResult(rpcResp.Result)
}

// SendText is a convenience wrapper relaying plain text and returning the
// reply's text rendering.
func (c *Client) SendText(ctx context.Context, text string) (string, error) {
	result, err := c.SendMessage(ctx, NewUserMessage(text))
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// decodeResult discriminates the result union on its "kind" field.
func decodeResult(raw json.RawMessage) (SendMessageResult, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return SendMessageResult{}, fmt.Errorf("failed to probe result kind: %w", err)
	}

	switch probe.Kind {
	case "task":
		var task Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return SendMessageResult{}, fmt.Errorf("failed to decode task result: %w", err)
		}
		return SendMessageResult{Task: &task}, nil
	case "message":
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return SendMessageResult{}, fmt.Errorf("failed to decode message result: %w", err)
		}
		return SendMessageResult{Message: &msg}, nil
	default:
		return SendMessageResult{}, fmt.Errorf("unexpected result kind %q", probe.Kind)
	}
}
