// Package host implements the orchestrating dispatcher: it discovers
// specialist capabilities, embeds them into a system prompt, exposes each
// specialist as an invocable tool and drives the model over a bounded
// conversation window to answer a caller's question, synchronously or as a
// stream of text fragments.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cksruf91/a2a-server-client/a2a"
	"github.com/cksruf91/a2a-server-client/core"
	"github.com/cksruf91/a2a-server-client/logging"
	"github.com/cksruf91/a2a-server-client/model"
	"github.com/cksruf91/a2a-server-client/session"
	"github.com/cksruf91/a2a-server-client/tool"
)

// ErrEmptyQuery rejects a blank question before any model call is made.
var ErrEmptyQuery = errors.New("query cannot be empty")

// DefaultUserID keys continuity state when the front door supplies no user
// identity of its own.
const DefaultUserID = "default_user"

// ConversationTurn is one prior exchange in the caller's history.
// Role alternation is not enforced; the model consumes the turns as-is.
type ConversationTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// ChatRequest is the inbound caller request.
type ChatRequest struct {
	Question string             `json:"question"`
	RoomID   string             `json:"roomId"`
	History  []ConversationTurn `json:"history"`
}

// ChatResponse is the dispatcher's answer bound to the conversation room.
type ChatResponse struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

// Options configure a HostAgent.
type Options struct {
	// Aggregator fetches specialist capability cards. Defaults to
	// a2a.NewCardAggregator().
	Aggregator *a2a.CardAggregator
	// Continuity resolves conversation context ids to sessions. Defaults to
	// an in-memory manager scoped to the host name.
	Continuity *session.ContinuityManager
	// SessionStore records conversation turns. Defaults to the continuity
	// manager's backing store when constructed here, else in-memory.
	SessionStore core.SessionStore
	// WindowSize bounds how many prior turns reach the model. The most
	// recent turns are kept.
	WindowSize int
	// MaxToolRounds bounds model/tool round trips per question.
	MaxToolRounds int
	// ToolFactory builds the tool exposed for a discovered card. Defaults to
	// tool.NewAgentTool. Tests substitute fakes here.
	ToolFactory func(card a2a.AgentCard) tool.Tool
	// Logger receives dispatch diagnostics.
	Logger logging.Logger
	// Metrics, when set, records model and tool call measurements.
	Metrics *logging.HostLogger
}

// HostAgent is the top-level entry point of the system. It owns the tool
// catalog (capability cards fetched once and treated as immutable) and the
// per-turn conversation assembly; task state belongs to the bridge and
// session creation to the continuity manager.
type HostAgent struct {
	name           string
	llm            model.Model
	endpoints      []string
	promptTemplate string

	aggregator    *a2a.CardAggregator
	continuity    *session.ContinuityManager
	sessions      core.SessionStore
	windowSize    int
	maxToolRounds int
	toolFactory   func(card a2a.AgentCard) tool.Tool
	logger        logging.Logger
	metrics       *logging.HostLogger

	mu    sync.Mutex
	cards []a2a.AgentCard
	tools map[string]tool.Tool
	defs  []model.ToolDefinition
}

// NewHostAgent constructs the dispatcher. The prompt template may reference
// {{.AgentCards}}, replaced with the serialized capability catalog.
func NewHostAgent(
	name string,
	llm model.Model,
	endpoints []string,
	promptTemplate string,
	optFns ...func(o *Options),
) *HostAgent {
	opts := Options{
		Aggregator:    a2a.NewCardAggregator(),
		WindowSize:    10,
		MaxToolRounds: 8,
		ToolFactory:   func(card a2a.AgentCard) tool.Tool { return tool.NewAgentTool(card) },
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Continuity == nil {
		store := opts.SessionStore
		if store == nil {
			store = session.NewInMemoryStore()
		}
		opts.SessionStore = store
		opts.Continuity = session.NewContinuityManager(name, func(o *session.ContinuityManagerOptions) {
			o.Store = store
			o.Logger = opts.Logger
		})
	} else if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	return &HostAgent{
		name:           name,
		llm:            llm,
		endpoints:      endpoints,
		promptTemplate: promptTemplate,
		aggregator:     opts.Aggregator,
		continuity:     opts.Continuity,
		sessions:       opts.SessionStore,
		windowSize:     opts.WindowSize,
		maxToolRounds:  opts.MaxToolRounds,
		toolFactory:    opts.ToolFactory,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
	}
}

// Name returns the host agent identifier.
func (h *HostAgent) Name() string { return h.name }

// Cards returns the capability catalog, fetching it on first use and caching
// it for the lifetime of the dispatcher. A failed aggregation is not cached
// so a later call can retry discovery.
func (h *HostAgent) Cards(ctx context.Context) ([]a2a.AgentCard, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cardsLocked(ctx)
}

func (h *HostAgent) cardsLocked(ctx context.Context) ([]a2a.AgentCard, error) {
	if h.cards != nil {
		return h.cards, nil
	}
	cards, err := h.aggregator.Fetch(ctx, h.endpoints)
	if err != nil {
		return nil, err
	}
	h.cards = cards
	h.tools = make(map[string]tool.Tool, len(cards))
	h.defs = make([]model.ToolDefinition, 0, len(cards))
	for _, card := range cards {
		t := h.toolFactory(card)
		h.tools[t.Name()] = t
		h.defs = append(h.defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	h.logger.Info("capability catalog assembled", "specialists", len(cards))
	return h.cards, nil
}

// catalog returns cards, tool lookup and tool definitions under one lock.
func (h *HostAgent) catalog(ctx context.Context) ([]a2a.AgentCard, map[string]tool.Tool, []model.ToolDefinition, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cards, err := h.cardsLocked(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return cards, h.tools, h.defs, nil
}

// Complete answers the caller's question synchronously, returning the first
// text content block of the model's final response.
func (h *HostAgent) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	roomID := req.RoomID
	if roomID == "" {
		roomID = uuid.NewString()
	}

	sessionID, err := h.continuity.Resolve(DefaultUserID, roomID)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	cards, tools, defs, err := h.catalog(ctx)
	if err != nil {
		return ChatResponse{}, err
	}

	instructions, err := h.systemPrompt(cards)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to render system prompt: %w", err)
	}

	contents := h.buildConversation(req.History, req.Question)
	answer, err := h.converse(ctx, instructions, contents, tools, defs)
	if err != nil {
		return ChatResponse{}, err
	}

	h.recordTurns(sessionID, req.Question, answer)
	return ChatResponse{Message: answer, RoomID: roomID}, nil
}

// Stream answers the caller's question as incremental text fragments. The
// channel closes when the underlying model finishes; a blank question is
// rejected before any model call.
func (h *HostAgent) Stream(ctx context.Context, req ChatRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errCh := make(chan error, 1)

	if strings.TrimSpace(req.Question) == "" {
		close(out)
		errCh <- ErrEmptyQuery
		close(errCh)
		return out, errCh
	}

	go func() {
		defer close(out)
		defer close(errCh)

		roomID := req.RoomID
		if roomID == "" {
			roomID = uuid.NewString()
		}
		sessionID, err := h.continuity.Resolve(DefaultUserID, roomID)
		if err != nil {
			errCh <- fmt.Errorf("failed to resolve session: %w", err)
			return
		}

		cards, tools, defs, err := h.catalog(ctx)
		if err != nil {
			errCh <- err
			return
		}
		instructions, err := h.systemPrompt(cards)
		if err != nil {
			errCh <- fmt.Errorf("failed to render system prompt: %w", err)
			return
		}

		contents := h.buildConversation(req.History, req.Question)
		answer, err := h.converseStreaming(ctx, instructions, contents, tools, defs, out)
		if err != nil {
			errCh <- err
			return
		}
		h.recordTurns(sessionID, req.Question, answer)
	}()

	return out, errCh
}

// buildConversation assembles the bounded conversation: the most recent
// WindowSize prior turns in original order, followed by the current question.
func (h *HostAgent) buildConversation(history []ConversationTurn, question string) []core.Content {
	turns := history
	if h.windowSize > 0 && len(turns) > h.windowSize {
		turns = turns[len(turns)-h.windowSize:]
	}
	contents := make([]core.Content, 0, len(turns)+1)
	for _, turn := range turns {
		contents = append(contents, core.NewTextContent(turn.Role, turn.Text))
	}
	contents = append(contents, core.NewTextContent("user", question))
	return contents
}

// systemPrompt renders the prompt template with the serialized catalog.
func (h *HostAgent) systemPrompt(cards []a2a.AgentCard) (string, error) {
	serialized := make([]string, 0, len(cards))
	for _, card := range cards {
		b, err := json.Marshal(card)
		if err != nil {
			return "", err
		}
		serialized = append(serialized, string(b))
	}
	return renderPrompt(h.promptTemplate, strings.Join(serialized, "\n"))
}

// converse drives model/tool rounds until the model answers with text.
func (h *HostAgent) converse(
	ctx context.Context,
	instructions string,
	contents []core.Content,
	tools map[string]tool.Tool,
	defs []model.ToolDefinition,
) (string, error) {
	for round := 0; round < h.maxToolRounds; round++ {
		resp, err := h.generate(ctx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        defs,
		}, nil)
		if err != nil {
			return "", err
		}

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			return firstText(resp.Content), nil
		}
		contents = append(contents, resp.Content)
		toolContent, err := h.executeCalls(ctx, calls, tools)
		if err != nil {
			return "", err
		}
		contents = append(contents, toolContent)
	}
	return "", fmt.Errorf("tool call limit exceeded after %d rounds", h.maxToolRounds)
}

// converseStreaming drives the same loop with streaming enabled, forwarding
// partial text deltas of the final (text) round to out.
func (h *HostAgent) converseStreaming(
	ctx context.Context,
	instructions string,
	contents []core.Content,
	tools map[string]tool.Tool,
	defs []model.ToolDefinition,
	out chan<- string,
) (string, error) {
	for round := 0; round < h.maxToolRounds; round++ {
		resp, err := h.generate(ctx, model.Request{
			Instructions: instructions,
			Contents:     contents,
			Tools:        defs,
			Stream:       true,
		}, out)
		if err != nil {
			return "", err
		}

		calls := resp.Content.FunctionCalls()
		if len(calls) == 0 {
			return firstText(resp.Content), nil
		}
		contents = append(contents, resp.Content)
		toolContent, err := h.executeCalls(ctx, calls, tools)
		if err != nil {
			return "", err
		}
		contents = append(contents, toolContent)
	}
	return "", fmt.Errorf("tool call limit exceeded after %d rounds", h.maxToolRounds)
}

// generate runs one model call and returns the final (non-partial) response.
// When out is non-nil, partial text deltas are forwarded to it as fragments;
// tool-call rounds produce no fragments.
func (h *HostAgent) generate(ctx context.Context, req model.Request, out chan<- string) (model.Response, error) {
	start := time.Now()
	respCh, errCh := h.llm.Generate(ctx, req)

	var final model.Response
	var sawFinal bool
	for resp := range respCh {
		if resp.Partial {
			if out != nil {
				if text := resp.Content.JoinedText(); text != "" {
					select {
					case <-ctx.Done():
						return model.Response{}, ctx.Err()
					case out <- text:
					}
				}
			}
			continue
		}
		final = resp
		sawFinal = true
	}
	if err := <-errCh; err != nil {
		h.observeLLM(final, time.Since(start), err)
		return model.Response{}, fmt.Errorf("model invocation failed: %w", err)
	}
	if !sawFinal {
		return model.Response{}, fmt.Errorf("model produced no final response")
	}
	h.observeLLM(final, time.Since(start), nil)
	return final, nil
}

// executeCalls runs every requested tool call in order and collects the
// responses into a single tool-role content.
func (h *HostAgent) executeCalls(
	ctx context.Context,
	calls []core.FunctionCall,
	tools map[string]tool.Tool,
) (core.Content, error) {
	parts := make([]core.Part, 0, len(calls))
	for _, call := range calls {
		t, ok := tools[call.Name]
		if !ok {
			return core.Content{}, fmt.Errorf("model requested unknown tool %q", call.Name)
		}

		var args map[string]any
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return core.Content{}, fmt.Errorf("invalid arguments for tool %q: %w", call.Name, err)
			}
		}

		start := time.Now()
		result, err := t.Call(ctx, args)
		if h.metrics != nil {
			h.metrics.LogToolCall(call.Name, time.Since(start), err == nil, err)
		}
		if err != nil {
			return core.Content{}, fmt.Errorf("tool %q failed: %w", call.Name, err)
		}
		h.logger.Debug("tool executed", "tool", call.Name)

		parts = append(parts, core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: result,
		}})
	}
	return core.Content{Role: "tool", Parts: parts}, nil
}

func (h *HostAgent) observeLLM(resp model.Response, dur time.Duration, err error) {
	if h.metrics == nil {
		return
	}
	tokens := 0
	if resp.Usage != nil {
		tokens = resp.Usage.TotalTokens
	}
	h.metrics.LogLLMCall(h.llm.Info().Name, tokens, dur, err == nil, err)
}

// recordTurns appends the question and answer to the session history.
func (h *HostAgent) recordTurns(sessionID, question, answer string) {
	key := core.SessionKey{AppName: h.name, UserID: DefaultUserID, SessionID: sessionID}
	if err := h.sessions.AddTurn(key, core.NewTextContent("user", question)); err != nil {
		h.logger.Warn("failed to record user turn", "session_id", sessionID, "error", err)
	}
	if err := h.sessions.AddTurn(key, core.NewTextContent("assistant", answer)); err != nil {
		h.logger.Warn("failed to record assistant turn", "session_id", sessionID, "error", err)
	}
}

// firstText returns the first text content block of a response.
func firstText(c core.Content) string {
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			return tp.Text
		}
	}
	return ""
}
