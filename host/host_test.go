package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cksruf91/a2a-server-client/a2a"
	"github.com/cksruf91/a2a-server-client/core"
	"github.com/cksruf91/a2a-server-client/model"
	"github.com/cksruf91/a2a-server-client/session"
	"github.com/cksruf91/a2a-server-client/tool"
)

func cardServer(t *testing.T, card a2a.AgentCard) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != a2a.WellKnownCardPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(card)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// fakeTool records invocations and returns a fixed answer.
type fakeTool struct {
	name     string
	received []map[string]interface{}
	result   interface{}
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "test specialist" }
func (f *fakeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (f *fakeTool) Call(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	f.received = append(f.received, args)
	return f.result, nil
}

func newTestHost(t *testing.T, llm model.Model, ft *fakeTool, optFns ...func(o *Options)) *HostAgent {
	t.Helper()
	srv := cardServer(t, a2a.AgentCard{
		Name: "Product Agent",
		URL:  "http://product.local",
		Skills: []a2a.AgentSkill{
			{ID: "pricing", Name: "Pricing", Description: "Answers price questions"},
		},
	})
	fns := append([]func(o *Options){func(o *Options) {
		o.ToolFactory = func(card a2a.AgentCard) tool.Tool { return ft }
	}}, optFns...)
	return NewHostAgent("host", llm, []string{srv.URL}, "", fns...)
}

func TestHostAgent_CompleteDirectAnswer(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hello", "Hi there!")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})

	resp, err := h.Complete(context.Background(), ChatRequest{Question: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", resp.Message)
	assert.NotEmpty(t, resp.RoomID, "roomId is minted when absent")
}

func TestHostAgent_CompleteEchoesRoomID(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hello", "Hi there!")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})

	resp, err := h.Complete(context.Background(), ChatRequest{Question: "hello", RoomID: "room-7"})
	require.NoError(t, err)
	assert.Equal(t, "room-7", resp.RoomID)
}

func TestHostAgent_DelegatesToSpecialist(t *testing.T) {
	question := "What does the product cost?"
	llm := model.NewMockModel("mock", "mock")
	llm.AddToolCallResponse(question, core.FunctionCall{
		ID:        "call-1",
		Name:      "send_message_to_product",
		Arguments: `{"message": "What does the product cost?"}`,
	})
	llm.AddResponse(question, "The product costs $10.")

	ft := &fakeTool{name: "send_message_to_product", result: "It costs $10"}
	h := newTestHost(t, llm, ft)

	resp, err := h.Complete(context.Background(), ChatRequest{Question: question})
	require.NoError(t, err)
	assert.Equal(t, "The product costs $10.", resp.Message)

	require.Len(t, ft.received, 1)
	assert.Equal(t, "What does the product cost?", ft.received[0]["message"])
}

func TestHostAgent_UnknownToolFails(t *testing.T) {
	question := "delegate this"
	llm := model.NewMockModel("mock", "mock")
	llm.AddToolCallResponse(question, core.FunctionCall{
		ID:        "call-1",
		Name:      "send_message_to_nobody",
		Arguments: `{}`,
	})
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})

	_, err := h.Complete(context.Background(), ChatRequest{Question: question})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send_message_to_nobody")
}

// capturingModel records the request it receives and answers with fixed text.
type capturingModel struct {
	lastReq model.Request
}

func (m *capturingModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.lastReq = req
	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	respCh <- model.Response{
		Content:      core.NewTextContent("assistant", "ok"),
		FinishReason: "stop",
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (m *capturingModel) Info() model.Info { return model.Info{Name: "capturing", Provider: "mock"} }

func TestHostAgent_SlidingWindowKeepsMostRecentTurns(t *testing.T) {
	llm := &capturingModel{}
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"}, func(o *Options) {
		o.WindowSize = 4
	})

	history := make([]ConversationTurn, 10)
	for i := range history {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history[i] = ConversationTurn{Role: role, Text: string(rune('a' + i))}
	}

	_, err := h.Complete(context.Background(), ChatRequest{Question: "latest?", History: history})
	require.NoError(t, err)

	// 4 prior turns plus the current question, original order preserved.
	contents := llm.lastReq.Contents
	require.Len(t, contents, 5)
	assert.Equal(t, "g", contents[0].JoinedText())
	assert.Equal(t, "h", contents[1].JoinedText())
	assert.Equal(t, "i", contents[2].JoinedText())
	assert.Equal(t, "j", contents[3].JoinedText())
	assert.Equal(t, "latest?", contents[4].JoinedText())
	assert.Equal(t, "user", contents[4].Role)
}

func TestHostAgent_ShortHistoryPassedWhole(t *testing.T) {
	llm := &capturingModel{}
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"}, func(o *Options) {
		o.WindowSize = 10
	})

	history := []ConversationTurn{{Role: "user", Text: "earlier"}}
	_, err := h.Complete(context.Background(), ChatRequest{Question: "now", History: history})
	require.NoError(t, err)
	require.Len(t, llm.lastReq.Contents, 2)
}

func TestHostAgent_SystemPromptCarriesCatalog(t *testing.T) {
	llm := &capturingModel{}
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})

	_, err := h.Complete(context.Background(), ChatRequest{Question: "hi"})
	require.NoError(t, err)
	assert.Contains(t, llm.lastReq.Instructions, "Product Agent")
	assert.Contains(t, llm.lastReq.Instructions, "Answers price questions")
}

func TestHostAgent_CardsFetchedOnceAndCached(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: "counted"})
	}))
	t.Cleanup(srv.Close)

	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hi", "hello")
	h := NewHostAgent("host", llm, []string{srv.URL}, "", func(o *Options) {
		o.ToolFactory = func(card a2a.AgentCard) tool.Tool { return &fakeTool{name: "t"} }
	})

	for i := 0; i < 3; i++ {
		_, err := h.Complete(context.Background(), ChatRequest{Question: "hi"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, hits)
}

func TestHostAgent_DiscoveryFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	llm := model.NewMockModel("mock", "mock")
	h := NewHostAgent("host", llm, []string{srv.URL}, "")

	_, err := h.Complete(context.Background(), ChatRequest{Question: "hi"})
	require.Error(t, err)

	var discErr *a2a.DiscoveryError
	assert.ErrorAs(t, err, &discErr)
}

func TestHostAgent_StreamRejectsBlankQuestion(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})

	fragments, errs := h.Stream(context.Background(), ChatRequest{Question: "   "})
	for range fragments {
		t.Fatal("no fragments expected for a blank question")
	}
	assert.ErrorIs(t, <-errs, ErrEmptyQuery)
}

func TestHostAgent_StreamDeliversFragments(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hello", "Hi!")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"})

	fragments, errs := h.Stream(context.Background(), ChatRequest{Question: "hello"})
	var got string
	var count int
	for f := range fragments {
		got += f
		count++
	}
	require.NoError(t, <-errs)
	assert.Equal(t, "Hi!", got)
	assert.Greater(t, count, 1, "answer arrives in multiple fragments")
}

func TestHostAgent_RecordsTurnsInSession(t *testing.T) {
	store := session.NewInMemoryStore()
	llm := model.NewMockModel("mock", "mock")
	llm.AddResponse("hello", "Hi there!")
	h := newTestHost(t, llm, &fakeTool{name: "send_message_to_product"}, func(o *Options) {
		o.SessionStore = store
	})

	resp, err := h.Complete(context.Background(), ChatRequest{Question: "hello", RoomID: "room-1"})
	require.NoError(t, err)

	key := core.SessionKey{AppName: "host", UserID: DefaultUserID, SessionID: resp.RoomID}
	sess, err := store.Get(key)
	require.NoError(t, err)
	require.Len(t, sess.Turns, 2)
	assert.Equal(t, "user", sess.Turns[0].Role)
	assert.Equal(t, "hello", sess.Turns[0].JoinedText())
	assert.Equal(t, "assistant", sess.Turns[1].Role)
	assert.Equal(t, "Hi there!", sess.Turns[1].JoinedText())
}

func TestPublicCard_UnionsSkills(t *testing.T) {
	cards := []a2a.AgentCard{
		{Name: "a", Skills: []a2a.AgentSkill{{ID: "s1", Name: "One"}, {ID: "s2", Name: "Two"}}},
		{Name: "b", Skills: []a2a.AgentSkill{{ID: "s2", Name: "Two again"}, {ID: "s3", Name: "Three"}}},
	}
	card := PublicCard("host", "delegator", "http://host.local", "1.0.0", cards)

	require.Len(t, card.Skills, 3)
	assert.Equal(t, "s1", card.Skills[0].ID)
	assert.Equal(t, "Two", card.Skills[1].Name, "first occurrence wins")
	assert.Equal(t, "s3", card.Skills[2].ID)
	assert.True(t, card.Capabilities.Streaming)
}
