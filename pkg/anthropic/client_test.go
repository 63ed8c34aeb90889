package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

func TestCreateMessage_MockClient(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	req := MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1024,
		Messages: []Message{
			{Role: "user", Content: "Hello"},
		},
	}

	expected := &MessageResponse{
		ID:         "msg_123",
		Model:      "claude-haiku-4-5-20251001",
		Content:    []ContentBlock{{Type: "text", Text: "Hi there!"}},
		StopReason: "end_turn",
		Usage: TokenUsage{
			InputTokens:  10,
			OutputTokens: 5,
		},
	}

	mc.On("CreateMessage", ctx, req).Return(expected, nil)

	resp, err := mc.CreateMessage(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "msg_123", resp.ID)
	assert.Equal(t, "Hi there!", resp.Content[0].Text)
	mc.AssertExpectations(t)
}

func TestSDKTypeConversion_toSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
		{Role: "", Content: "defaults to user"},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
	assert.Equal(t, "user", string(msgs[2].Role))
}

func TestSDKTypeConversion_toSDKSystemBlocks(t *testing.T) {
	blocks := toSDKSystemBlocks([]SystemBlock{
		{Text: "plain"},
		{Text: "cached", CacheControl: &CacheControl{TTL: "1h"}},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "plain", blocks[0].Text)
	assert.Equal(t, "1h", string(blocks[1].CacheControl.TTL))
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("system text")
	require.Len(t, blocks, 1)
	assert.Equal(t, "system text", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestEstimateCost_Haiku(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, u.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
}

func TestEstimateCost_WithCache(t *testing.T) {
	u := TokenUsage{
		InputTokens:              100_000,
		OutputTokens:             50_000,
		CacheCreationInputTokens: 200_000,
		CacheReadInputTokens:     1_000_000,
	}
	// 0.08 + 0.20 + 0.20 + 0.08
	assert.InDelta(t, 0.56, u.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000}
	assert.Zero(t, u.EstimateCost("some-future-model"))
}

func TestLogCost_DoesNotPanic(t *testing.T) {
	u := TokenUsage{InputTokens: 100, OutputTokens: 50}
	assert.NotPanics(t, func() {
		u.LogCost("claude-haiku-4-5-20251001", "extract")
	})
}

func TestNewClient_ReturnsNonNil(t *testing.T) {
	c := NewClient("test-key")
	require.NotNil(t, c)
}
