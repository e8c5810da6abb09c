package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/nexucore/internal/attach"
	"github.com/comigor/nexucore/internal/config"
	"github.com/comigor/nexucore/internal/history"
)

type mockLLM struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (m *mockLLM) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.got = req
	return m.resp, m.err
}

func reply(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: text}}}}
}

func TestGenerateBuildsConversation(t *testing.T) {
	m := &mockLLM{resp: reply("hi there")}
	g := NewGenerator(m, "gemini-2.5-flash")

	out, err := g.Generate(context.Background(), Request{
		System: "be nice",
		History: []history.Message{
			{Role: history.RoleModel, Text: "Hello"},
			{Role: history.RoleUser, Text: "Hey"},
		},
		Prompt: "what now",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", out.Text)
	assert.Empty(t, out.Parts)

	require.Equal(t, "gemini-2.5-flash", m.got.Model)
	require.Len(t, m.got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, m.got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, m.got.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, m.got.Messages[2].Role)
	assert.Equal(t, "what now", m.got.Messages[3].Content)
}

func TestGenerateAttachesFilesBeforePrompt(t *testing.T) {
	m := &mockLLM{resp: reply("ok")}
	g := NewGenerator(m, "model")

	files, err := attach.Encode(context.Background(), []attach.Source{
		attach.FromBytes("pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'}),
		attach.FromBytes("notes.txt", "text/plain", []byte("remember")),
	})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Prompt: "look", Files: files})
	require.NoError(t, err)

	last := m.got.Messages[len(m.got.Messages)-1]
	require.Len(t, last.MultiContent, 3)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, last.MultiContent[0].Type)
	assert.Equal(t, "data:image/png;base64,"+files[0].Data, last.MultiContent[0].ImageURL.URL)
	assert.Equal(t, openai.ChatMessagePartTypeText, last.MultiContent[1].Type)
	assert.Contains(t, last.MultiContent[1].Text, "remember")
	assert.Equal(t, "look", last.MultiContent[2].Text)
}

func TestGenerateEmptyAndError(t *testing.T) {
	g := NewGenerator(&mockLLM{}, "model")
	out, err := g.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Empty(t, out.Text)

	boom := errors.New("quota")
	g = NewGenerator(&mockLLM{err: boom}, "model")
	_, err = g.Generate(context.Background(), Request{Prompt: "x"})
	require.ErrorIs(t, err, boom)
}

func TestGenerateInlineParts(t *testing.T) {
	g := NewGenerator(&mockLLM{resp: reply("here ![img](data:image/png;base64,iVBORw0KGgo=) done")}, "model")
	out, err := g.Generate(context.Background(), Request{Prompt: "draw"})
	require.NoError(t, err)
	require.Len(t, out.Parts, 1)
	assert.Equal(t, InlineBinary{MimeType: "image/png", Data: "iVBORw0KGgo="}, out.Parts[0])
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.LLMConfig{})
	require.ErrorIs(t, err, config.ErrMissingAPIKey)

	c, err := NewClient(config.LLMConfig{APIKey: "k", BaseURL: "http://localhost:1234/v1"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
