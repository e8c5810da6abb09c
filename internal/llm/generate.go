package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/nexucore/internal/attach"
	"github.com/comigor/nexucore/internal/history"
	"github.com/comigor/nexucore/internal/logger"
)

// Request is one call to the model.
type Request struct {
	System  string
	History []history.Message
	Prompt  string
	Files   []attach.File
}

// InlineBinary is binary content returned inline by the model.
type InlineBinary struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Reply is the model's answer. Only Text feeds segmentation; Parts carries
// inline images.
type Reply struct {
	Text  string         `json:"text"`
	Parts []InlineBinary `json:"parts,omitempty"`
}

// Generator sends requests to a chat-completion endpoint.
type Generator struct {
	client Client
	model  string
}

// NewGenerator returns a generator using model.
func NewGenerator(client Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate sends req and returns the first choice. An empty reply is not an
// error; callers decide what to show.
func (g *Generator) Generate(ctx context.Context, req Request) (Reply, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == history.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	msgs = append(msgs, userMessage(req.Prompt, req.Files))

	logger.L.Debug("Sending request to LLM", "model", g.model, "messages", len(msgs), "files", len(req.Files))
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: msgs,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		logger.L.Warn("LLM returned no choices", "model", g.model)
		return Reply{}, nil
	}
	text := resp.Choices[0].Message.Content
	return Reply{Text: text, Parts: inlineParts(text)}, nil
}

// userMessage puts attachments before the prompt text. Without attachments
// the plain content form is used.
func userMessage(prompt string, files []attach.File) openai.ChatCompletionMessage {
	if len(files) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt}
	}
	parts := make([]openai.ChatMessagePart, 0, len(files)+1)
	for _, f := range files {
		parts = append(parts, filePart(f))
	}
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: prompt})
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}

func filePart(f attach.File) openai.ChatMessagePart {
	if f.IsText() {
		if data, err := f.Bytes(); err == nil {
			var sb strings.Builder
			fmt.Fprintf(&sb, "Attached file %s (%s):\n", f.Name, f.MimeType)
			sb.Write(data)
			return openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: sb.String()}
		}
	}
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL:    "data:" + f.MimeType + ";base64," + f.Data,
			Detail: openai.ImageURLDetailAuto,
		},
	}
}

var dataURI = regexp.MustCompile(`data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,([A-Za-z0-9+/=]+)`)

// inlineParts collects base64 data URIs embedded in the reply text.
func inlineParts(text string) []InlineBinary {
	var out []InlineBinary
	for _, m := range dataURI.FindAllStringSubmatch(text, -1) {
		out = append(out, InlineBinary{MimeType: m[1], Data: m[2]})
	}
	return out
}
