// Package chat owns the conversation list and runs turns against the model:
// it assembles the prompt, guards against concurrent submissions and applies
// fallbacks when the endpoint fails.
package chat

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/nexucore/internal/attach"
	"github.com/comigor/nexucore/internal/history"
	"github.com/comigor/nexucore/internal/llm"
	"github.com/comigor/nexucore/internal/logger"
)

var (
	// ErrConversationNotFound is returned for an unknown conversation id.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrEmptyMessage is returned when a turn has neither text nor files.
	ErrEmptyMessage = errors.New("message is empty")
)

// DefaultTitle names a conversation before its first user message.
const DefaultTitle = "New conversation"

const titleLength = 40

// Store persists the conversation list.
type Store interface {
	Load(ctx context.Context) ([]history.Conversation, error)
	Save(ctx context.Context, convs []history.Conversation) error
}

// Generator produces a model reply.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (llm.Reply, error)
}

// Event types published to the Notifier.
const (
	EventConversationCreated = "conversation.created"
	EventConversationDeleted = "conversation.deleted"
	EventTurnStarted         = "turn.started"
	EventTurnCompleted       = "turn.completed"
	EventTurnDiscarded       = "turn.discarded"
)

// Event reports a change to the conversation list.
type Event struct {
	Type           string           `json:"type"`
	ConversationID string           `json:"conversationId"`
	Message        *history.Message `json:"message,omitempty"`
}

// Notifier receives events. Notify must not block.
type Notifier interface {
	Notify(Event)
}

// Option configures a Manager.
type Option func(*Manager)

// WithSystemPrompt replaces SystemInstruction for every turn.
func WithSystemPrompt(p string) Option { return func(m *Manager) { m.system = p } }

// WithNotifier publishes events to n.
func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notifier = n } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// Manager holds the conversations in memory and writes the whole list back
// to the store after every mutation.
type Manager struct {
	store    Store
	gen      Generator
	system   string
	notifier Notifier
	now      func() time.Time

	mu     sync.Mutex
	convs  []history.Conversation
	active string
	gates  map[string]*turnGate
}

// NewManager returns an empty manager; call Load to read the store.
func NewManager(store Store, gen Generator, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		gen:   gen,
		now:   time.Now,
		gates: map[string]*turnGate{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load replaces the in-memory list with the stored one. The most recent
// conversation becomes active.
func (m *Manager) Load(ctx context.Context) error {
	convs, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs = convs
	m.gates = map[string]*turnGate{}
	m.active = ""
	if len(convs) > 0 {
		m.active = m.sortedLocked()[0].ID
	}
	logger.L.Info("Loaded conversations", "count", len(convs))
	return nil
}

func (m *Manager) saveLocked(ctx context.Context) {
	if err := m.store.Save(ctx, m.convs); err != nil {
		logger.L.Error("Failed to persist conversations", "error", err)
	}
}

func (m *Manager) notify(e Event) {
	if m.notifier != nil {
		m.notifier.Notify(e)
	}
}

func (m *Manager) indexLocked(id string) int {
	return slices.IndexFunc(m.convs, func(c history.Conversation) bool { return c.ID == id })
}

func (m *Manager) sortedLocked() []history.Conversation {
	out := make([]history.Conversation, len(m.convs))
	for i, c := range m.convs {
		out[i] = c.Clone()
	}
	slices.SortStableFunc(out, func(a, b history.Conversation) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// List returns copies of all conversations, newest first.
func (m *Manager) List() []history.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked()
}

// Get returns a copy of one conversation.
func (m *Manager) Get(id string) (history.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return history.Conversation{}, ErrConversationNotFound
	}
	return m.convs[i].Clone(), nil
}

// Busy reports whether conversation id is waiting for a reply.
func (m *Manager) Busy(id string) bool {
	m.mu.Lock()
	g, ok := m.gates[id]
	m.mu.Unlock()
	return ok && g.busy()
}

// Active returns the id of the active conversation, or "".
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Create starts a conversation with the greeting and makes it active.
func (m *Manager) Create(ctx context.Context, opts Options) history.Conversation {
	c := history.Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  []history.Message{{Role: history.RoleModel, Text: Greeting}},
		Mode:      string(orMode(opts.Mode)),
		Persona:   string(orPersona(opts.Persona)),
		Timestamp: m.now(),
	}
	m.mu.Lock()
	m.convs = append(m.convs, c)
	m.active = c.ID
	m.saveLocked(ctx)
	m.mu.Unlock()

	logger.L.Info("Created conversation", "conversation", c.ID)
	m.notify(Event{Type: EventConversationCreated, ConversationID: c.ID})
	return c.Clone()
}

// Delete removes a conversation. A reply still in flight for it is discarded
// on arrival.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return ErrConversationNotFound
	}
	m.convs = slices.Delete(m.convs, i, i+1)
	delete(m.gates, id)
	if m.active == id {
		m.active = ""
	}
	m.saveLocked(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventConversationDeleted, ConversationID: id})
	return nil
}

// Activate makes id the active conversation.
func (m *Manager) Activate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexLocked(id) < 0 {
		return ErrConversationNotFound
	}
	m.active = id
	return nil
}

// TurnInput is one user submission.
type TurnInput struct {
	Message string
	Files   []attach.File
	Options Options
}

// TurnResult is the outcome of Submit. Discarded is set when the reply
// arrived after its conversation was deleted or another one was activated;
// Reply is then not stored. Failed is set when the endpoint call failed and
// Reply holds the fallback text.
type TurnResult struct {
	ConversationID string
	User           history.Message
	Reply          history.Message
	Parts          []llm.InlineBinary
	Discarded      bool
	Failed         bool
}

// Submit appends the user message to conversation id, asks the model and
// appends the reply. The conversation id is captured here; the reply is only
// stored if that conversation is still the active one when it arrives. The
// user message is kept whatever the outcome. The model call is detached
// from ctx cancellation: a started request always runs to completion.
func (m *Manager) Submit(ctx context.Context, id string, in TurnInput) (TurnResult, error) {
	if strings.TrimSpace(in.Message) == "" && len(in.Files) == 0 {
		return TurnResult{}, ErrEmptyMessage
	}
	ctx = context.WithoutCancel(ctx)
	opts := in.Options
	opts.Mode = orMode(opts.Mode)
	opts.Persona = orPersona(opts.Persona)

	user := history.Message{Role: history.RoleUser, Text: in.Message}
	for _, f := range in.Files {
		user.Files = append(user.Files, history.FileRef{Name: f.Name, MimeType: f.MimeType})
	}

	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return TurnResult{}, ErrConversationNotFound
	}
	gate, ok := m.gates[id]
	if !ok {
		gate = newTurnGate()
		m.gates[id] = gate
	}
	if err := gate.begin(); err != nil {
		m.mu.Unlock()
		return TurnResult{}, err
	}

	conv := &m.convs[i]
	prior := slices.Clone(conv.Messages)
	if conv.Title == DefaultTitle {
		conv.Title = titleFor(in)
	}
	conv.Messages = append(conv.Messages, user)
	conv.Mode, conv.Persona = string(opts.Mode), string(opts.Persona)
	conv.Timestamp = m.now()
	m.active = id
	m.saveLocked(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventTurnStarted, ConversationID: id, Message: &user})

	req := llm.Request{
		System:  SystemPrompt(opts, m.system),
		History: prior,
		Prompt:  BuildPrompt(in.Message, opts),
		Files:   in.Files,
	}
	res := TurnResult{ConversationID: id, User: user}
	reply, err := m.gen.Generate(ctx, req)
	switch {
	case err != nil:
		logger.L.Error("LLM request failed", "conversation", id, "error", err)
		res.Failed = true
		res.Reply = history.Message{Role: history.RoleModel, Text: EndpointErrorText}
	case reply.Text == "":
		res.Reply = history.Message{Role: history.RoleModel, Text: EmptyReplyText}
	default:
		res.Reply = history.Message{Role: history.RoleModel, Text: reply.Text}
		res.Parts = reply.Parts
	}

	m.mu.Lock()
	i = m.indexLocked(id)
	gate.settle()
	if i < 0 || m.active != id {
		m.mu.Unlock()
		logger.L.Info("Discarding late reply", "conversation", id, "deleted", i < 0)
		res.Discarded = true
		m.notify(Event{Type: EventTurnDiscarded, ConversationID: id})
		return res, nil
	}
	m.convs[i].Messages = append(m.convs[i].Messages, res.Reply)
	m.convs[i].Timestamp = m.now()
	m.saveLocked(ctx)
	m.mu.Unlock()

	m.notify(Event{Type: EventTurnCompleted, ConversationID: id, Message: &res.Reply})
	return res, nil
}

// titleFor derives a title from the first user message, falling back to the
// first attachment name.
func titleFor(in TurnInput) string {
	t := strings.Join(strings.Fields(in.Message), " ")
	if t == "" && len(in.Files) > 0 {
		t = in.Files[0].Name
	}
	if t == "" {
		return DefaultTitle
	}
	if r := []rune(t); len(r) > titleLength {
		t = strings.TrimSpace(string(r[:titleLength]))
	}
	return t
}

func orMode(m Mode) Mode {
	if m == "" {
		return ModeGeneral
	}
	return m
}

func orPersona(p Persona) Persona {
	if p == "" {
		return PersonaUser
	}
	return p
}
