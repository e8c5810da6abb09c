package chat

import (
	"errors"
	"sync"

	"github.com/qmuntal/stateless"
)

// ErrBusy is returned when a conversation already has a request in flight.
var ErrBusy = errors.New("a reply is already pending for this conversation")

type turnState stateless.State

var (
	stateIdle          turnState = "Idle"
	stateAwaitingReply turnState = "AwaitingReply"
)

type turnTrigger stateless.Trigger

var (
	triggerSubmit turnTrigger = "Submit"
	triggerSettle turnTrigger = "Settle"
)

// turnGate allows one outstanding request per conversation. A second submit
// while awaiting a reply is rejected, never queued.
type turnGate struct {
	mu  sync.Mutex
	fsm *stateless.StateMachine
}

func newTurnGate() *turnGate {
	fsm := stateless.NewStateMachine(stateIdle)
	fsm.Configure(stateIdle).
		Permit(triggerSubmit, stateAwaitingReply)
	fsm.Configure(stateAwaitingReply).
		Permit(triggerSettle, stateIdle)
	return &turnGate{fsm: fsm}
}

func (g *turnGate) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok, err := g.fsm.CanFire(triggerSubmit)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBusy
	}
	return g.fsm.Fire(triggerSubmit)
}

func (g *turnGate) settle() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ok, _ := g.fsm.CanFire(triggerSettle); ok {
		_ = g.fsm.Fire(triggerSettle)
	}
}

func (g *turnGate) busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fsm.MustState() == stateAwaitingReply
}
