package acl

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotRegistered is returned by Send/Receive for an unknown agent id.
var ErrNotRegistered = errors.New("acl: agent not registered")

// ErrTimeout is returned by Receive when no message arrives before deadline.
var ErrTimeout = errors.New("acl: receive timed out")

// ErrClosed is returned by Receive once the substrate or the agent's
// mailbox has been shut down.
var ErrClosed = errors.New("acl: mailbox closed")

// defaultMailboxCapacity bounds each agent's inbox; Send never blocks past
// this: the substrate is at-most-once with no persistence, so a full
// mailbox drops the incoming message rather than block the sender.
const defaultMailboxCapacity = 256

// mailbox is one agent's private, FIFO, at-most-once inbox.
type mailbox struct {
	ch        chan Message
	closeOnce sync.Once
}

func newMailbox(capacity int) *mailbox {
	return &mailbox{ch: make(chan Message, capacity)}
}

func (m *mailbox) close() {
	m.closeOnce.Do(func() { close(m.ch) })
}

// Substrate is the C2 message substrate: per-agent mailboxes with FIFO,
// at-most-once delivery per sender/receiver pair. It holds no global
// ordering guarantee across different senders.
type Substrate struct {
	mu       sync.RWMutex
	mailboxes map[string]*mailbox
	capacity  int
}

// NewSubstrate creates an empty substrate. capacity bounds each mailbox;
// zero or negative selects defaultMailboxCapacity.
func NewSubstrate(capacity int) *Substrate {
	if capacity <= 0 {
		capacity = defaultMailboxCapacity
	}
	return &Substrate{mailboxes: make(map[string]*mailbox), capacity: capacity}
}

// Register creates agentID's mailbox. Re-registering an already-registered
// id is a no-op and returns no error.
func (s *Substrate) Register(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mailboxes[agentID]; ok {
		return
	}
	s.mailboxes[agentID] = newMailbox(s.capacity)
}

// Deregister closes and removes agentID's mailbox. Any pending Receive on
// it observes ErrClosed.
func (s *Substrate) Deregister(agentID string) {
	s.mu.Lock()
	box, ok := s.mailboxes[agentID]
	if ok {
		delete(s.mailboxes, agentID)
	}
	s.mu.Unlock()
	if ok {
		box.close()
	}
}

// Send delivers msg to msg.Receiver's mailbox, stamping ID/SentAt if unset.
// Returns ErrNotRegistered if the receiver has no mailbox. A full mailbox
// drops the message rather than block (see defaultMailboxCapacity).
func (s *Substrate) Send(msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	s.mu.RLock()
	box, ok := s.mailboxes[msg.Receiver]
	s.mu.RUnlock()
	if !ok {
		return ErrNotRegistered
	}

	select {
	case box.ch <- msg:
		return nil
	default:
		return nil // mailbox full: dropped, at-most-once delivery
	}
}

// Broadcast sends msg (with Receiver overwritten per recipient) to every id
// in recipients, returning the count of recipients that have a registered
// mailbox. A copy dropped because that mailbox is full is still counted.
func (s *Substrate) Broadcast(msg Message, recipients []string) int {
	delivered := 0
	for _, r := range recipients {
		m := msg
		m.Receiver = r
		m.ID = "" // distinct id per recipient
		if s.Send(m) == nil {
			delivered++
		}
	}
	return delivered
}

// Receive blocks until a message arrives for agentID, deadline elapses, or
// the mailbox is closed.
func (s *Substrate) Receive(agentID string, deadline time.Duration) (Message, error) {
	s.mu.RLock()
	box, ok := s.mailboxes[agentID]
	s.mu.RUnlock()
	if !ok {
		return Message{}, ErrNotRegistered
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case msg, open := <-box.ch:
		if !open {
			return Message{}, ErrClosed
		}
		return msg, nil
	case <-timer.C:
		return Message{}, ErrTimeout
	}
}

// DrainAll removes and returns every message currently queued for agentID
// without blocking. Used by the hazard agent to fully drain its inbox once
// per tick.
func (s *Substrate) DrainAll(agentID string) ([]Message, error) {
	s.mu.RLock()
	box, ok := s.mailboxes[agentID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotRegistered
	}

	var out []Message
	for {
		select {
		case msg, open := <-box.ch:
			if !open {
				return out, nil
			}
			out = append(out, msg)
		default:
			return out, nil
		}
	}
}

// Pending reports how many messages are currently queued for agentID.
func (s *Substrate) Pending(agentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	box, ok := s.mailboxes[agentID]
	if !ok {
		return 0
	}
	return len(box.ch)
}

// Shutdown closes every registered mailbox.
func (s *Substrate) Shutdown() {
	s.mu.Lock()
	boxes := make([]*mailbox, 0, len(s.mailboxes))
	for id, box := range s.mailboxes {
		boxes = append(boxes, box)
		delete(s.mailboxes, id)
	}
	s.mu.Unlock()

	for _, box := range boxes {
		box.close()
	}
}
