package mocks

import (
	"sort"
	"sync"

	"github.com/mcoot/colorclaim/internal/model"
)

// DeliveredEvent is one event recorded by MockTransport
type DeliveredEvent struct {
	Event   model.EventName
	Payload any
	// Group is set for broadcasts
	Group model.RoomName
	// Recipients are the players the event reached, resolved when it was sent
	Recipients []model.PlayerID
}

// MockTransport records every delivery and tracks group membership in memory
type MockTransport struct {
	mu     sync.Mutex
	events    []DeliveredEvent
	groups    map[model.RoomName]map[model.PlayerID]bool
	disbanded []model.RoomName
}

// NewMockTransport creates an empty MockTransport
func NewMockTransport() *MockTransport {
	return &MockTransport{groups: make(map[model.RoomName]map[model.PlayerID]bool)}
}

// Send records a direct delivery
func (t *MockTransport) Send(to model.PlayerID, event model.EventName, payload any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, DeliveredEvent{
		Event:      event,
		Payload:    payload,
		Recipients: []model.PlayerID{to},
	})
}

// Broadcast records a delivery to the current members of group, minus except
func (t *MockTransport) Broadcast(group model.RoomName, event model.EventName, payload any, except model.PlayerID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var recipients []model.PlayerID
	for id := range t.groups[group] {
		if id != except {
			recipients = append(recipients, id)
		}
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i] < recipients[j] })

	t.events = append(t.events, DeliveredEvent{
		Event:      event,
		Payload:    payload,
		Group:      group,
		Recipients: recipients,
	})
}

// Join adds a player to a group
func (t *MockTransport) Join(id model.PlayerID, group model.RoomName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.groups[group] == nil {
		t.groups[group] = make(map[model.PlayerID]bool)
	}
	t.groups[group][id] = true
}

// Leave removes a player from a group
func (t *MockTransport) Leave(id model.PlayerID, group model.RoomName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups[group], id)
	if len(t.groups[group]) == 0 {
		delete(t.groups, group)
	}
}

// Disband forgets a group and records that it was disbanded
func (t *MockTransport) Disband(group model.RoomName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups, group)
	t.disbanded = append(t.disbanded, group)
}

// Disbanded returns the disbanded groups in order
func (t *MockTransport) Disbanded() []model.RoomName {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.RoomName(nil), t.disbanded...)
}

// Members returns the sorted members of a group
func (t *MockTransport) Members(group model.RoomName) []model.PlayerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []model.PlayerID
	for id := range t.groups[group] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Received returns the payloads of every event with the given name that reached id, in order
func (t *MockTransport) Received(id model.PlayerID, event model.EventName) []any {
	t.mu.Lock()
	defer t.mu.Unlock()
	var payloads []any
	for _, e := range t.events {
		if e.Event != event {
			continue
		}
		for _, r := range e.Recipients {
			if r == id {
				payloads = append(payloads, e.Payload)
				break
			}
		}
	}
	return payloads
}

// Last returns the most recent payload of the named event that reached id
func (t *MockTransport) Last(id model.PlayerID, event model.EventName) (any, bool) {
	payloads := t.Received(id, event)
	if len(payloads) == 0 {
		return nil, false
	}
	return payloads[len(payloads)-1], true
}

// Events returns every recorded delivery
func (t *MockTransport) Events() []DeliveredEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]DeliveredEvent(nil), t.events...)
}

// EventNames returns the names of every event that reached id, in order
func (t *MockTransport) EventNames(id model.PlayerID) []model.EventName {
	t.mu.Lock()
	defer t.mu.Unlock()
	var names []model.EventName
	for _, e := range t.events {
		for _, r := range e.Recipients {
			if r == id {
				names = append(names, e.Event)
				break
			}
		}
	}
	return names
}

// Reset clears recorded deliveries but keeps group membership
func (t *MockTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
}
