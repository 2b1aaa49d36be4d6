package store

import "sync"

// Change describes a document mutation pushed to subscribers.
type Change struct {
	Collection string
	ID         string
	Deleted    bool
}

// ChangeHandler reacts to a document change.
type ChangeHandler func(change Change)

// changeBus provides in-process pub/sub for document changes.
type changeBus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]ChangeHandler
}

func newChangeBus() *changeBus {
	return &changeBus{subs: make(map[string]map[int]ChangeHandler)}
}

// collection-wide subscriptions use the reserved "*" id.
func busKey(collection, id string) string {
	return collection + "/" + id
}

// subscribe registers a handler and returns an unsubscribe func.
func (b *changeBus) subscribe(collection, id string, handler ChangeHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := busKey(collection, id)
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]ChangeHandler)
	}
	token := b.next
	b.next++
	b.subs[key][token] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], token)
	}
}

// publish notifies document and collection subscribers synchronously;
// callers decide the concurrency model.
func (b *changeBus) publish(change Change) {
	b.mu.RLock()
	var handlers []ChangeHandler
	for _, h := range b.subs[busKey(change.Collection, change.ID)] {
		handlers = append(handlers, h)
	}
	for _, h := range b.subs[busKey(change.Collection, "*")] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(change)
	}
}
