package kb

import "sync/atomic"

// Handle is a swappable reference to the current knowledge base.
// Rebuilds publish a fully-built KnowledgeBase in one step, so readers
// never observe a partial index.
type Handle struct {
	current atomic.Pointer[KnowledgeBase]
}

func NewHandle(kb *KnowledgeBase) *Handle {
	h := &Handle{}
	h.current.Store(kb)
	return h
}

func (h *Handle) Load() *KnowledgeBase {
	return h.current.Load()
}

func (h *Handle) Swap(kb *KnowledgeBase) {
	h.current.Store(kb)
}
