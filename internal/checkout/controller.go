package checkout

import "sync"

// Controller keys live flows by user.  Opening a flow while one exists
// replaces it; closing discards every choice made so far.
type Controller struct {
	mu    sync.RWMutex
	flows map[uint64]*Flow
}

func NewController() *Controller {
	return &Controller{flows: make(map[uint64]*Flow)}
}

// Open starts a fresh flow for the user at the review step.
func (c *Controller) Open(userID uint64, o Order) *Flow {
	f := newFlow(o)
	c.mu.Lock()
	c.flows[userID] = f
	c.mu.Unlock()
	return f
}

// Flow returns the user's live flow.
func (c *Controller) Flow(userID uint64) (*Flow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.flows[userID]
	if !ok {
		return nil, ErrNoFlow
	}
	return f, nil
}

// Close abandons the flow.  All selections are discarded; the next
// checkout starts from scratch.
func (c *Controller) Close(userID uint64) {
	c.mu.Lock()
	delete(c.flows, userID)
	c.mu.Unlock()
}
