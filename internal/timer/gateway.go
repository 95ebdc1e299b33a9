package timer

import "github.com/google/uuid"

// Gateway lets an outer persistence layer push records into and pull them
// out of the store. It never touches the timer state.
type Gateway struct {
	store Store
	newID func() string
}

func NewGateway(store Store) *Gateway {
	return &Gateway{
		store: store,
		newID: uuid.NewString,
	}
}

func (g *Gateway) Create(content string) Task {
	task := Task{
		ID:      g.newID(),
		Content: content,
	}
	g.store.Put(task)
	return task
}

// Sync overwrites the cached record in full.
func (g *Gateway) Sync(task Task) error {
	if err := task.validate(); err != nil {
		return err
	}
	g.store.Put(task)
	return nil
}

func (g *Gateway) List() []Task {
	return g.store.List()
}
