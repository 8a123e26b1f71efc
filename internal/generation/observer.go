package generation

// Observer receives session progress. Calls are made outside the controller
// lock, in the order the events occurred.
type Observer interface {
	StateChanged(sessionID string, state State)
	ChunkReceived(sessionID string, chunk string, output string)
	DocumentChanged(sessionID string, content string)
}

// ObserverFuncs adapts optional functions to Observer.
type ObserverFuncs struct {
	OnState    func(sessionID string, state State)
	OnChunk    func(sessionID string, chunk string, output string)
	OnDocument func(sessionID string, content string)
}

func (o ObserverFuncs) StateChanged(id string, state State) {
	if o.OnState != nil {
		o.OnState(id, state)
	}
}

func (o ObserverFuncs) ChunkReceived(id string, chunk string, output string) {
	if o.OnChunk != nil {
		o.OnChunk(id, chunk, output)
	}
}

func (o ObserverFuncs) DocumentChanged(id string, content string) {
	if o.OnDocument != nil {
		o.OnDocument(id, content)
	}
}
