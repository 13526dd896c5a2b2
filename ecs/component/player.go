package component

// Player marks an entity controlled by a connected session.
type Player struct {
	SessionID string
	Name      string
}

var PlayerComponent = New[Player]()
