package component

import "github.com/milk9111/worldsmith/physics"

// ContactState holds the event-sourced set of entities currently touching
// this one. It is written only by the physics system from backend enter and
// exit events; readers get a view, never a synchronous backend query.
type ContactState struct {
	Touching *physics.ContactSet
}

var ContactStateComponent = New[ContactState]()
