package component

// Prefab records which spec an entity was spawned from so hot reload can
// find and respawn it.
type Prefab struct {
	Name   string
	Source string
}

var PrefabComponent = New[Prefab]()
