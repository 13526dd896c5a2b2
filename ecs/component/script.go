package component

// Script attaches a tengo behavior script to an entity. The script system
// compiles the file once and calls its update function every fixed tick.
type Script struct {
	Path string
}

var ScriptComponent = New[Script]()
