// fastview pushes server-side views to web clients: a data model is converted to a
// view-model, broadcast to one or more views, and each view emits element updates
// that are merged, batched and written to the client's websocket.
package fastview

import (
	"html/template"
)

// EleUpdate is an element id and the operations to apply to it.
type EleUpdate struct {
	EleId string
	// Op keys are attribute names, except "textContent" which sets the element's text.
	Ops []Op
}

// Op is a key and value, e.g. an html attribute and its new value.
type Op struct {
	Key   string
	Value string
}

// ViewComponent is a server-side view: Parse adds its initial markup to a page
// template and Updates streams the element updates that keep it current.
type ViewComponent interface {
	Updates() <-chan []EleUpdate
	// Parse defines the component's template within parent and returns its name.
	Parse(parent *template.Template) (string, error)
}
