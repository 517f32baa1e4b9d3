package capture

// ConnectionID identifies one connected click handler.
type ConnectionID int

// ClickSource delivers pointer events to connected handlers.
type ClickSource interface {
	Connect(handler func(PointerEvent)) ConnectionID
	Disconnect(id ConnectionID)
}

// Dispatcher is a ClickSource owned by an event loop. It is not safe for
// concurrent use; the loop that calls Dispatch also connects and disconnects.
type Dispatcher struct {
	handlers map[ConnectionID]func(PointerEvent)
	order    []ConnectionID
	next     ConnectionID
}

// Connect registers handler and returns its id.
func (d *Dispatcher) Connect(handler func(PointerEvent)) ConnectionID {
	if d.handlers == nil {
		d.handlers = make(map[ConnectionID]func(PointerEvent))
	}
	d.next++
	d.handlers[d.next] = handler
	d.order = append(d.order, d.next)
	return d.next
}

// Disconnect removes a handler. Unknown ids are ignored.
func (d *Dispatcher) Disconnect(id ConnectionID) {
	if _, ok := d.handlers[id]; !ok {
		return
	}
	delete(d.handlers, id)
	for i, o := range d.order {
		if o == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Connected returns the number of connected handlers.
func (d *Dispatcher) Connected() int {
	return len(d.handlers)
}

// Dispatch delivers ev to the connected handlers in connection order. A handler
// disconnected by an earlier handler during the same dispatch is skipped.
func (d *Dispatcher) Dispatch(ev PointerEvent) {
	for _, id := range append([]ConnectionID(nil), d.order...) {
		if h, ok := d.handlers[id]; ok {
			h(ev)
		}
	}
}
