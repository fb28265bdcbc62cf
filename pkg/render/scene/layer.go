package scene

import "slices"

// Layer is an ordered group of elements sharing a CSS class. Later
// elements paint over earlier ones.
type Layer struct {
	Class string

	elements []*Element
	exiting  []*Element
	index    map[string]*Element
}

// Append adds a new element on top of the layer. Keys need not be unique;
// lookups by key find the lowest element with that key.
func (l *Layer) Append(tag, key string) *Element {
	el := &Element{Tag: tag, Key: key}
	l.elements = append(l.elements, el)
	if key != "" {
		if _, ok := l.index[key]; !ok {
			l.index[key] = el
		}
	}
	return el
}

// Ensure returns the element with key, appending a new one when absent.
func (l *Layer) Ensure(tag, key string) (el *Element, created bool) {
	if el := l.Select(key); el != nil {
		return el, false
	}
	return l.Append(tag, key), true
}

// Select returns the element with key, or nil.
func (l *Layer) Select(key string) *Element { return l.index[key] }

// Elements returns the live elements bottom to top.
func (l *Layer) Elements() []*Element { return slices.Clone(l.elements) }

// Exiting returns elements that are animating out.
func (l *Layer) Exiting() []*Element { return slices.Clone(l.exiting) }

// Len returns the number of live elements.
func (l *Layer) Len() int { return len(l.elements) }

// Remove detaches an element immediately.
func (l *Layer) Remove(el *Element) {
	l.elements = slices.DeleteFunc(l.elements, func(e *Element) bool { return e == el })
	l.reindex()
}

// Exit detaches an element from the live set and keeps it only until the
// next [Layer.Flush], so its removal transition can still be drawn.
func (l *Layer) Exit(el *Element) {
	l.Remove(el)
	l.exiting = append(l.exiting, el)
}

// Flush drops exited elements.
func (l *Layer) Flush() { l.exiting = nil }

// Settle ends the previous mutation: exited elements are dropped and live
// elements lose their transitions. Mutations settle the layer first, so a
// snapshot animates only what the latest mutation changed.
func (l *Layer) Settle() {
	l.Flush()
	for _, el := range l.elements {
		el.ClearTransitions()
	}
}

// Clear removes every element, live or exiting.
func (l *Layer) Clear() {
	l.elements = nil
	l.exiting = nil
	l.index = map[string]*Element{}
}

// RaiseToFront moves an element to the top of its layer.
func (l *Layer) RaiseToFront(el *Element) bool {
	i := slices.Index(l.elements, el)
	if i < 0 {
		return false
	}
	if i == len(l.elements)-1 {
		return true
	}
	l.elements = append(slices.Delete(l.elements, i, i+1), el)
	l.reindex()
	return true
}

// Contains reports whether el is a live element of the layer.
func (l *Layer) Contains(el *Element) bool { return slices.Contains(l.elements, el) }

func (l *Layer) reindex() {
	l.index = make(map[string]*Element, len(l.elements))
	for _, el := range l.elements {
		if el.Key == "" {
			continue
		}
		if _, ok := l.index[el.Key]; !ok {
			l.index[el.Key] = el
		}
	}
}

// JoinResult is the outcome of reconciling a layer against a list of keys.
type JoinResult struct {
	// Enter holds indexes into the joined keys that have no element yet.
	Enter []int
	// Update holds, per joined key, the matched element (nil when entering).
	Update []*Element
	// Exit holds live elements whose key is no longer present.
	Exit []*Element
}

// Join matches keys against the live elements without mutating the layer.
// Each element matches at most one key; a key repeated in the input whose
// elements are used up enters again.
func (l *Layer) Join(keys []string) JoinResult {
	buckets := make(map[string][]*Element, len(l.elements))
	for _, el := range l.elements {
		buckets[el.Key] = append(buckets[el.Key], el)
	}

	res := JoinResult{Update: make([]*Element, len(keys))}
	for i, k := range keys {
		if b := buckets[k]; len(b) > 0 {
			res.Update[i] = b[0]
			buckets[k] = b[1:]
			continue
		}
		res.Enter = append(res.Enter, i)
	}
	for _, el := range l.elements {
		if b := buckets[el.Key]; slices.Contains(b, el) {
			res.Exit = append(res.Exit, el)
		}
	}
	return res
}
