// Package data holds the runtime state of one chart execution: the
// data store, event queues, active configuration, and history store
// (§3.3). Nothing here is shared across runs (§5 "runtime state is
// owned by the loop").
package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Store is the mutable key→value tree rooted at "data" (§3.2, §4.2).
// Locations are dotted paths with optional [index] segments;
// assignment auto-creates missing intermediate objects. Not safe for
// concurrent use from outside the single logical owner (§3.4, §5) —
// callers besides the interpreter loop must not mutate it directly.
type Store struct {
	root map[string]any
}

// NewStore creates an empty data store.
func NewStore() *Store {
	return &Store{root: make(map[string]any)}
}

// pathSegment is one parsed step of a location: either a map key or,
// when isIdx is true, an array index.
type pathSegment struct {
	key   string
	index int
	isIdx bool
}

// parsePath splits "user.items[2].name" into
// [{user} {items} {2,isIdx} {name}]. The first segment must always be
// a bare name: the data store root is a map, never an array.
func parsePath(location string) ([]pathSegment, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("empty location")
	}
	var segs []pathSegment
	for _, dotPart := range strings.Split(location, ".") {
		if dotPart == "" {
			return nil, fmt.Errorf("invalid location %q: empty segment", location)
		}
		rest := dotPart
		for {
			open := strings.IndexByte(rest, '[')
			if open == -1 {
				if rest != "" {
					segs = append(segs, pathSegment{key: rest})
				}
				break
			}
			if open > 0 {
				segs = append(segs, pathSegment{key: rest[:open]})
			}
			closeIdx := strings.IndexByte(rest[open:], ']')
			if closeIdx == -1 {
				return nil, fmt.Errorf("invalid location %q: unmatched '['", location)
			}
			closeIdx += open
			idxStr := rest[open+1 : closeIdx]
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("invalid location %q: non-numeric index %q", location, idxStr)
			}
			segs = append(segs, pathSegment{index: idx, isIdx: true})
			rest = rest[closeIdx+1:]
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("invalid location %q", location)
	}
	if segs[0].isIdx {
		return nil, fmt.Errorf("invalid location %q: must start with a name", location)
	}
	return segs, nil
}

// Get reads the value at location. The second return is false if any
// segment of the path is missing.
func (s *Store) Get(location string) (any, bool) {
	segs, err := parsePath(location)
	if err != nil {
		return nil, false
	}
	var cur any = s.root
	for _, seg := range segs {
		switch c := cur.(type) {
		case map[string]any:
			if seg.isIdx {
				return nil, false
			}
			v, ok := c[seg.key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !seg.isIdx || seg.index < 0 || seg.index >= len(c) {
				return nil, false
			}
			cur = c[seg.index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set writes value at location, creating missing intermediate objects
// along the way; array-index segments create/extend arrays (§4.2).
func (s *Store) Set(location string, value any) error {
	segs, err := parsePath(location)
	if err != nil {
		return err
	}
	return setInMap(s.root, segs[0].key, segs[1:], value)
}

// setInMap assigns value at key (then recursively through rest) inside
// parent, replacing parent[key] with whatever container shape the
// remaining path segments require.
func setInMap(parent map[string]any, key string, rest []pathSegment, value any) error {
	if len(rest) == 0 {
		parent[key] = value
		return nil
	}
	newChild, err := applySegments(parent[key], rest, value)
	if err != nil {
		return err
	}
	parent[key] = newChild
	return nil
}

// applySegments descends into container following segs, creating
// missing maps/arrays as needed, and returns the (possibly
// newly-allocated or grown) container with value written at the end
// of the path.
func applySegments(container any, segs []pathSegment, value any) (any, error) {
	seg := segs[0]
	rest := segs[1:]

	if seg.isIdx {
		arr, ok := container.([]any)
		if !ok {
			if container != nil {
				return nil, fmt.Errorf("cannot index a non-array value")
			}
			arr = []any{}
		}
		for len(arr) <= seg.index {
			arr = append(arr, nil)
		}
		if len(rest) == 0 {
			arr[seg.index] = value
			return arr, nil
		}
		newChild, err := applySegments(arr[seg.index], rest, value)
		if err != nil {
			return nil, err
		}
		arr[seg.index] = newChild
		return arr, nil
	}

	m, ok := container.(map[string]any)
	if !ok {
		if container != nil {
			return nil, fmt.Errorf("cannot set key %q on a non-object value", seg.key)
		}
		m = map[string]any{}
	}
	if len(rest) == 0 {
		m[seg.key] = value
		return m, nil
	}
	newChild, err := applySegments(m[seg.key], rest, value)
	if err != nil {
		return nil, err
	}
	m[seg.key] = newChild
	return m, nil
}

// Delete removes the leaf key at location (Assign clear=true, §4.2).
func (s *Store) Delete(location string) error {
	segs, err := parsePath(location)
	if err != nil {
		return err
	}
	if len(segs) == 1 {
		delete(s.root, segs[0].key)
		return nil
	}
	parentLoc := joinSegs(segs[:len(segs)-1])
	parent, ok := s.Get(parentLoc)
	if !ok {
		return nil
	}
	last := segs[len(segs)-1]
	switch p := parent.(type) {
	case map[string]any:
		if last.isIdx {
			return fmt.Errorf("cannot delete an index on an object")
		}
		delete(p, last.key)
	case []any:
		if !last.isIdx || last.index < 0 || last.index >= len(p) {
			return fmt.Errorf("index out of range")
		}
		p[last.index] = nil
	default:
		return fmt.Errorf("cannot delete from a scalar value")
	}
	return nil
}

func joinSegs(segs []pathSegment) string {
	var b strings.Builder
	for i, s := range segs {
		if s.isIdx {
			fmt.Fprintf(&b, "[%d]", s.index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.key)
	}
	return b.String()
}

// Snapshot returns a shallow copy of the root map for serialization.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.root))
	for k, v := range s.root {
		out[k] = v
	}
	return out
}

// Restore replaces the store contents wholesale. Used by the
// interpreter to seed a run's initial extended state from caller-
// supplied input data (§6.2 "chart.run(input_data, ...)"), and by the
// production persister for inspection tooling — neither is a resume
// mechanism; §1's Non-goals excludes cross-process resume.
func (s *Store) Restore(snapshot map[string]any) {
	s.root = make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		s.root[k] = v
	}
}

// Env exposes the store as a plain map for the expression evaluator
// capability (§9 "evaluate(expr, state) -> Result<Value>"), plus any
// extra root-level bindings (like _event) the caller wants visible.
func (s *Store) Env(extra map[string]any) map[string]any {
	env := make(map[string]any, len(s.root)+len(extra))
	for k, v := range s.root {
		env[k] = v
	}
	for k, v := range extra {
		env[k] = v
	}
	return env
}
