package model

import "fmt"

// Chart is the immutable, parsed statechart document (§3.1). It is
// built once (by internal/parser, or by hand in tests) and shared
// read-only for the lifetime of every run built from it (§5).
type Chart struct {
	Root *State
	// NodesByID maps the fully-qualified dotted path (§4.1) to the
	// owning node, for every identifiable descendant.
	NodesByID map[string]*State
	// Datamodel selects the expression language; only ECMAScriptLike
	// and NullDatamodel are mandated (§3.1).
	Datamodel DatamodelKind
	// Initial is the dotted path of the root's initial child, resolved
	// once at build time; default completion below that child happens
	// at startup, not here.
	Initial string
}

// Build indexes a freshly-parsed tree rooted at root and validates
// the invariants of §3.2 (initial resolves to an existing child,
// transition targets exist, parallel states have at least one
// region, etc). It returns a ready-to-run Chart or a construction
// error (§7 "Construction errors... reported at parse time; the
// chart is not constructed").
func Build(root *State) (*Chart, error) {
	c := &Chart{
		Root:      root,
		NodesByID: make(map[string]*State),
	}
	index(root, c.NodesByID)
	if err := validateState(root); err != nil {
		return nil, err
	}
	if err := validateTargets(root, c.NodesByID); err != nil {
		return nil, err
	}
	initial := resolveInitialChild(root)
	if initial == nil {
		return nil, fmt.Errorf("chart root %q resolves to no initial child", root.Path())
	}
	c.Initial = initial.Path()
	return c, nil
}

// resolveInitialChild mirrors internal/pathalgo.ResolveInitialChild's
// precedence (§4.4.2) for the one caller inside this package; kept
// local rather than imported to avoid a model<->pathalgo import cycle,
// since pathalgo already depends on model.
func resolveInitialChild(s *State) *State {
	if s.Initial != "" {
		if c := s.Child(s.Initial); c != nil {
			return c
		}
	}
	if len(s.Children) > 0 {
		return s.Children[0]
	}
	return nil
}

func index(s *State, into map[string]*State) {
	into[s.Path()] = s
	for _, child := range s.Children {
		index(child, into)
	}
}

func validateState(s *State) error {
	switch s.Kind {
	case Atomic, Final:
		if len(s.Children) != 0 {
			return fmt.Errorf("state %q: atomic/final states cannot have children", s.Path())
		}
		if s.Kind == Final && len(s.Transitions) != 0 {
			return fmt.Errorf("state %q: final states cannot have outgoing transitions", s.Path())
		}
	case Compound:
		if len(s.Children) == 0 {
			return fmt.Errorf("state %q: compound state requires at least one child", s.Path())
		}
		if s.Initial != "" && s.Child(s.Initial) == nil {
			return fmt.Errorf("state %q: initial %q does not resolve to a child", s.Path(), s.Initial)
		}
	case Parallel:
		if len(s.Children) == 0 {
			return fmt.Errorf("state %q: parallel state requires at least one region", s.Path())
		}
	case ShallowHistory, DeepHistory:
		if len(s.Children) != 0 {
			return fmt.Errorf("state %q: history pseudo-states cannot have children", s.Path())
		}
	default:
		return fmt.Errorf("state %q: unknown state kind %v", s.Path(), s.Kind)
	}
	for _, child := range s.Children {
		if err := validateState(child); err != nil {
			return err
		}
	}
	return nil
}

func validateTargets(s *State, index map[string]*State) error {
	for _, t := range s.Transitions {
		for _, target := range t.Targets {
			resolved := resolveRelative(s, target, index)
			if _, ok := index[resolved]; !ok {
				return fmt.Errorf("state %q: transition target %q not found", s.Path(), target)
			}
		}
	}
	for _, child := range s.Children {
		if err := validateTargets(child, index); err != nil {
			return err
		}
	}
	return nil
}

// resolveRelative returns target unchanged when it is already an
// absolute path in the index; otherwise it tries target relative to
// its source's parent. The parser emits absolute dotted paths in
// practice; this keeps hand-built test charts (which often write bare
// child ids) working too.
func resolveRelative(from *State, target string, index map[string]*State) string {
	if _, ok := index[target]; ok {
		return target
	}
	if from.Parent != nil {
		if candidate := from.Parent.Path(); candidate != "" {
			joined := candidate + "." + target
			if _, ok := index[joined]; ok {
				return joined
			}
		} else if _, ok := index[target]; ok {
			return target
		}
	}
	return target
}

// FindState resolves a dotted path to its node.
func (c *Chart) FindState(path string) (*State, error) {
	s, ok := c.NodesByID[path]
	if !ok {
		return nil, fmt.Errorf("state %q not found", path)
	}
	return s, nil
}
