// Package parser turns the SCXML-shaped XML dialect of spec.md §6.1
// into a model.Chart. It walks the token stream with encoding/xml's
// xml.Decoder directly rather than xml.Unmarshal, since executable
// content and state nesting recurse arbitrarily and unmarshalling into
// fixed struct shapes can't express a sum type cleanly (§9 "tagged
// variants over inheritance").
package parser

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/scxml-go/scxml/internal/model"
)

// Parse decodes r as an <scxml> document and builds a validated Chart.
func Parse(r io.Reader) (*model.Chart, error) {
	dec := xml.NewDecoder(r)
	root, datamodelKind, err := findRoot(dec)
	if err != nil {
		return nil, err
	}
	chart, err := model.Build(root)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	chart.Datamodel = datamodelKind
	return chart, nil
}

func findRoot(dec *xml.Decoder) (*model.State, model.DatamodelKind, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, 0, fmt.Errorf("parser: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "scxml" {
			return nil, 0, fmt.Errorf("parser: root element must be <scxml>, found <%s>", start.Name.Local)
		}
		return parseScxml(dec, start)
	}
}

func parseScxml(dec *xml.Decoder, start xml.StartElement) (*model.State, model.DatamodelKind, error) {
	initial := attr(start, "initial")
	if initial == "" {
		return nil, 0, fmt.Errorf("parser: <scxml> requires an initial attribute")
	}
	dmKind := model.ECMAScriptLike
	if attr(start, "datamodel") == "null" {
		dmKind = model.NullDatamodel
	}

	root := &model.State{ID: "", Kind: model.Compound, Initial: initial}
	if err := parseStateBody(dec, start.Name, root); err != nil {
		return nil, 0, err
	}
	resolveStateKinds(root)
	return root, dmKind, nil
}

// parseStateBody consumes child elements of a <scxml>/<state>/<parallel>
// container until its matching end tag, populating s in place.
func parseStateBody(dec *xml.Decoder, end xml.Name, s *model.State) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == end.Local {
				return nil
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "state", "parallel", "final":
				child, err := parseStateElement(dec, t)
				if err != nil {
					return err
				}
				child.Parent = s
				s.Children = append(s.Children, child)
			case "history":
				child, err := parseHistory(dec, t)
				if err != nil {
					return err
				}
				child.Parent = s
				s.Children = append(s.Children, child)
			case "initial":
				target, err := parseInitialElement(dec, t)
				if err != nil {
					return err
				}
				s.Initial = target
			case "transition":
				tr, err := parseTransition(dec, t)
				if err != nil {
					return err
				}
				s.Transitions = append(s.Transitions, tr)
			case "onentry":
				actions, err := parseActions(dec, t.Name)
				if err != nil {
					return err
				}
				s.OnEntry = actions
			case "onexit":
				actions, err := parseActions(dec, t.Name)
				if err != nil {
					return err
				}
				s.OnExit = actions
			case "datamodel":
				decls, err := parseDatamodel(dec, t)
				if err != nil {
					return err
				}
				s.Datamodel = decls
			case "donedata":
				dd, err := parseDoneData(dec, t)
				if err != nil {
					return err
				}
				s.Done = dd
			default:
				return fmt.Errorf("parser: unknown element <%s> inside <%s>", t.Name.Local, end.Local)
			}
		}
	}
}

// parseStateElement handles <state>, <parallel>, and <final>. Kind is
// fixed by tag name for "parallel"/"final"; a bare "state" is
// provisionally Compound and corrected to Atomic by
// resolveStateKinds once the whole tree is known to have no children.
func parseStateElement(dec *xml.Decoder, start xml.StartElement) (*model.State, error) {
	id := attr(start, "id")
	s := &model.State{ID: id}
	switch start.Name.Local {
	case "parallel":
		s.Kind = model.Parallel
	case "final":
		s.Kind = model.Final
	default:
		s.Kind = model.Compound
		s.Initial = attr(start, "initial")
	}
	if err := parseStateBody(dec, start.Name, s); err != nil {
		return nil, err
	}
	return s, nil
}

func parseHistory(dec *xml.Decoder, start xml.StartElement) (*model.State, error) {
	s := &model.State{ID: attr(start, "id"), Kind: model.ShallowHistory}
	if attr(start, "type") == "deep" {
		s.Kind = model.DeepHistory
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return s, nil
			}
		case xml.StartElement:
			if t.Name.Local != "transition" {
				return nil, fmt.Errorf("parser: unknown element <%s> inside <%s>", t.Name.Local, start.Name.Local)
			}
			tr, err := parseTransition(dec, t)
			if err != nil {
				return nil, err
			}
			if len(tr.Targets) > 0 {
				s.HistoryDefault = tr.Targets[0]
			}
		}
	}
}

// parseInitialElement reads an <initial><transition target="..."/></initial>
// pseudo-state, folding its target into the caller's Initial field per
// §4.4.2's precedence slot 2.
func parseInitialElement(dec *xml.Decoder, start xml.StartElement) (string, error) {
	var target string
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return target, nil
			}
		case xml.StartElement:
			if t.Name.Local != "transition" {
				return "", fmt.Errorf("parser: unknown element <%s> inside <%s>", t.Name.Local, start.Name.Local)
			}
			tr, err := parseTransition(dec, t)
			if err != nil {
				return "", err
			}
			if len(tr.Targets) > 0 {
				target = tr.Targets[0]
			}
		}
	}
}

func parseTransition(dec *xml.Decoder, start xml.StartElement) (*model.Transition, error) {
	tr := &model.Transition{
		Event: attr(start, "event"),
		Cond:  attr(start, "cond"),
	}
	if attr(start, "type") == "internal" {
		tr.Type = model.Internal
	}
	if targets := attr(start, "target"); targets != "" {
		tr.Targets = splitFields(targets)
	}
	actions, err := parseActions(dec, start.Name)
	if err != nil {
		return nil, err
	}
	tr.Actions = actions
	return tr, nil
}

func parseDatamodel(dec *xml.Decoder, start xml.StartElement) ([]model.Data, error) {
	var decls []model.Data
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return decls, nil
			}
		case xml.StartElement:
			if t.Name.Local != "data" {
				return nil, fmt.Errorf("parser: unknown element <%s> inside <%s>", t.Name.Local, start.Name.Local)
			}
			d, err := parseData(dec, t)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		}
	}
}

func parseData(dec *xml.Decoder, start xml.StartElement) (model.Data, error) {
	d := model.Data{
		ID:   attr(start, "id"),
		Expr: attr(start, "expr"),
		Src:  attr(start, "src"),
	}
	text, err := elementText(dec, start.Name)
	if err != nil {
		return model.Data{}, err
	}
	if d.Expr == "" && d.Src == "" {
		d.Content = text
	}
	return d, nil
}

// parseActions consumes a sequence of executable-content elements,
// stopping at end's matching close tag.
func parseActions(dec *xml.Decoder, end xml.Name) ([]model.Action, error) {
	var actions []model.Action
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == end.Local {
				return actions, nil
			}
		case xml.StartElement:
			a, err := parseAction(dec, t)
			if err != nil {
				return nil, err
			}
			if a != nil {
				actions = append(actions, a)
			}
		}
	}
}

func parseAction(dec *xml.Decoder, start xml.StartElement) (model.Action, error) {
	switch start.Name.Local {
	case "assign":
		text, err := elementText(dec, start.Name)
		if err != nil {
			return nil, err
		}
		a := model.Assign{
			Location: attr(start, "location"),
			Expr:     attr(start, "expr"),
		}
		switch attr(start, "clear") {
		case "true":
			a.Clear = true
		case "null":
			a.ClearNull = true
		}
		if a.Expr == "" && !a.Clear && !a.ClearNull {
			a.Content = text
		}
		return a, nil
	case "raise":
		_, err := elementText(dec, start.Name)
		return model.Raise{Event: attr(start, "event"), EventExpr: attr(start, "eventexpr")}, err
	case "log":
		text, err := elementText(dec, start.Name)
		if err != nil {
			return nil, err
		}
		return model.Log{Label: attr(start, "label"), Expr: firstNonEmpty(attr(start, "expr"), text)}, nil
	case "if":
		return parseIf(dec, start)
	case "foreach":
		return parseForeach(dec, start)
	case "send":
		return parseSend(dec, start)
	case "cancel":
		_, err := elementText(dec, start.Name)
		return model.Cancel{SendID: attr(start, "sendid"), SendIDExpr: attr(start, "sendidexpr")}, err
	case "script":
		text, err := elementText(dec, start.Name)
		return model.Script{Expr: text}, err
	default:
		return nil, fmt.Errorf("parser: unknown executable-content element <%s>", start.Name.Local)
	}
}

// parseIf consumes an <if cond="..."> through its matching </if>,
// splitting children into branches at each <elseif>/<else> per §4.3:
// branches run only their own direct children.
func parseIf(dec *xml.Decoder, start xml.StartElement) (model.Action, error) {
	branches := []model.Branch{{Cond: attr(start, "cond")}}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return model.If{Branches: branches}, nil
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "elseif":
				branches = append(branches, model.Branch{Cond: attr(t, "cond")})
			case "else":
				branches = append(branches, model.Branch{})
			default:
				a, err := parseAction(dec, t)
				if err != nil {
					return nil, err
				}
				if a != nil {
					last := len(branches) - 1
					branches[last].Children = append(branches[last].Children, a)
				}
			}
		}
	}
}

func parseForeach(dec *xml.Decoder, start xml.StartElement) (model.Action, error) {
	f := model.Foreach{
		Array: attr(start, "array"),
		Item:  attr(start, "item"),
		Index: attr(start, "index"),
	}
	body, err := parseActions(dec, start.Name)
	if err != nil {
		return nil, err
	}
	f.Body = body
	return f, nil
}

func parseSend(dec *xml.Decoder, start xml.StartElement) (model.Action, error) {
	s := model.Send{
		ID:         attr(start, "id"),
		IDExpr:     attr(start, "idlocation"),
		Event:      attr(start, "event"),
		EventExpr:  attr(start, "eventexpr"),
		Target:     attr(start, "target"),
		TargetExpr: attr(start, "targetexpr"),
		Type:       attr(start, "type"),
		TypeExpr:   attr(start, "typeexpr"),
		Delay:      attr(start, "delay"),
		DelayExpr:  attr(start, "delayexpr"),
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return s, nil
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "param":
				p, err := parseParam(dec, t)
				if err != nil {
					return nil, err
				}
				s.Params = append(s.Params, p)
			case "content":
				text, err := elementText(dec, t.Name)
				if err != nil {
					return nil, err
				}
				if expr := attr(t, "expr"); expr != "" {
					s.ContentExpr = expr
				} else {
					s.Content = text
				}
			default:
				return nil, fmt.Errorf("parser: unknown element <%s> inside <send>", t.Name.Local)
			}
		}
	}
}

func parseParam(dec *xml.Decoder, start xml.StartElement) (model.Param, error) {
	_, err := elementText(dec, start.Name)
	return model.Param{
		Name:     attr(start, "name"),
		Expr:     attr(start, "expr"),
		Location: attr(start, "location"),
	}, err
}

func parseDoneData(dec *xml.Decoder, start xml.StartElement) (*model.DoneData, error) {
	dd := &model.DoneData{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return dd, nil
			}
		case xml.StartElement:
			switch t.Name.Local {
			case "param":
				p, err := parseParam(dec, t)
				if err != nil {
					return nil, err
				}
				dd.Params = append(dd.Params, p)
			case "content":
				text, err := elementText(dec, t.Name)
				if err != nil {
					return nil, err
				}
				if expr := attr(t, "expr"); expr != "" {
					dd.ContentExpr = expr
				} else {
					dd.Content = text
				}
			default:
				return nil, fmt.Errorf("parser: unknown element <%s> inside <donedata>", t.Name.Local)
			}
		}
	}
}

// resolveStateKinds corrects every provisionally-Compound <state>
// element with no children to Atomic, since the parser cannot tell the
// two apart from the start tag alone.
func resolveStateKinds(s *model.State) {
	if s.Kind == model.Compound && len(s.Children) == 0 {
		s.Kind = model.Atomic
		return
	}
	for _, c := range s.Children {
		resolveStateKinds(c)
	}
}

// elementText reads character data up to end's matching close tag,
// skipping over any child elements (and their own subtrees) it
// encounters; used for leaf actions/data that carry both attributes
// and optional inline text content.
func elementText(dec *xml.Decoder, end xml.Name) (string, error) {
	var text string
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("parser: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if depth == 0 {
				text += string(t)
			}
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 && t.Name.Local == end.Local {
				return text, nil
			}
			if depth > 0 {
				depth--
			}
		}
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func splitFields(s string) []string {
	var out []string
	field := ""
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if field != "" {
				out = append(out, field)
				field = ""
			}
			continue
		}
		field += string(r)
	}
	if field != "" {
		out = append(out, field)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
