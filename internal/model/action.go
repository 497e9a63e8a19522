package model

// Action is the common interface every executable-content node
// implements (§4.3). It is a pure marker plus a kind discriminator;
// the evaluator in internal/exec type-switches on the concrete type.
type Action interface {
	ActionKind() ActionKind
}

// Assign writes a value to the data store at Location. Expr takes
// precedence over inline Content (§4.2 "Content vs expression"). One
// of Clear/ClearNull/Expr/Content applies per §4.2 and the Open
// Question in spec.md §9 (neither expr nor children and no clear is a
// lenient no-op).
type Assign struct {
	Location  string
	Expr      string
	Content   string
	Clear     bool
	ClearNull bool
}

func (Assign) ActionKind() ActionKind { return KindAssign }

// Raise enqueues an internal platform event. Event is a literal name;
// if EventExpr is set it is evaluated instead (§4.3 "name-from-expr").
type Raise struct {
	Event     string
	EventExpr string
}

func (Raise) ActionKind() ActionKind { return KindRaise }

// Log emits {label, expr-value} to the logging collaborator. Never
// fails the step (§4.3).
type Log struct {
	Label string
	Expr  string
}

func (Log) ActionKind() ActionKind { return KindLog }

// Branch is one arm of an if/elseif/else chain: Cond empty marks the
// trailing else. Branches execute only their own direct children —
// sibling branches are never run as ordinary children of the parent
// block (§4.3).
type Branch struct {
	Cond     string
	Children []Action
}

// If bundles the whole if/elseif/else chain into one action node so
// the evaluator can pick exactly one branch.
type If struct {
	Branches []Branch
}

func (If) ActionKind() ActionKind { return KindIf }

// Foreach iterates Array, binding Item (and optional Index) in the
// data store for each iteration of Body. A failure aborts only this
// foreach and raises error.execution (§4.3).
type Foreach struct {
	Array string
	Item  string
	Index string
	Body  []Action
}

func (Foreach) ActionKind() ActionKind { return KindForeach }

// Param is a name/value pair attached to <send>/<donedata>, evaluated
// from Expr or read from Location (SCXML 5.7, carried per SPEC_FULL §12).
type Param struct {
	Name     string
	Expr     string
	Location string
}

// Send enqueues an event to the external queue or a named
// IOProcessor, with optional scheduled delivery (§4.3).
type Send struct {
	ID          string
	IDExpr      string
	Event       string
	EventExpr   string
	Target      string
	TargetExpr  string
	Type        string
	TypeExpr    string
	Delay       string // duration literal, e.g. "2s"
	DelayExpr   string
	Params      []Param
	ContentExpr string
	Content     string
}

func (Send) ActionKind() ActionKind { return KindSend }

// Script passes Expr to the evaluator without assigning the result
// anywhere (§4.3).
type Script struct {
	Expr string
}

func (Script) ActionKind() ActionKind { return KindScript }

// Cancel removes a scheduled send by SendID (or SendIDExpr) (§4.3).
type Cancel struct {
	SendID     string
	SendIDExpr string
}

func (Cancel) ActionKind() ActionKind { return KindCancel }

// DoneData is attached to a <final> state and evaluated at mount time
// to populate the data of the done.state.<parent> completion event
// (§6.4, SPEC_FULL §12).
type DoneData struct {
	Params      []Param
	ContentExpr string
	Content     string
}
