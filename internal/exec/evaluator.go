// Package exec implements the executable-content evaluator (§4.3):
// it walks a transition's or state's action list against the current
// runtime state, mutating the data store and the internal event queue
// one action at a time. Failures never abort the surrounding
// microstep — they are trapped into platform error events and
// execution continues with the next action (§4.3, §7).
package exec

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scxml-go/scxml/internal/data"
	"github.com/scxml-go/scxml/internal/model"
)

// ExprEvaluator is the pluggable expression-language capability (§9
// "Expression evaluator as a capability... the core never interprets
// expression syntax; it only traps failures").
type ExprEvaluator interface {
	Eval(expr string, env map[string]any) (any, error)
}

// Sender enqueues events produced by <send>, either onto the external
// queue (default) or to a named IOProcessor. Kept as a narrow
// interface so the evaluator doesn't depend on internal/extensibility
// directly.
type Sender interface {
	Send(target, eventType string, ev data.Event, delay time.Duration) error
	Cancel(sendID string)
}

// IDGenerator mints a sendid for a <send> that didn't specify one
// (§3.3's event metadata). Kept as a narrow interface, mirroring
// Sender, so the evaluator doesn't depend on internal/extensibility
// directly.
type IDGenerator interface {
	NewSendID() string
}

// Evaluator runs executable-content action lists against a
// data.RuntimeState.
type Evaluator struct {
	Expr   ExprEvaluator
	Sender Sender
	IDGen  IDGenerator
	Logger *slog.Logger
}

// New builds an Evaluator; a nil logger falls back to slog.Default.
func New(expr ExprEvaluator, sender Sender, idGen IDGenerator, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{Expr: expr, Sender: sender, IDGen: idGen, Logger: logger}
}

// Run executes actions in document order against rt, feeding the
// evolving runtime state through each step (§4.3). It never returns an
// error itself: every per-action failure is trapped into a platform
// error event on the internal queue, matching §7's "current action is
// abandoned, subsequent actions proceed" policy.
func (e *Evaluator) Run(actions []model.Action, rt *data.RuntimeState) {
	for _, a := range actions {
		e.runOne(a, rt)
	}
}

func (e *Evaluator) runOne(a model.Action, rt *data.RuntimeState) {
	switch v := a.(type) {
	case model.Assign:
		e.runAssign(v, rt)
	case model.Raise:
		e.runRaise(v, rt)
	case model.Log:
		e.runLog(v, rt)
	case model.If:
		e.runIf(v, rt)
	case model.Foreach:
		e.runForeach(v, rt)
	case model.Send:
		e.runSend(v, rt)
	case model.Script:
		e.runScript(v, rt)
	case model.Cancel:
		e.runCancel(v, rt)
	default:
		e.trap(rt, "execution", fmt.Errorf("unrecognized action kind %T", a), "evaluator")
	}
}

func (e *Evaluator) env(rt *data.RuntimeState) map[string]any {
	extra := map[string]any{}
	if rt.CurrentEvent.Name != "" {
		extra["_event"] = map[string]any{
			"name": rt.CurrentEvent.Name,
			"data": rt.CurrentEvent.Data,
			"type": rt.CurrentEvent.Origin.String(),
		}
	}
	return rt.Store.Env(extra)
}

// trap constructs a platform error event and pushes it to the
// internal queue, per §6.3's "error event names go on the internal
// queue" and §7's evaluation-error handling.
func (e *Evaluator) trap(rt *data.RuntimeState, label string, cause error, source string) {
	ev := data.NewPlatformError(label, cause)
	rt.Internal.Push(ev)
	e.Logger.Warn("executable content trapped an error", "label", label, "source", source, "error", cause)
}

func (e *Evaluator) runAssign(a model.Assign, rt *data.RuntimeState) {
	if a.Clear {
		if err := rt.Store.Delete(a.Location); err != nil {
			e.trap(rt, "assign.invalid-location", err, "assign")
		}
		return
	}
	var value any
	switch {
	case a.ClearNull:
		value = nil
	case a.Expr != "":
		v, err := e.Expr.Eval(a.Expr, e.env(rt))
		if err != nil {
			e.trap(rt, "execution", err, "assign")
			return
		}
		value = v
	case a.Content != "":
		value = a.Content
	default:
		// Lenient no-op per the Open Question resolution: neither
		// expr, content, nor clear is tolerated rather than rejected.
		return
	}
	if err := rt.Store.Set(a.Location, value); err != nil {
		e.trap(rt, "assign.invalid-location", err, "assign")
	}
}

func (e *Evaluator) runRaise(a model.Raise, rt *data.RuntimeState) {
	name := a.Event
	if a.EventExpr != "" {
		v, err := e.Expr.Eval(a.EventExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "raise.bad-expression", err, "raise")
			return
		}
		name, _ = v.(string)
	}
	if name == "" {
		e.trap(rt, "raise.missing-attribute", fmt.Errorf("raise has no event name"), "raise")
		return
	}
	rt.Internal.Push(data.Event{Name: name, Origin: data.OriginInternal, OriginType: "scxml"})
}

func (e *Evaluator) runLog(a model.Log, rt *data.RuntimeState) {
	var value any
	if a.Expr != "" {
		v, err := e.Expr.Eval(a.Expr, e.env(rt))
		if err != nil {
			e.Logger.Warn("log expression failed", "label", a.Label, "error", err)
			return
		}
		value = v
	}
	e.Logger.Info("chart log", "label", a.Label, "value", value)
}

func (e *Evaluator) runIf(a model.If, rt *data.RuntimeState) {
	for _, branch := range a.Branches {
		if branch.Cond == "" {
			e.Run(branch.Children, rt)
			return
		}
		v, err := e.Expr.Eval(branch.Cond, e.env(rt))
		if err != nil {
			e.trap(rt, "execution", err, "if")
			continue
		}
		if truthy(v) {
			e.Run(branch.Children, rt)
			return
		}
	}
}

func (e *Evaluator) runForeach(a model.Foreach, rt *data.RuntimeState) {
	v, err := e.Expr.Eval(a.Array, e.env(rt))
	if err != nil {
		e.trap(rt, "execution", err, "foreach")
		return
	}
	items, ok := v.([]any)
	if !ok {
		e.trap(rt, "execution", fmt.Errorf("foreach array %q is not iterable", a.Array), "foreach")
		return
	}
	for i, item := range items {
		if err := rt.Store.Set(a.Item, item); err != nil {
			e.trap(rt, "execution", err, "foreach")
			return
		}
		if a.Index != "" {
			if err := rt.Store.Set(a.Index, i); err != nil {
				e.trap(rt, "execution", err, "foreach")
				return
			}
		}
		e.Run(a.Body, rt)
	}
}

func (e *Evaluator) runScript(a model.Script, rt *data.RuntimeState) {
	if _, err := e.Expr.Eval(a.Expr, e.env(rt)); err != nil {
		e.trap(rt, "execution", err, "script")
	}
}

func (e *Evaluator) runSend(a model.Send, rt *data.RuntimeState) {
	name := a.Event
	if a.EventExpr != "" {
		v, err := e.Expr.Eval(a.EventExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "send.bad-expression", err, "send")
			return
		}
		name, _ = v.(string)
	}
	target := a.Target
	if a.TargetExpr != "" {
		v, err := e.Expr.Eval(a.TargetExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "send.bad-expression", err, "send")
			return
		}
		target, _ = v.(string)
	}
	if name == "" && a.ContentExpr == "" && a.Content == "" {
		e.trap(rt, "send.missing-target", fmt.Errorf("send has no event name"), "send")
		return
	}

	payload := map[string]any{}
	for _, p := range a.Params {
		val, err := e.resolveParam(p, rt)
		if err != nil {
			e.trap(rt, "execution", err, "send")
			continue
		}
		payload[p.Name] = val
	}
	var content any = payload
	if a.ContentExpr != "" {
		v, err := e.Expr.Eval(a.ContentExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "send.bad-expression", err, "send")
			return
		}
		content = v
	} else if a.Content != "" {
		content = a.Content
	}

	sendID := a.ID
	if a.IDExpr != "" {
		v, err := e.Expr.Eval(a.IDExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "send.bad-expression", err, "send")
			return
		}
		sendID, _ = v.(string)
	}
	if sendID == "" && e.IDGen != nil {
		sendID = e.IDGen.NewSendID()
	}

	delay, err := parseDelay(a, e, rt)
	if err != nil {
		e.trap(rt, "send.bad-expression", err, "send")
		return
	}

	ev := data.Event{Name: name, Data: content, Origin: data.OriginExternal, OriginType: a.Type, SendID: sendID}
	if e.Sender == nil {
		e.trap(rt, "send.delivery-failed", fmt.Errorf("no sender configured"), "send")
		return
	}
	if err := e.Sender.Send(target, a.Type, ev, delay); err != nil {
		if errors.Is(err, data.ErrCommunication) {
			e.trap(rt, "communication", err, "send")
		} else {
			e.trap(rt, "send.delivery-failed", err, "send")
		}
	}
}

func (e *Evaluator) resolveParam(p model.Param, rt *data.RuntimeState) (any, error) {
	if p.Expr != "" {
		return e.Expr.Eval(p.Expr, e.env(rt))
	}
	if p.Location != "" {
		v, _ := rt.Store.Get(p.Location)
		return v, nil
	}
	return nil, nil
}

func parseDelay(a model.Send, e *Evaluator, rt *data.RuntimeState) (time.Duration, error) {
	lit := a.Delay
	if a.DelayExpr != "" {
		v, err := e.Expr.Eval(a.DelayExpr, e.env(rt))
		if err != nil {
			return 0, err
		}
		s, _ := v.(string)
		lit = s
	}
	if lit == "" {
		return 0, nil
	}
	return time.ParseDuration(lit)
}

func (e *Evaluator) runCancel(a model.Cancel, rt *data.RuntimeState) {
	id := a.SendID
	if a.SendIDExpr != "" {
		v, err := e.Expr.Eval(a.SendIDExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "execution", err, "cancel")
			return
		}
		id, _ = v.(string)
	}
	if id == "" || e.Sender == nil {
		return
	}
	e.Sender.Cancel(id)
}

// truthy mirrors the lenient coercion an ECMAScript-like condition
// evaluator applies to a guard's result (§4.4.1).
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

// EvalDoneData evaluates a <final> state's <donedata> producer into
// the payload for its done.state.<parent> completion event (§6.4,
// SPEC_FULL §12).
func (e *Evaluator) EvalDoneData(dd *model.DoneData, rt *data.RuntimeState) any {
	if dd == nil {
		return nil
	}
	if dd.ContentExpr != "" {
		v, err := e.Expr.Eval(dd.ContentExpr, e.env(rt))
		if err != nil {
			e.trap(rt, "execution", err, "donedata")
			return nil
		}
		return v
	}
	if dd.Content != "" {
		return dd.Content
	}
	payload := map[string]any{}
	for _, p := range dd.Params {
		v, err := e.resolveParam(p, rt)
		if err != nil {
			e.trap(rt, "execution", err, "donedata")
			continue
		}
		payload[p.Name] = v
	}
	if len(payload) == 0 {
		return nil
	}
	return payload
}
