package parser

import (
	"strings"
	"testing"

	"github.com/scxml-go/scxml/internal/model"
)

// TestParseSeedScenarioChart exercises spec.md §8 seed scenario 1's
// literal chart: a wildcard transition from an atomic state to a
// final state named with a colon, which the dotted-path id index must
// treat as an ordinary local id segment.
func TestParseSeedScenarioChart(t *testing.T) {
	src := `<scxml initial="main">
		<state id="main">
			<transition event="*" target="send:channel"/>
		</state>
		<final id="send:channel"/>
	</scxml>`

	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if chart.Initial != "main" {
		t.Fatalf("expected initial %q, got %q", "main", chart.Initial)
	}
	main, err := chart.FindState("main")
	if err != nil {
		t.Fatalf("FindState(main): %v", err)
	}
	if len(main.Transitions) != 1 || main.Transitions[0].Event != "*" {
		t.Fatalf("expected one wildcard transition on main, got %+v", main.Transitions)
	}
	if got := main.Transitions[0].Targets; len(got) != 1 || got[0] != "send:channel" {
		t.Fatalf("expected target %q, got %v", "send:channel", got)
	}
	fin, err := chart.FindState("send:channel")
	if err != nil {
		t.Fatalf("FindState(send:channel): %v", err)
	}
	if fin.Kind != model.Final {
		t.Fatalf("expected send:channel to be a final state, got %v", fin.Kind)
	}
}

func TestParseRejectsNonScxmlRoot(t *testing.T) {
	_, err := Parse(strings.NewReader(`<workflow/>`))
	if err == nil {
		t.Fatal("expected an error for a non-<scxml> root element")
	}
}

func TestParseRejectsMissingInitialAttribute(t *testing.T) {
	_, err := Parse(strings.NewReader(`<scxml><state id="a"/></scxml>`))
	if err == nil {
		t.Fatal("expected an error for a missing initial attribute")
	}
}

func TestParseRejectsUnknownElement(t *testing.T) {
	src := `<scxml initial="a"><state id="a"><bogus/></state></scxml>`
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Fatal("expected an error for an unrecognized element")
	}
}

func TestParseInfersAtomicVsCompound(t *testing.T) {
	src := `<scxml initial="outer">
		<state id="outer" initial="inner">
			<state id="inner"/>
		</state>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer, err := chart.FindState("outer")
	if err != nil {
		t.Fatalf("FindState(outer): %v", err)
	}
	if outer.Kind != model.Compound {
		t.Fatalf("expected outer to be compound, got %v", outer.Kind)
	}
	inner, err := chart.FindState("outer.inner")
	if err != nil {
		t.Fatalf("FindState(outer.inner): %v", err)
	}
	if inner.Kind != model.Atomic {
		t.Fatalf("expected inner to be atomic, got %v", inner.Kind)
	}
	// Chart.Initial resolves only the root's direct child; expanding a
	// compound child down to its own default leaf is pathalgo's job at
	// startup, not the parser's or model.Build's.
	if chart.Initial != "outer" {
		t.Fatalf("expected chart initial %q, got %q", "outer", chart.Initial)
	}
}

func TestParseParallelAndHistory(t *testing.T) {
	src := `<scxml initial="regions">
		<parallel id="regions">
			<state id="left" initial="a">
				<history id="leftHist" type="deep">
					<transition target="regions.left.a"/>
				</history>
				<state id="a"/>
				<state id="b"/>
			</state>
			<state id="right" initial="c">
				<state id="c"/>
				<state id="d"/>
			</state>
		</parallel>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	regions, err := chart.FindState("regions")
	if err != nil {
		t.Fatalf("FindState(regions): %v", err)
	}
	if regions.Kind != model.Parallel {
		t.Fatalf("expected regions to be parallel, got %v", regions.Kind)
	}
	hist, err := chart.FindState("regions.left.leftHist")
	if err != nil {
		t.Fatalf("FindState(leftHist): %v", err)
	}
	if hist.Kind != model.DeepHistory {
		t.Fatalf("expected leftHist to be deep history, got %v", hist.Kind)
	}
	if hist.HistoryDefault != "regions.left.a" {
		t.Fatalf("expected history default %q, got %q", "regions.left.a", hist.HistoryDefault)
	}
}

// TestParseExecutableContent exercises assign/raise/log/if/foreach/send
// inside an <onentry>, matching spec.md §4.3's action set.
func TestParseExecutableContent(t *testing.T) {
	src := `<scxml initial="a" datamodel="null">
		<state id="a">
			<onentry>
				<assign location="user.status" expr="'active'"/>
				<raise event="go"/>
				<log label="trace" expr="user.status"/>
				<if cond="user.status == 'active'">
					<assign location="user.flag" expr="true"/>
				<elseif cond="user.status == 'idle'"/>
					<assign location="user.flag" expr="false"/>
				<else/>
					<raise event="unknown"/>
				</if>
				<foreach array="user.list" item="it" index="ix">
					<log expr="it"/>
				</foreach>
				<send event="ping" target="#_internal" delay="2s">
					<param name="n" expr="1"/>
				</send>
			</onentry>
		</state>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if chart.Datamodel != model.NullDatamodel {
		t.Fatalf("expected null datamodel, got %v", chart.Datamodel)
	}
	a, err := chart.FindState("a")
	if err != nil {
		t.Fatalf("FindState(a): %v", err)
	}
	if len(a.OnEntry) != 6 {
		t.Fatalf("expected 6 onentry actions, got %d: %+v", len(a.OnEntry), a.OnEntry)
	}

	assign, ok := a.OnEntry[0].(model.Assign)
	if !ok || assign.Location != "user.status" || assign.Expr != "'active'" {
		t.Fatalf("unexpected first action: %+v", a.OnEntry[0])
	}
	raise, ok := a.OnEntry[1].(model.Raise)
	if !ok || raise.Event != "go" {
		t.Fatalf("unexpected second action: %+v", a.OnEntry[1])
	}
	ifAction, ok := a.OnEntry[3].(model.If)
	if !ok || len(ifAction.Branches) != 3 {
		t.Fatalf("expected a 3-branch if, got %+v", a.OnEntry[3])
	}
	if ifAction.Branches[2].Cond != "" {
		t.Fatalf("expected trailing else to have no condition, got %q", ifAction.Branches[2].Cond)
	}
	foreach, ok := a.OnEntry[4].(model.Foreach)
	if !ok || foreach.Array != "user.list" || foreach.Item != "it" || foreach.Index != "ix" {
		t.Fatalf("unexpected foreach action: %+v", a.OnEntry[4])
	}
	send, ok := a.OnEntry[5].(model.Send)
	if !ok || send.Event != "ping" || send.Target != "#_internal" || send.Delay != "2s" {
		t.Fatalf("unexpected send action: %+v", a.OnEntry[5])
	}
	if len(send.Params) != 1 || send.Params[0].Name != "n" {
		t.Fatalf("expected one send param, got %+v", send.Params)
	}
}

func TestParseAssignClearVariants(t *testing.T) {
	src := `<scxml initial="a">
		<state id="a">
			<onentry>
				<assign location="user.name" clear="true"/>
				<assign location="user.name" clear="null"/>
			</onentry>
		</state>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, _ := chart.FindState("a")
	clearTrue := a.OnEntry[0].(model.Assign)
	if !clearTrue.Clear || clearTrue.ClearNull {
		t.Fatalf("expected Clear only: %+v", clearTrue)
	}
	clearNull := a.OnEntry[1].(model.Assign)
	if !clearNull.ClearNull || clearNull.Clear {
		t.Fatalf("expected ClearNull only: %+v", clearNull)
	}
}

func TestParseDatamodelDeclarations(t *testing.T) {
	src := `<scxml initial="a">
		<datamodel>
			<data id="count" expr="0"/>
			<data id="greeting">hello</data>
		</datamodel>
		<state id="a"/>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(chart.Root.Datamodel) != 2 {
		t.Fatalf("expected 2 data declarations, got %d", len(chart.Root.Datamodel))
	}
	if chart.Root.Datamodel[0].Expr != "0" {
		t.Fatalf("expected expr %q, got %q", "0", chart.Root.Datamodel[0].Expr)
	}
	if chart.Root.Datamodel[1].Content != "hello" {
		t.Fatalf("expected content %q, got %q", "hello", chart.Root.Datamodel[1].Content)
	}
}

func TestParseDoneDataOnFinalState(t *testing.T) {
	src := `<scxml initial="work">
		<state id="work" initial="busy">
			<state id="busy">
				<transition event="finish" target="work.done"/>
			</state>
			<final id="done">
				<donedata>
					<param name="result" expr="42"/>
				</donedata>
			</final>
		</state>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fin, err := chart.FindState("work.done")
	if err != nil {
		t.Fatalf("FindState(work.done): %v", err)
	}
	if fin.Done == nil || len(fin.Done.Params) != 1 || fin.Done.Params[0].Name != "result" {
		t.Fatalf("unexpected donedata: %+v", fin.Done)
	}
}

func TestParseTransitionTypeInternal(t *testing.T) {
	src := `<scxml initial="a">
		<state id="a">
			<transition event="tick" type="internal" target="a"/>
		</state>
	</scxml>`
	chart, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, _ := chart.FindState("a")
	if a.Transitions[0].Type != model.Internal {
		t.Fatalf("expected internal transition type, got %v", a.Transitions[0].Type)
	}
}
