package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []MoveEvent
}

func (r *recorder) ConnectionMoved(ev MoveEvent) {
	r.events = append(r.events, ev)
}

func TestGroup_TitleAndForwardPorts(t *testing.T) {
	f := newFixture(t)
	zed := f.NewNode("zed", "Alpha")
	f.RegisterNode(zed)
	amp := f.NewNode("amp", "Beta")
	f.RegisterNode(amp)
	f.port(t, zed, "in", Input, f.Int)
	f.port(t, amp, "out", Output, f.Float)
	f.port(t, amp, "gain", Parameter, f.Float)

	g, ok := f.Group(amp, zed)
	require.True(t, ok)

	info, ok := f.Node(g)
	require.True(t, ok)
	assert.Equal(t, "zed . amp", info.Name, "members sorted by display name")
	assert.Equal(t, KindGroup, info.Kind)
	assert.ElementsMatch(t, []EntityHandle{amp, zed}, f.Members(g))

	in, ok := f.PortByName(g, Input, "zed_in")
	require.True(t, ok)
	out, ok := f.PortByName(g, Output, "amp_out")
	require.True(t, ok)
	gain, ok := f.PortByName(g, Parameter, "amp_gain")
	require.True(t, ok)

	assert.True(t, f.IsForwardPort(in))
	assert.Equal(t, f.Int, f.PortTags(in))
	assert.Equal(t, f.Float, f.PortTags(out))
	assert.Equal(t, f.Float, f.PortTags(gain))

	for _, m := range []EntityHandle{amp, zed} {
		n, _ := f.Node(m)
		assert.False(t, n.Visible, "members are hidden")
	}
	assert.Len(t, f.Forwards(g), 3)
}

func TestGroup_Rejections(t *testing.T) {
	f := newFixture(t)
	_, ok := f.Group()
	assert.False(t, ok)

	loose := f.NewNode("loose", "")
	_, ok = f.Group(loose)
	assert.False(t, ok, "members must be registered")

	g := f.NewGroup("g", "")
	f.RegisterGroup(g)
	_, ok = f.Group(g)
	assert.False(t, ok, "groups do not nest")
	assert.Len(t, f.AllGroups(), 1)
}

func TestGroupUngroup_RestoresTopology(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	ext := f.node(t, "ext")
	aOut := f.port(t, a, "out", Output, f.Int)
	bIn := f.port(t, b, "in", Input, f.Int)
	bOut := f.port(t, b, "out", Output, f.Int)
	extIn := f.port(t, ext, "in", Input, f.Int)
	f.connect(t, aOut, bIn)
	f.connect(t, bOut, extIn)

	before := refs(f.Snapshot().Connections())

	g, ok := f.Group(a, b)
	require.True(t, ok)
	forwards := f.Forwards(g)
	require.NotEmpty(t, forwards)
	assert.Equal(t, before, refs(f.Snapshot().Connections()), "grouping does not move connections")

	require.True(t, f.Ungroup(g))

	assert.Equal(t, before, refs(f.Snapshot().Connections()))
	assert.Empty(t, f.AllGroups())
	for _, e := range forwards {
		assert.Empty(t, f.ForwardedPortsFrom(e.Forward))
	}
	for _, m := range []EntityHandle{a, b} {
		n, _ := f.Node(m)
		assert.True(t, n.Visible)
		assert.Empty(t, f.GroupsOf(m))
	}
	assert.False(t, f.ArePortsCompatible(aOut, extIn), "ext.in is still taken")
}

func TestGroup_ConnectThroughForwardPort(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	ext := f.node(t, "ext")
	aOut := f.port(t, a, "out", Output, f.Int)
	extIn := f.port(t, ext, "in", Input, f.Int)

	g, ok := f.Group(a)
	require.True(t, ok)
	fwd, ok := f.PortByName(g, Output, "a_out")
	require.True(t, ok)

	assert.Equal(t, ReasonHidden, f.Incompatibility(aOut, extIn), "member ports are hidden")

	c := f.connect(t, fwd, extIn)
	info, ok := f.Connection(c)
	require.True(t, ok)
	assert.Equal(t, aOut, info.Source, "the connection lands on the concrete port")
	assert.Equal(t, PortRef{Owner: "a", Port: "out"}, info.SourceRef)

	assert.Equal(t, []ConnectionHandle{c}, f.Connections(fwd))
	assert.True(t, f.HasConnectionTo(fwd, extIn))
	assert.True(t, f.HasConnectionTo(extIn, fwd))

	_, ok = f.CreateConnectionBetweenPorts(fwd, extIn)
	assert.False(t, ok)
}

func TestGroup_ParameterStateFollowsConnections(t *testing.T) {
	f := newFixture(t)
	src := f.node(t, "src")
	amp := f.node(t, "amp")
	out := f.port(t, src, "out", Output, f.Float)
	gain := f.port(t, amp, "gain", Parameter, f.Float)

	g, ok := f.Group(amp)
	require.True(t, ok)
	fwd, ok := f.PortByName(g, Parameter, "amp_gain")
	require.True(t, ok)

	c := f.connect(t, out, fwd)
	p, _ := f.Port(fwd)
	assert.False(t, p.Enabled, "a connected parameter is disabled")
	p, _ = f.Port(gain)
	assert.False(t, p.Enabled)
	assert.Equal(t, ReasonDisabled, f.Incompatibility(out, fwd))

	f.DeleteConnection(c)
	p, _ = f.Port(fwd)
	assert.True(t, p.Enabled)
}

func TestForward_Taken(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	in := f.port(t, a, "in", Input, f.Int)
	g := f.NewGroup("g", "")
	f.RegisterGroup(g)
	f1 := f.port(t, g, "f1", Input, 0)
	f2 := f.port(t, g, "f2", Input, 0)

	f.RegisterForwardInput(g, f1, in)
	f.RegisterForwardInput(g, f2, in)
	f.RegisterForwardInput(g, f1, in)

	assert.Equal(t, []PortHandle{in}, f.ForwardedPortsFrom(f1))
	assert.Empty(t, f.ForwardedPortsFrom(f2))
	assert.Equal(t, []PortHandle{f1}, f.PortsForwardedTo(in))
	assert.False(t, f.IsForwardPort(f2))
}

func TestForward_Rejections(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	in := f.port(t, a, "in", Input, f.Int)
	out := f.port(t, a, "out", Output, f.Int)
	g := f.NewGroup("g", "")
	f.RegisterGroup(g)
	fIn := f.port(t, g, "f", Input, 0)

	f.RegisterForwardOutput(g, fIn, out)
	f.RegisterForwardInput(a, fIn, in)
	f.RegisterForwardInput(g, in, in)

	assert.Empty(t, f.Forwards(g))
}

func TestForward_TagsLastWriteWins(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	aIn := f.port(t, a, "in", Input, f.Int)
	bIn := f.port(t, b, "in", Input, f.Float)
	g := f.NewGroup("g", "")
	f.RegisterGroup(g)
	fwd := f.port(t, g, "both", Input, 0)

	f.RegisterForwardInput(g, fwd, aIn)
	assert.Equal(t, f.Int, f.PortTags(fwd))
	f.RegisterForwardInput(g, fwd, bIn)
	assert.Equal(t, f.Float, f.PortTags(fwd))
	assert.Equal(t, []PortHandle{aIn, bIn}, f.ForwardedPortsFrom(fwd))
}

func TestForward_DroppedWithConcretePort(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	in := f.port(t, a, "in", Input, f.Int)
	g := f.NewGroup("g", "")
	f.RegisterGroup(g)
	fwd := f.port(t, g, "f", Input, 0)
	f.RegisterForwardInput(g, fwd, in)

	f.RemovePort(in)

	assert.False(t, f.IsForwardPort(fwd))
	assert.Empty(t, f.Forwards(g))
}

func TestUnregisterForwardPort(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	in := f.port(t, a, "in", Input, f.Int)
	g := f.NewGroup("g", "")
	f.RegisterGroup(g)
	fwd := f.port(t, g, "f", Input, 0)
	f.RegisterForwardInput(g, fwd, in)

	f.UnregisterForwardPort(g, fwd)

	assert.Empty(t, f.ForwardedPortsFrom(fwd))
	assert.Equal(t, []PortHandle{fwd}, f.RegisteredPorts(g, Input), "the port stays registered")
}

func TestNodeMoved_GroupProxyRules(t *testing.T) {
	rec := &recorder{}
	f := newFixture(t, WithGeometryListener(rec))
	x := f.node(t, "x")
	a := f.node(t, "a")
	y := f.node(t, "y")
	xOut := f.port(t, x, "out", Output, f.Int)
	aIn := f.port(t, a, "in", Input, f.Int)
	aOut := f.port(t, a, "out", Output, f.Int)
	yIn := f.port(t, y, "in", Input, f.Int)
	cIn := f.connect(t, xOut, aIn)
	cOut := f.connect(t, aOut, yIn)

	g, ok := f.Group(a)
	require.True(t, ok)
	fIn, _ := f.PortByName(g, Input, "a_in")
	fOut, _ := f.PortByName(g, Output, "a_out")

	rec.events = nil
	events := f.NodeMoved(g)

	want := []MoveEvent{
		{Connection: cIn, Port: aIn, SinkSide: true, PositionFrom: fIn, BoundsFrom: aIn},
		{Connection: cOut, Port: aOut, SinkSide: false, PositionFrom: fOut, BoundsFrom: fOut},
	}
	assert.Equal(t, want, events)
	assert.Equal(t, want, rec.events)

	rec.events = nil
	assert.Empty(t, f.NodeMoved(a), "a hidden member emits nothing")
	assert.Empty(t, rec.events)

	events = f.NodeMoved(x)
	require.Len(t, events, 1)
	assert.Equal(t, MoveEvent{Connection: cIn, Port: xOut, PositionFrom: xOut, BoundsFrom: xOut}, events[0])
}

func TestRemoveNode_GroupRestoresMembers(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	ext := f.node(t, "ext")
	aOut := f.port(t, a, "out", Output, f.Int)
	bIn := f.port(t, b, "in", Input, f.Int)
	extIn := f.port(t, ext, "in", Input, f.Int)
	f.connect(t, aOut, bIn)

	g, ok := f.Group(a, b)
	require.True(t, ok)
	fwd, ok := f.PortByName(g, Output, "a_out")
	require.True(t, ok)

	f.RemoveNode(g)

	assert.Empty(t, f.AllGroups())
	assert.Empty(t, f.GroupsOf(a))
	_, ok = f.Port(fwd)
	assert.False(t, ok, "forward ports are released")
	for _, m := range []EntityHandle{a, b} {
		info, ok := f.Node(m)
		require.True(t, ok)
		assert.True(t, info.Visible, "%s visible again", info.Name)
		assert.True(t, info.Registered)
	}
	assert.True(t, f.HasConnectionTo(aOut, bIn), "member connections survive")

	assert.Equal(t, ReasonNone, f.Incompatibility(aOut, extIn))
	f.connect(t, aOut, extIn)
}

func TestRelease_GroupRestoresMembers(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	f.port(t, a, "out", Output, f.Int)

	g, ok := f.Group(a)
	require.True(t, ok)
	f.Release(g)

	info, _ := f.Node(a)
	assert.True(t, info.Visible)
	assert.Empty(t, f.GroupsOf(a))
	assert.Empty(t, f.AllGroups())
}

func TestUngroup_OverlappingMembership(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	c := f.node(t, "c")

	g1, ok := f.Group(a, b)
	require.True(t, ok)
	g2, ok := f.Group(a, c)
	require.True(t, ok)
	assert.ElementsMatch(t, []EntityHandle{g1, g2}, f.GroupsOf(a))

	visible := func(h EntityHandle) bool {
		info, _ := f.Node(h)
		return info.Visible
	}

	require.True(t, f.Ungroup(g1))
	assert.False(t, visible(a), "a is still hidden by the second group")
	assert.True(t, visible(b))
	assert.False(t, visible(c))

	f.RemoveNode(g2)
	assert.True(t, visible(a))
	assert.True(t, visible(c))
}

func TestFindConnection_ThroughForwardPort(t *testing.T) {
	f := newFixture(t)
	x := f.node(t, "x")
	a := f.node(t, "a")
	b := f.node(t, "b")
	xOut := f.port(t, x, "o", Output, f.Int)
	f.port(t, a, "i", Input, f.Int)
	f.port(t, b, "i", Input, f.Int)

	g, ok := f.Group(a, b)
	require.True(t, ok)
	fwd, ok := f.PortByName(g, Input, "a_i")
	require.True(t, ok)
	c := f.connect(t, xOut, fwd)

	found, ok := f.FindConnection(xOut, "a_i", "a . b")
	require.True(t, ok)
	assert.Equal(t, c, found)
	assert.True(t, f.HasConnectionToName(xOut, "a_i", "a . b"))
	_, ok = f.FindConnection(xOut, "b_i", "a . b")
	assert.False(t, ok)

	between, ok := f.ConnectionBetween(fwd, xOut)
	require.True(t, ok)
	assert.Equal(t, c, between)
}
