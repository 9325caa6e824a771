package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivation_CascadesOverOutputs(t *testing.T) {
	f := newFixture(t)
	up := f.node(t, "up")
	a := f.node(t, "a")
	b := f.node(t, "b")
	c := f.node(t, "c")
	inbound := f.connect(t, f.port(t, up, "out", Output, f.Int), f.port(t, a, "in", Input, f.Int))
	aOut := f.port(t, a, "out", Output, f.Int)
	toB := f.connect(t, aOut, f.port(t, b, "in", Input, f.Int))
	toC := f.connect(t, aOut, f.port(t, c, "in", Input, f.Int))

	f.ActivateNode(a)

	assert.True(t, f.IsNodeActive(a))
	for _, h := range []ConnectionHandle{toB, toC} {
		info, _ := f.Connection(h)
		assert.True(t, info.Active)
	}
	info, _ := f.Connection(inbound)
	assert.False(t, info.Active, "inputs are not touched")
	assert.False(t, f.IsNodeActive(b))

	f.DeactivateNode(a)
	assert.False(t, f.IsNodeActive(a))
	info, _ = f.Connection(toB)
	assert.False(t, info.Active)
}

func TestCreateConnection_ActivatesSinkOwner(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	c := f.node(t, "c")
	bOut := f.port(t, b, "out", Output, f.Int)
	downstream := f.connect(t, bOut, f.port(t, c, "in", Input, f.Int))

	_, ok := f.CreateConnection(f.port(t, a, "out", Output, f.Int), f.port(t, b, "in", Input, f.Int), true)
	require.True(t, ok)

	assert.True(t, f.IsNodeActive(b))
	info, _ := f.Connection(downstream)
	assert.True(t, info.Active)

	_, ok = f.CreateConnection(f.port(t, a, "out2", Output, f.Float), f.port(t, b, "in2", Input, f.Float), false)
	require.True(t, ok)
	assert.False(t, f.IsNodeActive(b))
}

func TestRemovePort_TearsDownConnections(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	out := f.port(t, a, "out", Output, f.Int)
	in := f.port(t, b, "in", Input, f.Int)
	gain := f.port(t, b, "gain", Parameter, f.Int)
	f.connect(t, out, in)
	f.connect(t, out, gain)

	p, _ := f.Port(gain)
	require.False(t, p.Enabled)

	f.RemovePort(out)

	assert.Empty(t, f.AllConnections())
	assert.False(t, f.HasConnection(in))
	_, ok := f.Port(out)
	assert.False(t, ok)
	p, _ = f.Port(gain)
	assert.True(t, p.Enabled, "the peer refreshes its parameters")
}

func TestRemoveNode(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	in := f.port(t, b, "in", Input, f.Int)
	f.connect(t, f.port(t, a, "out", Output, f.Int), in)

	f.RemoveNode(a)

	assert.Equal(t, []EntityHandle{b}, f.AllNodes())
	assert.False(t, f.HasConnection(in))
	_, ok := f.Node(a)
	assert.False(t, ok)
}

func TestDeleteConnection(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	out := f.port(t, a, "out", Output, f.Int)
	in := f.port(t, b, "in", Input, f.Int)
	c := f.connect(t, out, in)

	info, _ := f.Connection(c)
	found, ok := f.FindConnectionByID(info.ID)
	require.True(t, ok)
	assert.Equal(t, c, found)
	found, ok = f.FindConnection(out, "in", "b")
	require.True(t, ok)
	assert.Equal(t, c, found)

	f.DeleteConnection(c)

	_, ok = f.Connection(c)
	assert.False(t, ok)
	assert.True(t, f.ArePortsCompatible(out, in), "the sink is free again")

	f.DeleteConnection(c)
	assert.Empty(t, f.AllConnections())
}

func TestRegisterConnection_Rules(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	out := f.port(t, a, "out", Output, f.Int)
	in := f.port(t, b, "in", Input, f.Float)
	out2 := f.port(t, b, "out", Output, f.Int)

	c, ok := f.RegisterConnection(in, out, true)
	require.True(t, ok, "either argument order")
	info, _ := f.Connection(c)
	assert.Equal(t, out, info.Source)
	assert.Equal(t, in, info.Sink)
	assert.True(t, info.Active)

	_, ok = f.RegisterConnection(out, out2, false)
	assert.False(t, ok, "two outputs cannot be classified")

	f.UnregisterOutput(a, out)
	_, ok = f.RegisterConnection(out, in, false)
	assert.False(t, ok, "unregistered ports are refused")
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	a := f.node(t, "a")
	b := f.node(t, "b")
	out := f.port(t, a, "out", Output, f.Int)
	in := f.port(t, b, "in", Input, f.Int)
	c := f.connect(t, out, in)
	g, ok := f.Group(b)
	require.True(t, ok)

	s := f.Snapshot()

	require.Len(t, s.Entities(), 3)
	assert.Equal(t, KindGroup, s.Entities()[2].Kind)
	info, ok := s.Entity(a)
	require.True(t, ok)
	assert.Equal(t, "a", info.Name)

	assert.Len(t, s.Ports(a), 1)
	assert.Equal(t, []ConnectionHandle{c}, s.Attached(out))
	assert.Equal(t, []ConnectionHandle{c}, s.Attached(in))
	assert.Len(t, s.Connections(), 1)
	assert.Equal(t, []EntityHandle{b}, s.Members(g))
	require.Len(t, s.Forwards(), 1)
	assert.Equal(t, []PortHandle{in}, s.Forwards()[0].Targets)

	fwd := s.Forwards()[0].Forward
	assert.Empty(t, s.Attached(fwd), "forwarded connections are not copied onto the forward port")

	f.RemoveNode(a)
	assert.Len(t, s.Connections(), 1, "a snapshot does not change")
}
