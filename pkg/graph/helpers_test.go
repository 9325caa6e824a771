package graph

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

type intTag struct{}
type floatTag struct{}

type fixture struct {
	*Registry
	tags  *tags.Registry
	Int   tags.Set
	Float tags.Set
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	tr := tags.NewRegistry(tags.MaxTags)
	i, err := tags.IndexOf[intTag](tr)
	require.NoError(t, err)
	f, err := tags.IndexOf[floatTag](tr)
	require.NoError(t, err)
	return &fixture{
		Registry: NewRegistry(opts...),
		tags:     tr,
		Int:      tags.SetOf(i),
		Float:    tags.SetOf(f),
	}
}

// node creates and registers a plain node.
func (f *fixture) node(t *testing.T, name string) EntityHandle {
	t.Helper()
	h := f.NewNode(name, "")
	require.False(t, h.IsZero(), "node %s", name)
	_, ok := f.RegisterNode(h)
	require.True(t, ok)
	return h
}

// port creates a port with the given tags and registers it.
func (f *fixture) port(t *testing.T, owner EntityHandle, name string, o Orientation, s tags.Set) PortHandle {
	t.Helper()
	p := f.NewPort(owner, name, o)
	require.False(t, p.IsZero(), "port %s", name)
	f.SetPortTags(p, s)
	f.RegisterPort(p)
	info, ok := f.Port(p)
	require.True(t, ok)
	require.True(t, info.Registered)
	return p
}

func (f *fixture) connect(t *testing.T, from, to PortHandle) ConnectionHandle {
	t.Helper()
	c, ok := f.CreateConnectionBetweenPorts(from, to)
	require.True(t, ok, "connect %s -> %s: %s", from, to, f.Incompatibility(from, to))
	return c
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func refs(infos []ConnectionInfo) []string {
	out := make([]string, 0, len(infos))
	for _, c := range infos {
		out = append(out, c.SourceRef.String()+"->"+c.SinkRef.String())
	}
	return out
}
