package graphql

import (
	"fmt"
	"math"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

// Resolvers read from a snapshot taken once per root field, so a query never
// observes a half-applied mutation.

type nodeView struct {
	s    *graph.Snapshot
	info graph.NodeInfo
}

type portView struct {
	s    *graph.Snapshot
	info graph.PortInfo
}

type compatibility struct {
	Compatible bool   `json:"compatible"`
	Reason     string `json:"reason"`
}

type schemaBuilder struct {
	r  *graph.Registry
	tr *tags.Registry
}

// GenerateSchema builds the read-only query schema over r. Tag names are
// resolved through tr; when tr is nil tags are reported by index.
func GenerateSchema(r *graph.Registry, tr *tags.Registry) (graphql.Schema, error) {
	if r == nil {
		return graphql.Schema{}, fmt.Errorf("registry is required")
	}
	b := &schemaBuilder{r: r, tr: tr}

	connectionType := createConnectionType()
	portType := b.createPortType(connectionType)
	nodeType := b.createNodeType(portType)

	compatibilityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Compatibility",
		Fields: graphql.Fields{
			"compatible": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"reason":     &graphql.Field{Type: graphql.String},
		},
	})

	queryFields := graphql.Fields{
		"health": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return "ok", nil
			},
		},
		"nodes": &graphql.Field{
			Type:    graphql.NewList(nodeType),
			Resolve: b.entitiesResolver(graph.KindNode),
		},
		"groups": &graphql.Field{
			Type:    graphql.NewList(nodeType),
			Resolve: b.entitiesResolver(graph.KindGroup),
		},
		"node": &graphql.Field{
			Type: nodeType,
			Args: graphql.FieldConfigArgument{
				"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: b.resolveNode,
		},
		"port": &graphql.Field{
			Type: portType,
			Args: graphql.FieldConfigArgument{
				"owner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: b.resolvePort,
		},
		"connections": &graphql.Field{
			Type: graphql.NewList(connectionType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.r.Snapshot().Connections(), nil
			},
		},
		"compatible": &graphql.Field{
			Type: compatibilityType,
			Args: graphql.FieldConfigArgument{
				"fromOwner": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"fromPort":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"toOwner":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"toPort":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: b.resolveCompatible,
		},
		"tags": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if b.tr == nil {
					return []string{}, nil
				}
				return b.tr.Names(tags.Set(math.MaxUint64)), nil
			},
		},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: queryFields,
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}

	return schema, nil
}

func createConnectionType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Connection",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(graph.ConnectionInfo).ID.String(), nil
				},
			},
			"source": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(graph.ConnectionInfo).SourceRef.String(), nil
				},
			},
			"sink": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(graph.ConnectionInfo).SinkRef.String(), nil
				},
			},
			"active": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(graph.ConnectionInfo).Active, nil
				},
			},
		},
	})
}

func (b *schemaBuilder) createPortType(connectionType *graphql.Object) *graphql.Object {
	info := func(p graphql.ResolveParams) graph.PortInfo {
		return p.Source.(portView).info
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Port",
		Fields: graphql.Fields{
			"owner": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).OwnerName, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Name, nil
				},
			},
			"displayName": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).DisplayName, nil
				},
			},
			"orientation": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Orientation.String(), nil
				},
			},
			"tags": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return b.tagNames(info(p).Tags), nil
				},
			},
			"visible": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Visible, nil
				},
			},
			"enabled": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Enabled, nil
				},
			},
			"connections": &graphql.Field{
				Type: graphql.NewList(connectionType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v := p.Source.(portView)
					var out []graph.ConnectionInfo
					for _, c := range v.s.Attached(v.info.Handle) {
						if ci, ok := v.s.Connection(c); ok {
							out = append(out, ci)
						}
					}
					return out, nil
				},
			},
		},
	})
}

func (b *schemaBuilder) createNodeType(portType *graphql.Object) *graphql.Object {
	info := func(p graphql.ResolveParams) graph.NodeInfo {
		return p.Source.(nodeView).info
	}

	nodeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return strconv.FormatUint(info(p).ID, 10), nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Name, nil
				},
			},
			"displayName": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).DisplayName, nil
				},
			},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Kind.String(), nil
				},
			},
			"active": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Active, nil
				},
			},
			"visible": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return info(p).Visible, nil
				},
			},
			"ports": &graphql.Field{
				Type: graphql.NewList(portType),
				Args: graphql.FieldConfigArgument{
					"orientation": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					v := p.Source.(nodeView)
					filter, hasFilter := p.Args["orientation"].(string)
					var want graph.Orientation
					if hasFilter {
						o, ok := graph.ParseOrientation(filter)
						if !ok {
							return nil, fmt.Errorf("unknown orientation %q", filter)
						}
						want = o
					}
					var out []portView
					for _, pi := range v.s.Ports(v.info.Handle) {
						if hasFilter && pi.Orientation != want {
							continue
						}
						out = append(out, portView{s: v.s, info: pi})
					}
					return out, nil
				},
			},
		},
	})

	// members refers back to Node, so it is added once the type exists
	nodeType.AddFieldConfig("members", &graphql.Field{
		Type: graphql.NewList(nodeType),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			v := p.Source.(nodeView)
			var out []nodeView
			for _, m := range v.s.Members(v.info.Handle) {
				if mi, ok := v.s.Entity(m); ok {
					out = append(out, nodeView{s: v.s, info: mi})
				}
			}
			return out, nil
		},
	})

	return nodeType
}

func (b *schemaBuilder) entitiesResolver(kind graph.Kind) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		s := b.r.Snapshot()
		var out []nodeView
		for _, e := range s.Entities() {
			if e.Kind == kind {
				out = append(out, nodeView{s: s, info: e})
			}
		}
		return out, nil
	}
}

func (b *schemaBuilder) resolveNode(p graphql.ResolveParams) (any, error) {
	name, _ := p.Args["name"].(string)
	s := b.r.Snapshot()
	for _, e := range s.Entities() {
		if e.Name == name {
			return nodeView{s: s, info: e}, nil
		}
	}
	return nil, nil
}

func (b *schemaBuilder) resolvePort(p graphql.ResolveParams) (any, error) {
	owner, _ := p.Args["owner"].(string)
	name, _ := p.Args["name"].(string)
	h, ok := b.r.ResolvePort(owner, name)
	if !ok {
		return nil, nil
	}
	s := b.r.Snapshot()
	pi, ok := s.Port(h)
	if !ok {
		return nil, nil
	}
	return portView{s: s, info: pi}, nil
}

func (b *schemaBuilder) resolveCompatible(p graphql.ResolveParams) (any, error) {
	from, err := b.lookupPort(p.Args["fromOwner"], p.Args["fromPort"])
	if err != nil {
		return nil, err
	}
	to, err := b.lookupPort(p.Args["toOwner"], p.Args["toPort"])
	if err != nil {
		return nil, err
	}
	reason := b.r.Incompatibility(from, to)
	return compatibility{
		Compatible: reason == graph.ReasonNone,
		Reason:     string(reason),
	}, nil
}

func (b *schemaBuilder) lookupPort(owner, name any) (graph.PortHandle, error) {
	o, _ := owner.(string)
	n, _ := name.(string)
	h, ok := b.r.ResolvePort(o, n)
	if !ok {
		return graph.PortHandle{}, fmt.Errorf("port %s not found", graph.PortRef{Owner: o, Port: n})
	}
	return h, nil
}

func (b *schemaBuilder) tagNames(s tags.Set) []string {
	if b.tr != nil {
		return b.tr.Names(s)
	}
	out := make([]string, 0, s.Count())
	for _, idx := range s.Indices() {
		out = append(out, strconv.Itoa(idx))
	}
	return out
}
