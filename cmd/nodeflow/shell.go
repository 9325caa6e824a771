package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-nodeflow/pkg/constraints"
	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
	"github.com/dd0wney/cluso-nodeflow/pkg/validation"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")),
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")),
		success: r.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true),
		err: r.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
		warn: r.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
	}
}

// Shell is the interactive command surface over one registry.
type Shell struct {
	reg       *graph.Registry
	tags      *tags.Registry
	apply     *tags.Applicator
	validator *constraints.Validator
	out       io.Writer
	style     styles
}

func NewShell(reg *graph.Registry, tr *tags.Registry, apply *tags.Applicator, out io.Writer) *Shell {
	return &Shell{
		reg:       reg,
		tags:      tr,
		apply:     apply,
		validator: constraints.NewDefaultValidator(),
		out:       out,
		style:     newStyles(out),
	}
}

// Run reads commands from in until EOF or exit.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.style.title.Render("nodeflow")+"> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if s.Exec(scanner.Text()) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		s.fail("%v", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "exit", "quit":
		return true
	case "help":
		s.help()
	case "node":
		s.cmdNode(args)
	case "port":
		s.cmdPort(args)
	case "tag":
		s.cmdTag(args)
	case "deftag":
		s.cmdDefTag(args)
	case "tags":
		fmt.Fprintln(s.out, strings.Join(s.apply.Names(), " "))
	case "connect":
		s.cmdConnect(args)
	case "disconnect":
		s.cmdDisconnect(args)
	case "compat":
		s.cmdCompat(args)
	case "group":
		s.cmdGroup(args)
	case "ungroup":
		s.cmdUngroup(args)
	case "rm":
		s.cmdRemove(args)
	case "activate", "deactivate":
		s.cmdActivate(cmd == "activate", args)
	case "move":
		s.cmdMove(args)
	case "ls":
		s.cmdList(args)
	case "check":
		s.cmdCheck()
	default:
		s.fail("unknown command %q (type 'help')", cmd)
	}
	return false
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, s.style.header.Render("Commands"))
	fmt.Fprintln(s.out, `  node <name> [display]                  create a node
  port <owner> <in|out|param> <name> [tag...]
                                         add a port to a node
  tag <owner> <port> [tag|-tag...]       show, add or remove port tags
  deftag <name>...                       make new tag names available
  tags                                   list tag names
  connect <owner> <port> <owner> <port>  connect two compatible ports
  disconnect <owner> <port> <owner> <port>
  compat <owner> <port> <owner> <port>   explain whether two ports fit
  group <node>...                        group nodes
  ungroup <group>                        dissolve a group
  rm <name> | rm <owner> <port>          remove a node, group or port
  activate|deactivate <name>             toggle a node
  move <name>                            print connection refresh events
  ls [name]                              list nodes and groups
  check                                  validate the graph
  exit                                   quit

Quote names containing spaces, e.g. ungroup "amp . osc".`)
}

func (s *Shell) ok(format string, args ...any) {
	fmt.Fprintln(s.out, s.style.success.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (s *Shell) fail(format string, args ...any) {
	fmt.Fprintln(s.out, s.style.err.Render("✗")+" "+fmt.Sprintf(format, args...))
}

func (s *Shell) usage(u string) {
	fmt.Fprintln(s.out, s.style.dim.Render("usage: "+u))
}

// entity prefers a group over the hidden member whose name it shares.
func (s *Shell) entity(name string) (graph.EntityHandle, bool) {
	if g, ok := s.reg.FindGroup(name); ok {
		return g, true
	}
	h, ok := s.reg.FindEntity(name)
	if !ok {
		s.fail("no node or group named %q", name)
	}
	return h, ok
}

func (s *Shell) port(owner, name string) (graph.PortHandle, bool) {
	p, ok := s.reg.ResolvePort(owner, name)
	if !ok {
		s.fail("no port %s", graph.PortRef{Owner: owner, Port: name})
	}
	return p, ok
}

func (s *Shell) portPair(args []string) (graph.PortHandle, graph.PortHandle, bool) {
	a, ok := s.port(args[0], args[1])
	if !ok {
		return a, graph.PortHandle{}, false
	}
	b, ok := s.port(args[2], args[3])
	return a, b, ok
}

func (s *Shell) cmdNode(args []string) {
	if len(args) < 1 || len(args) > 2 {
		s.usage("node <name> [display]")
		return
	}
	req := validation.NodeRequest{Name: args[0]}
	if len(args) == 2 {
		req.DisplayName = args[1]
	}
	if err := validation.ValidateNodeRequest(&req); err != nil {
		s.fail("%v", err)
		return
	}
	if _, exists := s.reg.FindEntity(args[0]); exists {
		s.fail("%q already exists", args[0])
		return
	}

	var id uint64
	var ok bool
	s.reg.Update(func(tx *graph.Tx) {
		h := tx.NewNode(req.Name, req.DisplayName)
		if h.IsZero() {
			return
		}
		if id, ok = tx.RegisterNode(h); !ok {
			tx.Release(h)
		}
	})
	if !ok {
		s.fail("node %q rejected", args[0])
		return
	}
	s.ok("node %s (id %d)", args[0], id)
}

func (s *Shell) cmdPort(args []string) {
	if len(args) < 3 {
		s.usage("port <owner> <in|out|param> <name> [tag...]")
		return
	}
	o, ok := graph.ParseOrientation(strings.ToLower(args[1]))
	if !ok {
		s.fail("unknown orientation %q", args[1])
		return
	}
	req := validation.PortRequest{Owner: args[0], Name: args[2], Orientation: strings.ToLower(args[1]), Tags: args[3:]}
	if err := validation.ValidatePortRequest(&req); err != nil {
		s.fail("%v", err)
		return
	}
	owner, ok := s.entity(args[0])
	if !ok {
		return
	}
	for _, name := range args[3:] {
		if _, known := s.apply.Key(name); !known {
			s.fail("unknown tag %q", name)
			return
		}
	}

	var registered bool
	s.reg.Update(func(tx *graph.Tx) {
		p := tx.NewPort(owner, args[2], o)
		if p.IsZero() {
			return
		}
		tx.UpdatePortTags(p, func(t *tags.Taggable) {
			for _, name := range args[3:] {
				s.apply.Apply(name, t)
			}
		})
		tx.RegisterPort(p)
		if info, ok := tx.Port(p); ok && info.Registered {
			registered = true
			return
		}
		tx.ReleasePort(p)
	})
	if !registered {
		s.fail("port %s rejected", graph.PortRef{Owner: args[0], Port: args[2]})
		return
	}
	s.ok("%s port %s", o, graph.PortRef{Owner: args[0], Port: args[2]})
}

func (s *Shell) cmdTag(args []string) {
	if len(args) < 2 {
		s.usage("tag <owner> <port> [tag|-tag...]")
		return
	}
	p, ok := s.port(args[0], args[1])
	if !ok {
		return
	}

	var add, remove []int
	for _, arg := range args[2:] {
		name, drop := strings.CutPrefix(arg, "-")
		key, known := s.apply.Key(name)
		idx, live := s.tags.Peek(key)
		if !known || !live {
			s.fail("unknown tag %q", name)
			return
		}
		if drop {
			remove = append(remove, idx)
		} else {
			add = append(add, idx)
		}
	}
	if len(add)+len(remove) > 0 {
		s.reg.UpdatePortTags(p, func(t *tags.Taggable) {
			t.AddTags(add...)
			t.RemoveTags(remove...)
		})
	}

	ref := graph.PortRef{Owner: args[0], Port: args[1]}
	fmt.Fprintf(s.out, "%s [%s]\n", ref, strings.Join(s.tags.Names(s.reg.PortTags(p)), " "))
}

func (s *Shell) cmdDefTag(args []string) {
	if len(args) == 0 {
		s.usage("deftag <name>...")
		return
	}
	keys := make([]tags.Key, 0, len(args))
	for _, name := range args {
		if err := validation.ValidateName(name); err != nil {
			s.fail("%v", err)
			return
		}
		keys = append(keys, tags.NameKey(name))
	}
	if err := s.apply.Register(keys...); err != nil {
		var terr *tags.Error
		if errors.As(err, &terr) && tags.IsCapacityExceeded(err) {
			s.fail("tag %q does not fit: %d of %d tags in use", terr.Tag, s.tags.Count(), terr.Capacity)
			return
		}
		s.fail("%v", err)
		return
	}
	s.ok("tags %s", strings.Join(args, " "))
}

func (s *Shell) cmdConnect(args []string) {
	if len(args) != 4 {
		s.usage("connect <owner> <port> <owner> <port>")
		return
	}
	from, to, ok := s.portPair(args)
	if !ok {
		return
	}

	var reason graph.Reason
	s.reg.Update(func(tx *graph.Tx) {
		reason = tx.Incompatibility(from, to)
		if reason == graph.ReasonNone && tx.HasConnectionTo(from, to) {
			reason = graph.ReasonDuplicate
		}
		if _, created := tx.CreateConnectionBetweenPorts(from, to); !created && reason == graph.ReasonNone {
			reason = graph.ReasonNotRegistered
		}
	})

	a := graph.PortRef{Owner: args[0], Port: args[1]}
	b := graph.PortRef{Owner: args[2], Port: args[3]}
	if reason != graph.ReasonNone {
		s.fail("cannot connect %s to %s: %s", a, b, reason)
		return
	}
	s.ok("%s -> %s", a, b)
}

func (s *Shell) cmdDisconnect(args []string) {
	if len(args) != 4 {
		s.usage("disconnect <owner> <port> <owner> <port>")
		return
	}
	from, ok := s.port(args[0], args[1])
	if !ok {
		return
	}

	var found bool
	s.reg.Update(func(tx *graph.Tx) {
		var c graph.ConnectionHandle
		if c, found = tx.FindConnection(from, args[3], args[2]); found {
			tx.DeleteConnection(c)
		}
	})
	a := graph.PortRef{Owner: args[0], Port: args[1]}
	b := graph.PortRef{Owner: args[2], Port: args[3]}
	if !found {
		s.fail("%s is not connected to %s", a, b)
		return
	}
	s.ok("disconnected %s from %s", a, b)
}

func (s *Shell) cmdCompat(args []string) {
	if len(args) != 4 {
		s.usage("compat <owner> <port> <owner> <port>")
		return
	}
	a, b, ok := s.portPair(args)
	if !ok {
		return
	}
	if reason := s.reg.Incompatibility(a, b); reason != graph.ReasonNone {
		fmt.Fprintln(s.out, s.style.warn.Render("incompatible: "+string(reason)))
		return
	}
	fmt.Fprintln(s.out, s.style.success.Render("compatible"))
}

func (s *Shell) cmdGroup(args []string) {
	if len(args) == 0 {
		s.usage("group <node>...")
		return
	}
	members := make([]graph.EntityHandle, 0, len(args))
	for _, name := range args {
		h, ok := s.reg.FindNode(name)
		if !ok {
			s.fail("no node named %q", name)
			return
		}
		members = append(members, h)
	}
	g, ok := s.reg.Group(members...)
	if !ok {
		s.fail("group rejected")
		return
	}
	info, _ := s.reg.Node(g)
	s.ok("group %q", info.Name)
}

func (s *Shell) cmdUngroup(args []string) {
	if len(args) != 1 {
		s.usage("ungroup <group>")
		return
	}
	g, ok := s.reg.FindGroup(args[0])
	if !ok || !s.reg.Ungroup(g) {
		s.fail("no group named %q", args[0])
		return
	}
	s.ok("ungrouped %q", args[0])
}

func (s *Shell) cmdRemove(args []string) {
	switch len(args) {
	case 1:
		h, ok := s.entity(args[0])
		if !ok {
			return
		}
		s.reg.RemoveNode(h)
		s.ok("removed %s", args[0])
	case 2:
		p, ok := s.port(args[0], args[1])
		if !ok {
			return
		}
		s.reg.RemovePort(p)
		s.ok("removed %s", graph.PortRef{Owner: args[0], Port: args[1]})
	default:
		s.usage("rm <name> | rm <owner> <port>")
	}
}

func (s *Shell) cmdActivate(on bool, args []string) {
	if len(args) != 1 {
		s.usage("activate|deactivate <name>")
		return
	}
	h, ok := s.entity(args[0])
	if !ok {
		return
	}
	if on {
		s.reg.ActivateNode(h)
	} else {
		s.reg.DeactivateNode(h)
	}
	s.ok("%s active=%t", args[0], s.reg.IsNodeActive(h))
}

func (s *Shell) cmdMove(args []string) {
	if len(args) != 1 {
		s.usage("move <name>")
		return
	}
	h, ok := s.entity(args[0])
	if !ok {
		return
	}

	s.reg.View(func(tx *graph.Tx) {
		ref := func(p graph.PortHandle) string {
			info, _ := tx.Port(p)
			return info.Ref().String()
		}
		for _, ev := range tx.NodeMoved(h) {
			side := "source"
			if ev.SinkSide {
				side = "sink"
			}
			fmt.Fprintf(s.out, "%s %s position=%s bounds=%s\n",
				side, ref(ev.Port), ref(ev.PositionFrom), ref(ev.BoundsFrom))
		}
	})
}

func (s *Shell) cmdList(args []string) {
	snap := s.reg.Snapshot()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ENTITY", "PORT", "ORIENTATION", "TAGS", "CONNECTED TO")

	rows := 0
	for _, e := range snap.Entities() {
		if len(args) > 0 && e.Name != args[0] {
			continue
		}
		label := e.Name
		if e.Kind == graph.KindGroup {
			label += " (group)"
		}
		if e.Active {
			label += " *"
		}
		if !e.Visible {
			label += " [hidden]"
		}

		ports := snap.Ports(e.Handle)
		if len(ports) == 0 {
			t.Row(label, "", "", "", "")
			rows++
			continue
		}
		for _, p := range ports {
			var peers []string
			for _, c := range snap.Attached(p.Handle) {
				ci, ok := snap.Connection(c)
				if !ok {
					continue
				}
				peer := ci.SinkRef
				if ci.Sink == p.Handle {
					peer = ci.SourceRef
				}
				peers = append(peers, peer.String())
			}
			name := p.Name
			if !p.Enabled {
				name += " (disabled)"
			}
			t.Row(label, name, p.Orientation.String(),
				strings.Join(s.tags.Names(p.Tags), " "), strings.Join(peers, ", "))
			label = ""
			rows++
		}
	}

	if rows == 0 {
		fmt.Fprintln(s.out, s.style.dim.Render("(empty)"))
		return
	}
	fmt.Fprintln(s.out, t.Render())
}

func (s *Shell) cmdCheck() {
	result, err := s.validator.Validate(s.reg.Snapshot())
	if err != nil {
		s.fail("%v", err)
		return
	}
	if result.Valid {
		s.ok("graph is consistent")
		return
	}
	for _, v := range result.Violations {
		style := s.style.err
		if v.Severity != constraints.Error {
			style = s.style.warn
		}
		fmt.Fprintf(s.out, "%s %s: %s\n", style.Render(v.Severity.String()), v.Constraint, v.Message)
	}
}

// splitArgs splits on whitespace, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				args = append(args, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if pending {
		args = append(args, cur.String())
	}
	return args, nil
}
