package ir

import "fmt"

// Dump renders the program's scope tree as a canonical-JSON-ready map.
func Dump(p *Program) map[string]any {
	resources := make([]any, 0)
	for _, name := range p.ResourceNames() {
		resources = append(resources, name)
	}
	sources := make([]any, 0, len(p.Sources))
	for _, src := range p.Sources {
		sources = append(sources, src.File)
	}
	return map[string]any{
		"ir_version": IRVersion,
		"main":       dumpNode(p, p.Main),
		"resources":  resources,
		"sources":    sources,
	}
}

// MarshalDump returns the canonical JSON encoding of Dump(p).
func MarshalDump(p *Program) ([]byte, error) {
	return MarshalCanonical(Dump(p))
}

func dumpNode(p *Program, id ID) map[string]any {
	out := map[string]any{"id": int(id)}
	switch n := p.Node(id).(type) {
	case *Method:
		out["kind"] = "method"
		out["name"] = n.Name
		if n.IsNative {
			out["native"] = true
			return out
		}
		if n.IsClass {
			out["class"] = true
		}
		dumpScope(p, &n.Scope, out)
		if caps := n.Captures(); len(caps) > 0 {
			list := make([]any, len(caps))
			for i, c := range caps {
				list[i] = map[string]any{"var": int(c), "source": int(n.CaptureSource(c))}
			}
			out["captures"] = list
		}
	case *Scope:
		out["kind"] = "scope"
		dumpScope(p, n, out)
	case *Var:
		out["kind"] = "var"
		out["var_kind"] = n.Kind.String()
		if n.Name != "" {
			out["name"] = n.Name
		}
		if n.Prop != "" {
			out["prop"] = n.Prop
		}
		if n.DeclType != TypeUnknown {
			out["type"] = n.DeclType.String()
		}
	case *Pop:
		out["kind"] = "pop"
	case *Deref:
		out["kind"] = "deref"
	case *Return:
		out["kind"] = "return"
		out["has_value"] = n.HasValue
	case *Break:
		out["kind"] = "break"
		out["target"] = int(n.Target)
	case *Continue:
		out["kind"] = "continue"
		out["target"] = int(n.Target)
	case *ArrayLiteral:
		out["kind"] = "array"
		out["length"] = n.Length
	case *ObjectLiteral:
		out["kind"] = "object"
		out["length"] = n.Length
	case *Call:
		out["kind"] = "call"
		out["argc"] = n.Argc
		out["new"] = n.IsNew
		out["forward"] = n.IsForward
		out["discard"] = n.DiscardResult
	case *Assign:
		out["kind"] = "assign"
		out["op"] = n.Op
		if n.Init {
			out["init"] = true
		}
	case *Binary:
		out["kind"] = "binary"
		out["op"] = n.Op
	case *Unary:
		out["kind"] = "unary"
		out["op"] = n.Op
		out["prefix"] = n.Prefix
	case *LookUp:
		out["kind"] = "lookup"
		if n.IsProperty() {
			out["container"] = int(n.Container)
			out["key"] = int(n.Key)
		} else {
			out["ref"] = n.Ref.String()
		}
	case *Literal:
		out["kind"] = "literal"
		out["type"] = n.Type().String()
		out["value"] = n.Value.String()
	default:
		out["kind"] = fmt.Sprintf("%T", n)
	}
	return out
}

func dumpScope(p *Program, s *Scope, out map[string]any) {
	if s.Label != "" {
		out["label"] = s.Label
	}
	if s.Transparent {
		out["transparent"] = true
	}
	vars := make([]any, 0, len(s.variables))
	for _, id := range s.variables {
		vars = append(vars, dumpNode(p, id))
	}
	out["vars"] = vars
	children := make([]any, 0, len(s.children))
	for _, id := range s.children {
		children = append(children, dumpNode(p, id))
	}
	out["children"] = children
	regions := []struct {
		key string
		id  ID
	}{
		{"pre_enter", s.PreEnter},
		{"enter_condition", s.EnterCondition},
		{"fail_enter", s.FailEnter},
		{"pre_loop", s.PreLoop},
		{"loop_condition", s.LoopCondition},
	}
	for _, r := range regions {
		if r.id.IsValid() {
			out[r.key] = dumpNode(p, r.id)
		}
	}
}
