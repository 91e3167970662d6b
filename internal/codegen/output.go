package codegen

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/jsc/internal/ir"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultPlatform is used for unknown platform names.
const DefaultPlatform = "std"

// Platforms lists the available output templates, sorted.
func Platforms() []string {
	entries, _ := templateFS.ReadDir("templates")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	slices.Sort(names)
	return names
}

// HasPlatform reports whether name selects a template of its own.
func HasPlatform(name string) bool {
	return slices.Contains(Platforms(), name)
}

func template(platform string) string {
	if !HasPlatform(platform) {
		platform = DefaultPlatform
	}
	data, err := templateFS.ReadFile(path.Join("templates", platform+".tmpl"))
	if err != nil {
		panic(fmt.Sprintf("codegen: embedded template %s: %v", platform, err))
	}
	return string(data)
}

var placeholder = regexp.MustCompile(`\$\[\[([^\]]+)\]\]`)

// render substitutes the generated sections into the platform template.
func (g *generator) render() (string, error) {
	translated := flatten(g.translated())
	resources, err := g.resources()
	if err != nil {
		return "", err
	}
	var aliases []string
	for _, alias := range g.prog.Strings.Aliases() {
		i, _ := g.prog.Strings.AliasIndex(alias)
		aliases = append(aliases, fmt.Sprintf("#define %s js::BufferRef{stringTable[%d]}", alias, i))
	}

	main := g.prog.MainMethod()
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template(g.opts.Platform), func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		switch key {
		case "minStringTable":
			return strings.Join(aliases, "\n")
		case "translated":
			return translated
		case "resources":
			return resources
		case "main":
			return g.encode(main)
		}
		sym := main.Find(ir.ByName(key), false)
		if sym == nil {
			if !slices.Contains(missing, key) {
				missing = append(missing, key)
			}
			return m
		}
		return g.encode(sym)
	})
	if len(missing) > 0 {
		return "", ir.Errorf(ir.ErrCodegen, ir.Location{}, "could not find %s required by platform %s",
			strings.Join(missing, ", "), g.opts.Platform)
	}
	return out, nil
}

// translated assembles the string table, hoisted globals, forward
// declarations and method bodies.
func (g *generator) translated() []string {
	entries := g.prog.Strings.Entries()
	var out []string
	for i, s := range entries {
		out = append(out, fmt.Sprintf("STRDECL(_str%d, %d, %s);", i, len(s)+1, cString(s)))
	}
	out = append(out, "", "js::Buffer* const stringTable[] = ", "{")
	for i := range entries {
		item := fmt.Sprintf("(js::Buffer*) _str%d.data()", i)
		if i < len(entries)-1 {
			item += ","
		}
		out = append(out, item)
	}
	out = append(out, "};", fmt.Sprintf("const uint32_t stringTableSize = %d;", len(entries)), "")
	out = append(out, g.fileScope...)
	out = append(out, "")
	out = append(out, g.forward...)
	return append(out, g.bodies...)
}

// flatten indents lines by brace depth: a lone "{" opens a level and a
// line starting with "}" closes one.
func flatten(lines []string) string {
	var b strings.Builder
	depth := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "}") && depth > 0 {
			depth--
		}
		if line != "" {
			b.WriteString(strings.Repeat("    ", depth))
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if line == "{" {
			depth++
		}
	}
	return b.String()
}

// resources renders every non-builtin resource: extern declarations for
// arrays first so arrays may reference each other, then the definitions.
func (g *generator) resources() (string, error) {
	var out []string
	names := g.prog.ResourceNames()
	for _, name := range names {
		r, _ := g.prog.Resource(name)
		if r.Array != nil && !r.Builtin {
			out = append(out, fmt.Sprintf("extern const %s %s[];", r.Array.ElemType(), name))
		}
	}
	for _, name := range names {
		r, _ := g.prog.Resource(name)
		switch {
		case r.Builtin:
		case r.Array != nil:
			items, err := arrayItems(name, r.Array)
			if err != nil {
				return "", err
			}
			out = append(out, fmt.Sprintf("const %s %s[] = {%s};", r.Array.ElemType(), name, strings.Join(items, ",")))
		default:
			bytes, err := hexBytes(name, r.Hex)
			if err != nil {
				return "", err
			}
			out = append(out, fmt.Sprintf("RESOURCEDECL(%s) = {%s};", name, strings.Join(bytes, ",")))
		}
	}
	return strings.Join(out, "\n"), nil
}

func hexBytes(name, hex string) ([]string, error) {
	if len(hex)%2 != 0 {
		return nil, ir.Errorf(ir.ErrCodegen, ir.Location{}, "resource %s: odd number of hex digits", name)
	}
	out := make([]string, 0, len(hex)/2)
	for i := 0; i < len(hex); i += 2 {
		b, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return nil, ir.Errorf(ir.ErrCodegen, ir.Location{}, "resource %s: invalid hex %q", name, hex[i:i+2])
		}
		out = append(out, strconv.FormatUint(b, 10))
	}
	return out, nil
}

func arrayItems(name string, a *ir.ResourceArray) ([]string, error) {
	typ := a.ElemType()
	var out []string
	for _, it := range a.Items {
		switch it.Kind {
		case ir.ItemNumber:
			out = append(out, strconv.FormatInt(int64(int32(it.Number)), 10))
		case ir.ItemHash:
			out = append(out, fmt.Sprintf("js::hash(%s)", cString(it.Hash)))
		case ir.ItemRef:
			val := ResourceSymbol(it.Ref)
			if it.HasOffset {
				val = fmt.Sprintf("(%s + %d)", val, int32(it.Offset))
			}
			switch typ {
			case "uint32_t", "uintptr_t":
				out = append(out, fmt.Sprintf("%s(%s)", typ, val))
			case "uint8_t":
				for _, shift := range []int{0, 8, 16, 24} {
					out = append(out, fmt.Sprintf("%s(uintptr_t(%s) >> %2d)", typ, val, shift))
				}
			default:
				return nil, ir.Errorf(ir.ErrCodegen, ir.Location{}, "resource %s: %s arrays cannot hold references", name, typ)
			}
		}
	}
	return out, nil
}

var (
	leadingNonIdent = regexp.MustCompile(`^[^a-zA-Z_]+`)
	nonIdent        = regexp.MustCompile(`[^a-zA-Z0-9_]+`)
)

// ResourceSymbol derives the C identifier of a resource from a path:
// the base name up to its first dot, stripped of non-identifier runes.
func ResourceSymbol(ref string) string {
	base := ref[strings.LastIndex(ref, "/")+1:]
	base, _, _ = strings.Cut(base, ".")
	base = leadingNonIdent.ReplaceAllString(base, "")
	return nonIdent.ReplaceAllString(base, "")
}
