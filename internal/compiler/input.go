package compiler

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jsc/internal/codegen"
	"github.com/roach88/jsc/internal/estree"
	"github.com/roach88/jsc/internal/ir"
	"github.com/roach88/jsc/internal/lower"
)

type transformer func(c *Compiler, name string, data []byte) error

var transformers = map[string]transformer{
	".json": addScript,
	".hex":  addHex,
	".bin":  addBinary,
	".raw":  addBinary,
	".yaml": addArray,
	".yml":  addArray,
	".js":   addSource,
}

func addScript(c *Compiler, name string, data []byte) error {
	root, err := estree.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return lower.Lower(c.program, name, root, c)
}

func addSource(_ *Compiler, name string, _ []byte) error {
	return fmt.Errorf("%s: JavaScript source must be parsed to ESTree JSON first", name)
}

func (c *Compiler) resourceName(path string) (string, error) {
	if sym, ok := c.symbols[path]; ok {
		return sym, nil
	}
	sym := codegen.ResourceSymbol(path)
	if sym == "" {
		return "", fmt.Errorf("%s: cannot derive a resource name", path)
	}
	return sym, nil
}

func addHex(c *Compiler, name string, data []byte) error {
	sym, err := c.resourceName(name)
	if err != nil {
		return err
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, string(data))
	if _, err := hex.DecodeString(digits); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	c.program.SetResource(&ir.Resource{Name: sym, Hex: strings.ToLower(digits)})
	return nil
}

func addBinary(c *Compiler, name string, data []byte) error {
	sym, err := c.resourceName(name)
	if err != nil {
		return err
	}
	c.program.SetResource(&ir.Resource{Name: sym, Hex: hex.EncodeToString(data)})
	return nil
}

// arrayFile is the YAML shape of a structured resource.
type arrayFile struct {
	Type  string      `yaml:"type"`
	Items []arrayItem `yaml:"items"`
}

// arrayItem is a number, {h: string} or {r: name, o: offset}.
type arrayItem struct {
	item ir.ResourceItem
}

type arrayItemFields struct {
	H *string `yaml:"h"`
	R *string `yaml:"r"`
	O *int64  `yaml:"o"`
}

func (a *arrayItem) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("line %d: array items must be integers: %w", node.Line, err)
		}
		a.item = ir.ResourceItem{Kind: ir.ItemNumber, Number: n}
		return nil
	}
	var f arrayItemFields
	if err := node.Decode(&f); err != nil {
		return err
	}
	switch {
	case f.H != nil && f.R == nil && f.O == nil:
		a.item = ir.ResourceItem{Kind: ir.ItemHash, Hash: *f.H}
	case f.R != nil && f.H == nil:
		a.item = ir.ResourceItem{Kind: ir.ItemRef, Ref: *f.R}
		if f.O != nil {
			a.item.Offset, a.item.HasOffset = *f.O, true
		}
	default:
		return fmt.Errorf("line %d: array item needs exactly one of h or r", node.Line)
	}
	return nil
}

var elemTypes = map[string]bool{
	"": true, "uintptr_t": true, "uint32_t": true, "int32_t": true,
	"uint16_t": true, "int16_t": true, "uint8_t": true, "int8_t": true,
}

func addArray(c *Compiler, name string, data []byte) error {
	sym, err := c.resourceName(name)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f arrayFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !elemTypes[f.Type] {
		return fmt.Errorf("%s: unsupported element type %q", name, f.Type)
	}
	arr := &ir.ResourceArray{Type: f.Type}
	for _, it := range f.Items {
		arr.Items = append(arr.Items, it.item)
	}
	c.program.SetResource(&ir.Resource{Name: sym, Array: arr})
	return nil
}
