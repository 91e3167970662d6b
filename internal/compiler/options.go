package compiler

import (
	"maps"
	"slices"
)

// Well-known option keys.
const (
	OptPlatform = "platform"
	OptGlobals  = "globals"
	OptStrings  = "strings"
	OptSyscalls = "syscalls"
)

// Options is the driver's option bag. Every key holds a list; scalar keys
// written with Set hold exactly one value.
type Options struct {
	values map[string][]string
}

// NewOptions returns an empty bag.
func NewOptions() *Options {
	return &Options{values: make(map[string][]string)}
}

// Set replaces key with a single value.
func (o *Options) Set(key, value string) {
	o.values[key] = []string{value}
}

// Push appends values to key. Pushing nothing leaves the bag unchanged.
func (o *Options) Push(key string, values ...string) {
	if len(values) == 0 {
		return
	}
	o.values[key] = append(o.values[key], values...)
}

// Get returns the last value of key, or "".
func (o *Options) Get(key string) string {
	v := o.values[key]
	if len(v) == 0 {
		return ""
	}
	return v[len(v)-1]
}

// List returns every value of key.
func (o *Options) List(key string) []string {
	return slices.Clone(o.values[key])
}

// Has reports whether key was ever written.
func (o *Options) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *Options) Platform() string   { return o.Get(OptPlatform) }
func (o *Options) Globals() []string  { return o.List(OptGlobals) }
func (o *Options) Strings() []string  { return o.List(OptStrings) }
func (o *Options) Syscalls() []string { return o.List(OptSyscalls) }

// Keys lists the keys in sorted order.
func (o *Options) Keys() []string {
	return slices.Sorted(maps.Keys(o.values))
}

// Clone returns an independent copy.
func (o *Options) Clone() *Options {
	c := NewOptions()
	for k, v := range o.values {
		c.values[k] = slices.Clone(v)
	}
	return c
}

// Canonical renders the bag for fingerprinting.
func (o *Options) Canonical() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = slices.Clone(v)
	}
	return out
}
