package ir

import (
	"strconv"
	"strings"
)

// StringTable interns literal text. Entries are append-only and each
// distinct text is stored exactly once.
type StringTable struct {
	entries []string
	index   map[string]int

	aliases    []string
	aliasIndex map[string]int
}

// NewStringTable returns an empty table.
func NewStringTable() *StringTable {
	return &StringTable{
		index:      make(map[string]int),
		aliasIndex: make(map[string]int),
	}
}

// Intern returns the table index of text, adding it if needed.
func (t *StringTable) Intern(text string) int {
	if i, ok := t.index[text]; ok {
		return i
	}
	i := len(t.entries)
	t.entries = append(t.entries, text)
	t.index[text] = i
	return i
}

// Alias interns text and returns its symbolic name.
func (t *StringTable) Alias(text string) string {
	i := t.Intern(text)
	alias := AliasFor(text)
	if _, ok := t.aliasIndex[alias]; !ok {
		t.aliasIndex[alias] = i
		t.aliases = append(t.aliases, alias)
	}
	return alias
}

// Entries lists interned text in index order.
func (t *StringTable) Entries() []string { return t.entries }

// Aliases lists generated aliases in creation order.
func (t *StringTable) Aliases() []string { return t.aliases }

// AliasIndex returns the table index an alias refers to.
func (t *StringTable) AliasIndex(alias string) (int, bool) {
	i, ok := t.aliasIndex[alias]
	return i, ok
}

// AliasFor derives the symbolic name of text. ASCII letters and digits are
// kept and every other rune becomes _<code point>_, so distinct texts
// never share an alias.
func AliasFor(text string) string {
	var b strings.Builder
	b.WriteString("V_")
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
			b.WriteString(strconv.Itoa(int(r)))
			b.WriteByte('_')
		}
	}
	return b.String()
}
