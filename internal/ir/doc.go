// Package ir is the intermediate representation shared by lowering and
// code generation.
//
// A Program is an arena: every node is addressed by a stable ID and every
// graph edge (parent, capture, break target, property container) is an ID,
// never an owning pointer. Node is a closed sum type; only the variants
// declared here satisfy it.
//
// Scopes carry a name/id binding index and five optional transparent
// regions (preEnter, enterCondition, failEnter, preLoop, loopCondition)
// that express every structured control statement. Lexical lookups that
// cross a method boundary capture the target into the consuming method and
// allocate a shared context on the defining method.
//
// ir depends only on estree; every other internal package imports ir.
package ir
