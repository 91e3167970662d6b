package compiler

import (
	"fmt"
	"strings"
)

// Directive interprets one leading string-literal statement. It returns
// true when the rest of the enclosing block must be skipped.
func (c *Compiler) Directive(text string) (bool, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "set":
		if len(args) < 2 {
			return false, fmt.Errorf("directive %q: want set KEY VALUE", text)
		}
		c.opts.Set(args[0], strings.Join(args[1:], " "))
	case "push":
		if len(args) < 2 {
			return false, fmt.Errorf("directive %q: want push KEY VALUE...", text)
		}
		c.opts.Push(args[0], args[1:]...)
	case "addSysCall":
		c.AddSysCall(args...)
	case "registerBuiltinResource":
		c.RegisterBuiltinResource(args...)
	case "include":
		c.Include(args...)
	case "ifeq", "ifneq":
		if len(args) < 2 {
			return false, fmt.Errorf("directive %q: want %s KEY VALUE", text, name)
		}
		equal := c.opts.Get(args[0]) == strings.Join(args[1:], " ")
		skip := equal == (name == "ifneq")
		c.logger.Debug("conditional directive", "directive", text, "skip", skip)
		return skip, nil
	default:
		c.logger.Debug("ignoring directive", "directive", text)
		return false, nil
	}
	c.logger.Debug("applied directive", "directive", text)
	return false, nil
}
