package shell

import "fmt"

// AnyArgs disables the argument-count check for a command.
const AnyArgs = -1

// HandlerFunc runs a command. argv holds the arguments after the command
// name; it is only valid for the duration of the call.
type HandlerFunc func(s *Shell, argv []string) error

// Command is a registry entry. The caller owns the value; the registry links
// it in place and never copies it, so the same *Command must be passed to
// UnregisterCommand.
type Command struct {
	Name string
	// Help is printed by the help command and on an argument-count mismatch.
	Help    string
	Handler HandlerFunc
	// Args is the exact argument count excluding the name, or AnyArgs.
	Args int

	next  *Command
	owner *Registry
}

// Registered reports whether c is currently linked into a registry.
func (c *Command) Registered() bool { return c != nil && c.owner != nil }

// Registry is an insertion-ordered set of commands with unique names.
type Registry struct {
	head *Command
	tail *Command
	n    int
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return r.n }

// Register appends c.
func (r *Registry) Register(c *Command) error {
	if c == nil {
		return ErrNilCommand
	}
	if err := validName(c.Name); err != nil {
		return err
	}
	if c.Handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidCommand, c.Name)
	}
	if c.Args < AnyArgs {
		return fmt.Errorf("%w: %q expects %d arguments", ErrInvalidCommand, c.Name, c.Args)
	}
	if c.owner != nil {
		return fmt.Errorf("%w: %q", ErrCommandLinked, c.Name)
	}
	if _, ok := r.Lookup(c.Name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
	}

	c.next = nil
	c.owner = r
	if r.tail == nil {
		r.head = c
	} else {
		r.tail.next = c
	}
	r.tail = c
	r.n++
	return nil
}

// Unregister unlinks c by identity.
func (r *Registry) Unregister(c *Command) error {
	if c == nil {
		return ErrNilCommand
	}
	if c.owner != r {
		return fmt.Errorf("%w: %q", ErrCommandNotFound, c.Name)
	}

	var prev *Command
	for cur := r.head; cur != nil; prev, cur = cur, cur.next {
		if cur != c {
			continue
		}
		if prev == nil {
			r.head = cur.next
		} else {
			prev.next = cur.next
		}
		if r.tail == cur {
			r.tail = prev
		}
		cur.next = nil
		cur.owner = nil
		r.n--
		return nil
	}
	return fmt.Errorf("%w: %q", ErrCommandNotFound, c.Name)
}

// Lookup finds a command by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	for cur := r.head; cur != nil; cur = cur.next {
		if cur.Name == name {
			return cur, true
		}
	}
	return nil, false
}

// Each calls fn for every command in registration order until fn returns false.
func (r *Registry) Each(fn func(*Command) bool) {
	for cur := r.head; cur != nil; cur = cur.next {
		if !fn(cur) {
			return
		}
	}
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCommand)
	}
	for i := 0; i < len(name); i++ {
		if b := name[i]; b <= ' ' || b >= 0x7f {
			return fmt.Errorf("%w: name %q contains byte %#02x", ErrInvalidCommand, name, b)
		}
	}
	return nil
}
