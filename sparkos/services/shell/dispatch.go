package shell

import "errors"

// dispatch tokenizes line, resolves the command and invokes it.
func (s *Shell) dispatch(line []byte) {
	n, err := s.tok.split(line)
	switch {
	case errors.Is(err, errTooManyArgs):
		s.stats.argErrors.Add(1)
		_, _ = s.Printf("error: too many arguments (max %d)\n", s.cfg.MaxArgs)
		return
	case err != nil:
		s.stats.argErrors.Add(1)
		_, _ = s.Printf("error: %v\n", err)
		return
	case n == 0:
		return
	}

	spans := s.tok.spans
	name := s.tok.buf[spans[0].start:spans[0].end]
	cmd := s.lookupBytes(name)
	if cmd == nil {
		s.stats.unknownCmds.Add(1)
		_, _ = s.Printf("unknown command: %s\n", name)
		s.log.Infow("unknown command", "name", string(name))
		return
	}

	argc := n - 1
	if cmd.Args != AnyArgs && argc != cmd.Args {
		s.stats.argErrors.Add(1)
		_, _ = s.Printf("incorrect command parameter(s), %s takes %d, got %d\n", cmd.Name, cmd.Args, argc)
		s.printHelp(cmd)
		s.log.Infow("usage error", "name", cmd.Name, "want", cmd.Args, "got", argc)
		return
	}

	argv := s.argv[:0]
	if argc > 0 {
		joined := string(s.tok.buf[spans[1].start:spans[n-1].end])
		base := spans[1].start
		for _, sp := range spans[1:n] {
			argv = append(argv, joined[sp.start-base:sp.end-base])
		}
	}
	s.invoke(cmd, argv)
}

func (s *Shell) lookupBytes(name []byte) *Command {
	for c := s.reg.head; c != nil; c = c.next {
		if c.Name == string(name) {
			return c
		}
	}
	return nil
}

func (s *Shell) invoke(cmd *Command, argv []string) {
	s.stats.commands.Add(1)
	s.log.Debugw("command dispatched", "name", cmd.Name, "argc", len(argv))
	defer func() {
		if r := recover(); r != nil {
			s.stats.panics.Add(1)
			s.log.Warnw("command panicked", "name", cmd.Name, "panic", r)
			_, _ = s.Printf("%s: panic: %v\n", cmd.Name, r)
		}
	}()
	if err := cmd.Handler(s, argv); err != nil {
		s.stats.handlerErrors.Add(1)
		s.log.Warnw("command failed", "name", cmd.Name, "error", err)
		_, _ = s.Printf("%s: %v\n", cmd.Name, err)
	}
}

func (s *Shell) printHelp(cmd *Command) {
	if cmd.Help == "" {
		return
	}
	_ = s.WriteString(cmd.Help)
	if cmd.Help[len(cmd.Help)-1] != '\n' {
		_ = s.WriteString("\n")
	}
}
