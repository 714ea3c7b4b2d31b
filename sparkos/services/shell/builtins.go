package shell

func (s *Shell) registerBuiltins() error {
	builtins := []*Command{
		{
			Name:    "help",
			Help:    "help                 list all commands",
			Args:    AnyArgs,
			Handler: cmdHelp,
		},
		{
			Name:    "exit",
			Help:    "exit                 leave the shell",
			Args:    0,
			Handler: cmdExit,
		},
	}
	if s.hist.Depth() > 0 {
		builtins = append(builtins, &Command{
			Name:    "history",
			Help:    "history              list recent lines, oldest first",
			Args:    0,
			Handler: cmdHistory,
		})
	}
	for _, c := range builtins {
		if err := s.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func cmdHelp(s *Shell, _ []string) error {
	var err error
	s.Commands(func(c *Command) bool {
		if c.Help == "" {
			_, err = s.Printf("%s\n", c.Name)
		} else {
			s.printHelp(c)
		}
		return err == nil
	})
	return err
}

func cmdExit(s *Shell, _ []string) error {
	s.Exit()
	_, err := s.Printf("bye\n")
	return err
}

func cmdHistory(s *Shell, _ []string) error {
	h := s.History()
	for i := h.Len() - 1; i >= 0; i-- {
		if _, err := s.Printf("%3d  %s\n", h.Len()-i, h.At(i)); err != nil {
			return err
		}
	}
	return nil
}
