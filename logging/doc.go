// Package logging wires an application logger out of crafter providers.
//
// Every piece of the setup is its own product type, so any of them can be
// replaced for a scope:
//
//	f := crafter.New(logging.Providers())
//	err := f.WithConstant(crafter.KeyOf[logging.LogDirectoryPath](), logging.LogDirectoryPath("/var/log/app"), func(s *crafter.Scope) error {
//	    _, err := crafter.Resolve[logging.FileHandlerConfigured](s)
//	    return err
//	})
//
// Loggers are process-wide and keyed by name, so a logger configured in
// one scope keeps its handlers after the scope is closed. A logger writes
// to at most one file.
package logging
