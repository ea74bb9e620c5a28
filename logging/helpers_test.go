package logging

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ARTM2000/crafter"
)

// isolatedLoggers drops every registered logger when the test ends.
func isolatedLoggers(t *testing.T) {
	t.Helper()
	require.NoError(t, ResetLoggers())
	t.Cleanup(func() { _ = ResetLoggers() })
}

// quietFactory returns a factory with the logging providers and a scope
// that disables the stream handler.
func quietFactory(t *testing.T) *crafter.Factory {
	t.Helper()
	f := crafter.New(Providers())
	_, err := f.ConstantProvider(crafter.KeyOf[Verbose](), Verbose(false))
	require.NoError(t, err)
	return f
}

// fileScope opens a scope writing logs to dir/name.
func fileScope(t *testing.T, f *crafter.Factory, dir, name string) *crafter.Scope {
	t.Helper()
	s, err := f.Constants(map[crafter.Key]any{
		crafter.KeyOf[LogDirectoryPath](): LogDirectoryPath(dir),
		crafter.KeyOf[LogFileName]():      LogFileName(name),
	})
	require.NoError(t, err)
	return s
}
