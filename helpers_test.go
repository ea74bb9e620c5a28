package crafter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// Shared test types and constructors used across test files.

// mustProvide calls t.Fatal if the provider cannot be built.
func mustProvide(t testing.TB, fn any, opts ...Option) *Provider {
	t.Helper()
	p, err := Provide(fn, opts...)
	require.NoError(t, err, "Provide")
	return p
}

// mustGroup builds a group from constructors, failing the test on the
// first malformed one.
func mustGroup(t testing.TB, fns ...any) *Group {
	t.Helper()
	g := NewGroup()
	for _, fn := range fns {
		require.NoError(t, g.Provide(fn), "Group.Provide")
	}
	return g
}

// mustConstant calls t.Fatal if the constant provider cannot be built.
func mustConstant(t testing.TB, ref ProductRef, value any) *Provider {
	t.Helper()
	p, err := Constant(ref, value)
	require.NoError(t, err, "Constant")
	return p
}

type testAppName string
type testFileName string
type testExtension string

type testConfig struct{ DSN string }
type testLogger struct{ Prefix string }

type testDatabase struct {
	Config *testConfig
	Logger *testLogger
}

type testService interface {
	Name() string
}

type testUserService struct{ DB *testDatabase }

func (s *testUserService) Name() string { return "user" }

// testHandler has its inputs filled through tagged fields.
type testHandler struct {
	Name    testAppName          `crafter:""`
	Ext     Maybe[testExtension] `crafter:""`
	Config  *testConfig          `crafter:",optional"`
	Audit   testFileName         `crafter:"audit,optional"`
	Comment string
}

type testNode struct {
	Next *testNode `crafter:""`
}

type testCircA struct{ B *testCircB }
type testCircB struct{ C *testCircC }
type testCircC struct{ A *testCircA }

func newTestAppName() testAppName     { return "app-crafter" }
func newTestExtension() testExtension { return "log" }
func newTestConfig() *testConfig      { return &testConfig{DSN: "postgres://localhost"} }
func newTestLogger() *testLogger      { return &testLogger{Prefix: "app"} }

func newTestFileName(name testAppName, ext testExtension) testFileName {
	return testFileName(string(name) + "." + string(ext))
}

func newTestDatabase(cfg *testConfig, log *testLogger) *testDatabase {
	return &testDatabase{Config: cfg, Logger: log}
}

func newTestUserService(db *testDatabase) *testUserService {
	return &testUserService{DB: db}
}

func newTestCircA(b *testCircB) *testCircA { return &testCircA{B: b} }
func newTestCircB(c *testCircC) *testCircB { return &testCircB{C: c} }
func newTestCircC(a *testCircA) *testCircC { return &testCircC{A: a} }

// fileNameGroup is the providers of the log file name scenario.
func fileNameGroup(t testing.TB) *Group {
	t.Helper()
	return mustGroup(t, newTestAppName, newTestExtension, newTestFileName)
}

// counter counts provider invocations.
type counter struct{ calls int }

func (c *counter) appName() testAppName {
	c.calls++
	return "app-crafter"
}

// testClosable implements io.Closer and records the close order.
type testClosable struct {
	Name   string
	Closed bool
	Order  *[]string
}

func (c *testClosable) Close() error {
	c.Closed = true
	if c.Order != nil {
		*c.Order = append(*c.Order, c.Name)
	}
	return nil
}

// testFailCloser implements io.Closer but returns an error.
type testFailCloser struct{}

func (f *testFailCloser) Close() error {
	return errors.New("close failed")
}
