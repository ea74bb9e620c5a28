package crafter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Provide
// ---------------------------------------------------------------------------

func TestProvide(t *testing.T) {
	t.Run("valid constructor", func(t *testing.T) {
		p, err := Provide(newTestDatabase)
		require.NoError(t, err)

		assert.Equal(t, KeyOf[*testDatabase](), p.Product().Resolved())
		assert.Equal(t, Scoped, p.Lifetime())
		assert.Equal(t, []Dependency{
			Needs(KeyOf[*testConfig]()),
			Needs(KeyOf[*testLogger]()),
		}, p.Dependencies())
	})

	t.Run("constructor returning (T, error)", func(t *testing.T) {
		_, err := Provide(func() (*testConfig, error) { return &testConfig{}, nil })
		assert.NoError(t, err)
	})

	tests := []struct {
		name string
		fn   any
	}{
		{"nil", nil},
		{"non-function", "not a function"},
		{"nil function", (func() int)(nil)},
		{"no return values", func() {}},
		{"three return values", func() (int, int, int) { return 0, 0, 0 }},
		{"second return not error", func() (int, string) { return 0, "" }},
		{"unknown parameter without default", func(v any) testAppName { return "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is rejected", func(t *testing.T) {
			_, err := Provide(tt.fn)
			assert.ErrorIs(t, err, ErrMalformedProvider)
		})
	}

	t.Run("maybe parameter is nullable", func(t *testing.T) {
		p := mustProvide(t, func(m Maybe[testExtension]) testFileName { return "" })
		deps := p.Dependencies()
		require.Len(t, deps, 1)
		assert.Equal(t, Nullable(KeyOf[testExtension]()), deps[0].Declared())
		assert.True(t, deps[0].IsOptional())
	})

	t.Run("unknown parameter with default", func(t *testing.T) {
		p := mustProvide(t, func(v any) testAppName { return "" }, WithDefault(0, "x"))
		assert.True(t, p.Dependencies()[0].Declared().IsUnknown())
		assert.Equal(t, "x", p.Dependencies()[0].Fallback())
	})

	t.Run("variadic parameters are not injected", func(t *testing.T) {
		p := mustProvide(t, func(name testAppName, extra ...string) testFileName { return "" })
		assert.Len(t, p.Dependencies(), 1)
	})

	t.Run("as interface", func(t *testing.T) {
		p := mustProvide(t, newTestUserService, As(KeyOf[testService]()))
		assert.Equal(t, KeyOf[testService](), p.Product().Resolved())
	})

	t.Run("as unassignable type is rejected", func(t *testing.T) {
		_, err := Provide(newTestConfig, As(KeyOf[testService]()))
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("as alias registers root", func(t *testing.T) {
		prefix := Alias("prefix", KeyOf[testAppName]())
		p := mustProvide(t, newTestAppName, As(prefix))
		assert.Equal(t, KeyOf[testAppName](), p.Product().Resolved())
		assert.Equal(t, prefix, p.Product().Declared())
	})

	t.Run("with inputs", func(t *testing.T) {
		primary := NamedKey[*testConfig]("primary")
		p := mustProvide(t, newTestDatabase, WithInputs(Required(primary), Nullable(KeyOf[*testLogger]())))
		deps := p.Dependencies()
		assert.Equal(t, primary, deps[0].Type())
		assert.True(t, deps[1].IsOptional())
	})

	t.Run("with inputs of wrong length", func(t *testing.T) {
		_, err := Provide(newTestDatabase, WithInputs(Required(KeyOf[*testConfig]())))
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("with inputs of wrong type", func(t *testing.T) {
		_, err := Provide(newTestDatabase, WithInputs(Required(KeyOf[testAppName]()), Required(KeyOf[*testLogger]())))
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("with inputs of zero key", func(t *testing.T) {
		var err error
		assert.NotPanics(t, func() {
			_, err = Provide(func(s string) int { return len(s) }, WithInputs(Required(Key{})))
		})
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("default out of range", func(t *testing.T) {
		_, err := Provide(newTestAppName, WithDefault(0, "x"))
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("default of wrong type", func(t *testing.T) {
		_, err := Provide(newTestFileName, WithDefault(1, 42))
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("default makes input optional", func(t *testing.T) {
		p := mustProvide(t, newTestFileName, WithDefault(1, testExtension("txt")))
		assert.False(t, p.Dependencies()[0].IsOptional())
		assert.True(t, p.Dependencies()[1].IsOptional())
	})

	t.Run("tagged fields become inputs", func(t *testing.T) {
		p := mustProvide(t, func() *testHandler { return &testHandler{} })
		assert.Empty(t, p.Dependencies())
		assert.Equal(t, []Dependency{
			Needs(KeyOf[testAppName]()),
			DependencyOf(Nullable(KeyOf[testExtension]()), NoDefault),
			DependencyOf(Nullable(KeyOf[*testConfig]()), NoDefault),
			DependencyOf(Nullable(NamedKey[testFileName]("audit")), NoDefault),
		}, p.Fields())
	})

	t.Run("struct values have fields too", func(t *testing.T) {
		p := mustProvide(t, func() testHandler { return testHandler{} })
		assert.Len(t, p.Fields(), 4)
	})

	t.Run("untagged products have no fields", func(t *testing.T) {
		assert.Empty(t, mustProvide(t, newTestDatabase).Fields())
	})

	t.Run("unexported tagged field is rejected", func(t *testing.T) {
		type private struct {
			name testAppName `crafter:""`
		}
		_, err := Provide(func() *private { return &private{} })
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("unknown tag option is rejected", func(t *testing.T) {
		type eager struct {
			Name testAppName `crafter:",eager"`
		}
		_, err := Provide(func() *eager { return &eager{} })
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("tagged field of type any is rejected", func(t *testing.T) {
		type loose struct {
			Value any `crafter:""`
		}
		_, err := Provide(func() loose { return loose{} })
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("string names product and source", func(t *testing.T) {
		p := mustProvide(t, newTestFileName)
		assert.Contains(t, p.String(), "crafter.testFileName")
		assert.Contains(t, p.String(), "newTestFileName")
		assert.Contains(t, p.String(), "2 inputs")
	})
}

// ---------------------------------------------------------------------------
// Func and Constant
// ---------------------------------------------------------------------------

func TestFunc(t *testing.T) {
	t.Run("explicit dependencies", func(t *testing.T) {
		deps := []Dependency{Needs(KeyOf[testAppName]()), NeedsOr(KeyOf[testExtension](), testExtension("log"))}
		p, err := Func(KeyOf[testFileName](), deps, func(args ...any) (any, error) {
			return testFileName(fmt.Sprint(args...)), nil
		})
		require.NoError(t, err)
		assert.Equal(t, deps, p.Dependencies())
	})

	t.Run("nil function", func(t *testing.T) {
		_, err := Func(KeyOf[testFileName](), nil, nil)
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := Func(Unknown.Key(), nil, func(...any) (any, error) { return nil, nil })
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("reflective options are rejected", func(t *testing.T) {
		_, err := Func(KeyOf[testFileName](), nil, func(...any) (any, error) { return nil, nil }, WithDefault(0, 1))
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})
}

func TestConstant(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := Constant(KeyOf[testAppName](), testAppName("abb-crafter"))
		require.NoError(t, err)
		assert.Empty(t, p.Dependencies())
		assert.Contains(t, p.String(), "constant(abb-crafter)")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := Constant(KeyOf[testAppName](), "abb-crafter")
		assert.ErrorIs(t, err, ErrProductTypeMismatch)
	})

	t.Run("nil pointer", func(t *testing.T) {
		_, err := Constant(KeyOf[*testConfig](), nil)
		assert.NoError(t, err)
	})

	t.Run("nil value type", func(t *testing.T) {
		_, err := Constant(KeyOf[testAppName](), nil)
		assert.ErrorIs(t, err, ErrProductTypeMismatch)
	})
}

// ---------------------------------------------------------------------------
// Bind
// ---------------------------------------------------------------------------

func TestBind(t *testing.T) {
	t.Run("removes bound inputs", func(t *testing.T) {
		p := mustProvide(t, newTestFileName)
		bound, err := p.Bind(map[int]any{1: testExtension("txt")})
		require.NoError(t, err)

		assert.Equal(t, []Dependency{Needs(KeyOf[testAppName]())}, bound.Dependencies())
		assert.Len(t, p.Dependencies(), 2, "p keeps its inputs")

		v, err := bound.call([]arg{{value: testAppName("app"), resolved: true}})
		require.NoError(t, err)
		assert.Equal(t, testFileName("app.txt"), v)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := mustProvide(t, newTestFileName).Bind(map[int]any{2: "x"})
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := mustProvide(t, newTestFileName).Bind(map[int]any{0: 42})
		assert.ErrorIs(t, err, ErrMalformedProvider)
	})

	t.Run("provider error passes through", func(t *testing.T) {
		boom := errors.New("boom")
		p := mustProvide(t, func(name testAppName) (testFileName, error) { return "", boom })
		bound, err := p.Bind(map[int]any{0: testAppName("app")})
		require.NoError(t, err)

		_, err = bound.call(nil)
		assert.Same(t, boom, err)
	})
}
