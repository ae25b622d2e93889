package di_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/sghaida/lazydi/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Instantiation
// -----------------------------------------------------------------------------

// TestResolve_CallsFactory verifies a factory is invoked to produce the value.
func TestResolve_CallsFactory(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func() any { return "a" },
	})

	got, err := p.Provide(nil).Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

// TestResolve_Literal verifies a non-factory definition is returned as is.
func TestResolve_Literal(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{"a": "a", "n": 42})
	view := p.Provide(nil)

	assert.Equal(t, "a", di.MustGet[string](view, "a"))
	assert.Equal(t, 42, di.MustGet[int](view, "n"))
}

// TestResolve_FactoryShapes verifies every accepted factory signature is called.
func TestResolve_FactoryShapes(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"factory":  di.Factory(func(di.Deps) (any, error) { return 1, nil }),
		"depsErr":  func(di.Deps) (any, error) { return 2, nil },
		"deps":     func(di.Deps) any { return 3 },
		"plainErr": func() (any, error) { return 4, nil },
		"plain":    func() any { return 5 },
	})
	view := p.Provide(nil)

	for key, want := range map[string]int{"factory": 1, "depsErr": 2, "deps": 3, "plainErr": 4, "plain": 5} {
		got, err := view.Resolve(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

// TestResolve_OtherFuncIsLiteral verifies functions of other shapes are injected as values.
func TestResolve_OtherFuncIsLiteral(t *testing.T) {
	t.Parallel()

	double := func(x int) int { return 2 * x }
	view := di.MustNew(di.Injectables{"double": double}).Provide(nil)

	fn, err := di.Get[func(int) int](view, "double")
	require.NoError(t, err)
	assert.Equal(t, 8, fn(4))
}

// TestResolve_FreshInstanceEachRead verifies the view does not cache factory results.
func TestResolve_FreshInstanceEachRead(t *testing.T) {
	t.Parallel()

	type box struct{ Prop string }
	view := di.MustNew(di.Injectables{
		"a": func() any { return &box{Prop: "a"} },
	}).Provide(nil)

	first := di.MustGet[*box](view, "a")
	second := di.MustGet[*box](view, "a")

	assert.Equal(t, &box{Prop: "a"}, first)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

// TestResolve_LiteralIsReferenceStable verifies a pointer literal comes back identical.
func TestResolve_LiteralIsReferenceStable(t *testing.T) {
	t.Parallel()

	type box struct{}
	b := &box{}
	view := di.MustNew(di.Injectables{"b": b}).Provide(nil)

	assert.Same(t, b, di.MustGet[*box](view, "b"))
	assert.Same(t, b, di.MustGet[*box](view, "b"))
}

// TestProvide_IndependentViews verifies two views of one provider share nothing.
func TestProvide_IndependentViews(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) any { return "a:" + di.MustGet[string](deps, "b") },
		"b": "b",
	})

	v1 := p.Provide(di.Injectables{"b": "one"})
	v2 := p.Provide(nil)

	assert.Equal(t, "a:one", di.MustGet[string](v1, "a"))
	assert.Equal(t, "a:b", di.MustGet[string](v2, "a"))
	assert.Equal(t, di.MustGet[string](p.Provide(nil), "a"), di.MustGet[string](v2, "a"))
}

//
// -----------------------------------------------------------------------------
// Dependency graph
// -----------------------------------------------------------------------------

// TestResolve_TransitiveGraph verifies transitive dependencies are substituted.
func TestResolve_TransitiveGraph(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) {
			b, err := di.Get[string](deps, "b")
			if err != nil {
				return nil, err
			}
			c, err := di.Get[string](deps, "c")
			if err != nil {
				return nil, err
			}
			return b + "+" + c, nil
		},
		"b": func() any { return "b" },
		"c": func(deps di.Deps) (any, error) { return deps.Resolve("d") },
		"d": "d",
	})

	got, err := p.Provide(nil).Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "b+d", got)
}

// TestResolve_Lazy verifies only the keys that are read get instantiated.
func TestResolve_Lazy(t *testing.T) {
	t.Parallel()

	var aCalls, bCalls, cCalls int
	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) {
			aCalls++
			return deps.Resolve("b")
		},
		"b": func() any {
			bCalls++
			return "b"
		},
		"c": func() any {
			cCalls++
			return "c"
		},
	})

	view := p.Provide(nil)
	assert.Equal(t, 0, aCalls+bCalls+cCalls)

	assert.Equal(t, "b", di.MustGet[string](view, "a"))
	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 1, bCalls)
	assert.Equal(t, 0, cCalls)

	assert.Equal(t, "c", di.MustGet[string](view, "c"))
	assert.Equal(t, 1, cCalls)
}

// TestProvide_DoesNotFailOnMissing verifies unmet keys only fail when read.
func TestProvide_DoesNotFailOnMissing(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("missing") },
		"b": "b",
	})

	view := p.Provide(nil)
	assert.Equal(t, "b", di.MustGet[string](view, "b"))

	_, err := view.Resolve("a")
	require.Error(t, err)
}

//
// -----------------------------------------------------------------------------
// Overrides
// -----------------------------------------------------------------------------

// TestProvide_LateBinding verifies overrides supply keys the registry lacks.
func TestProvide_LateBinding(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("b") },
	})

	got, err := p.Provide(di.Injectables{"b": func() any { return "b" }}).Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

// TestProvide_OverrideReplaces verifies an override replaces the registry entry.
func TestProvide_OverrideReplaces(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("b") },
		"b": "b",
	})

	got, err := p.Provide(di.Injectables{"b": "b2"}).Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "b2", got)

	got, err = p.Provide(nil).Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "b", got, "registry must not be mutated by overrides")
}

// TestProvide_OverrideFactoryWithLiteral verifies a literal override replaces a factory.
func TestProvide_OverrideFactoryWithLiteral(t *testing.T) {
	t.Parallel()

	calls := 0
	p := di.MustNew(di.Injectables{
		"a": func() any {
			calls++
			return "factory"
		},
	})

	got, err := p.Provide(di.Injectables{"a": "literal"}).Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "literal", got)
	assert.Zero(t, calls)
}

// TestNew_CopiesRegistry verifies later edits to the caller's map are not seen.
func TestNew_CopiesRegistry(t *testing.T) {
	t.Parallel()

	reg := di.Injectables{"a": "a"}
	p := di.MustNew(reg)
	reg["a"] = "changed"
	reg["b"] = "b"

	view := p.Provide(nil)
	assert.Equal(t, "a", di.MustGet[string](view, "a"))
	assert.False(t, view.Has("b"))
}

//
// -----------------------------------------------------------------------------
// nil injectables and errors
// -----------------------------------------------------------------------------

// TestResolve_NilIsAValue verifies an explicit nil is an injectable, unlike an absent key.
func TestResolve_NilIsAValue(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("b") },
		"b": func(deps di.Deps) (any, error) { return deps.Resolve("c") },
		"c": nil,
	})

	got, err := p.Provide(nil).Resolve("a")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = p.Provide(di.Injectables{
		"c": func(deps di.Deps) (any, error) { return deps.Resolve("d") },
		"d": nil,
	}).Resolve("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestResolve_UnresolvedMessage verifies the error names the missing key, however deep.
func TestResolve_UnresolvedMessage(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("b") },
		"b": func(deps di.Deps) (any, error) { return deps.Resolve("c") },
	})

	_, err := p.Provide(nil).Resolve("a")
	require.Error(t, err)
	assert.EqualError(t, err, `could not resolve injectable with injection token "c"`)
	assert.ErrorIs(t, err, di.ErrUnresolved)

	var unresolved *di.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "c", unresolved.Key)
}

// TestResolve_UnresolvedToken verifies tokens are named by their description.
func TestResolve_UnresolvedToken(t *testing.T) {
	t.Parallel()

	tok := di.NewToken("clock")
	_, err := di.MustNew(nil).Provide(nil).Resolve(tok)
	assert.EqualError(t, err, `could not resolve injectable with injection token "Symbol(clock)"`)
}

// TestResolve_FactoryErrorPassesThrough verifies factory errors are not wrapped.
func TestResolve_FactoryErrorPassesThrough(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("b") },
		"b": func() (any, error) { return nil, boom },
	})

	_, err := p.Provide(nil).Resolve("a")
	assert.Same(t, boom, err)
}

// TestResolve_InvalidKeyType verifies keys of other types are simply unknown.
func TestResolve_InvalidKeyType(t *testing.T) {
	t.Parallel()

	view := di.MustNew(di.Injectables{"1": "one"}).Provide(nil)

	assert.False(t, view.Has(1))
	assert.False(t, view.Has([]string{"1"}))
	_, err := view.Resolve(1)
	assert.ErrorIs(t, err, di.ErrUnresolved)
}

// TestNew_RejectsInvalidKeys verifies registry and api keys are checked at build time.
func TestNew_RejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	_, err := di.New(di.Injectables{42: "x"})
	assert.ErrorIs(t, err, di.ErrInvalidKey)

	_, err = di.New(di.Injectables{"a": "a"}, di.WithAPI(3.5))
	assert.ErrorIs(t, err, di.ErrInvalidKey)

	_, err = di.New(di.Injectables{"a": "a"}, di.WithAPI("a", di.ProvideToken))
	assert.ErrorIs(t, err, di.ErrReservedKey)

	assert.Panics(t, func() { di.MustNew(di.Injectables{(*di.Token)(nil): "x"}) })
}

// TestNew_RejectsCollidingAPINames verifies public keys must export under distinct names.
func TestNew_RejectsCollidingAPINames(t *testing.T) {
	t.Parallel()

	tok := di.NewToken("x")
	_, err := di.New(di.Injectables{"Symbol(x)": 1, tok: 2}, di.WithAPI("Symbol(x)", tok))
	require.ErrorIs(t, err, di.ErrNameCollision)
	assert.Contains(t, err.Error(), `"Symbol(x)"`)

	// only one of them public is fine
	view := di.MustNew(di.Injectables{"Symbol(x)": 1, tok: 2}, di.WithAPI(tok)).Provide(nil)
	out, err := view.Export()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Symbol(x)": 2}, out)
	assert.Equal(t, 1, di.MustGet[int](view, "Symbol(x)"))
}

// TestNew_NilInjectorIsLiteral verifies typed nil injectors build and resolve to themselves.
func TestNew_NilInjectorIsLiteral(t *testing.T) {
	t.Parallel()

	defs := di.Injectables{
		"shared":     (*di.Shared)(nil),
		"binding":    (*di.Binding[struct{ A string }, string])(nil),
		"wrapped":    di.Singleton((*di.Shared)(nil)),
		"overridden": "x",
	}
	p, err := di.New(defs)
	require.NoError(t, err)
	assert.Empty(t, p.Missing(nil))

	view := p.Provide(di.Injectables{"overridden": (*di.Shared)(nil)})
	for key := range defs {
		got, err := view.Resolve(key)
		require.NoError(t, err, key)
		assert.Nil(t, got, key)
	}
	assert.Nil(t, di.MustGet[*di.Shared](view, "shared"))
}

//
// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// TestKeys_OnlyPublicInOrder verifies enumeration follows WithAPI.
func TestKeys_OnlyPublicInOrder(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) (any, error) { return deps.Resolve("b") },
		"b": "b",
		"c": func(deps di.Deps) any {
			return di.MustGet[string](deps, "b") + "+" + di.MustGet[string](deps, "d")
		},
		"d": "d",
	}, di.WithAPI("c", "a", "c"))

	view := p.Provide(nil)
	assert.Equal(t, []di.Key{"c", "a"}, view.Keys())
	assert.Equal(t, []di.Key{"c", "a"}, p.API())

	exported, err := view.Export()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b", "c": "b+d"}, exported)

	// private keys stay resolvable by name
	assert.Equal(t, "d", di.MustGet[string](view, "d"))
}

// TestKeys_NoAPI verifies nothing is enumerated by default.
func TestKeys_NoAPI(t *testing.T) {
	t.Parallel()

	view := di.MustNew(di.Injectables{"a": "a"}).Provide(nil)
	assert.Empty(t, view.Keys())

	exported, err := view.Export()
	require.NoError(t, err)
	assert.Empty(t, exported)
}

// TestKeys_SkipsAbsentAPIKeys verifies an API key with no definition is not enumerated
// until an override supplies it.
func TestKeys_SkipsAbsentAPIKeys(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{"a": "a"}, di.WithAPI("a", "late"))

	assert.Equal(t, []di.Key{"a"}, p.Provide(nil).Keys())
	assert.Equal(t, []di.Key{"a", "late"}, p.Provide(di.Injectables{"late": 1}).Keys())
}

// TestEach_StopsOnError verifies Each returns the first failure.
func TestEach_StopsOnError(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": "a",
		"b": func(deps di.Deps) (any, error) { return deps.Resolve("nope") },
		"c": "c",
	}, di.WithAPI("a", "b", "c"))

	var seen []di.Key
	err := p.Provide(nil).Each(func(key di.Key, _ any) error {
		seen = append(seen, key)
		return nil
	})
	assert.ErrorIs(t, err, di.ErrUnresolved)
	assert.Equal(t, []di.Key{"a"}, seen)

	_, err = p.Provide(nil).Export()
	assert.ErrorIs(t, err, di.ErrUnresolved)
}

// TestKeys_NeverListsProvideToken verifies the reserved key is not enumerated.
func TestKeys_NeverListsProvideToken(t *testing.T) {
	t.Parallel()

	view := di.MustNew(di.Injectables{"a": "a"}, di.WithAPI("a")).Provide(nil)
	assert.True(t, view.Has(di.ProvideToken))
	assert.NotContains(t, view.Keys(), di.ProvideToken)
}

//
// -----------------------------------------------------------------------------
// Tokens
// -----------------------------------------------------------------------------

// TestToken_DistinctFromStrings verifies tokens never collide with string keys or each other.
func TestToken_DistinctFromStrings(t *testing.T) {
	t.Parallel()

	t1 := di.NewToken("a")
	t2 := di.NewToken("a")

	view := di.MustNew(di.Injectables{
		"a":         "string",
		"Symbol(a)": "rendered",
		t1:          "token",
	}).Provide(nil)

	assert.Equal(t, "string", di.MustGet[string](view, "a"))
	assert.Equal(t, "token", di.MustGet[string](view, t1))
	assert.False(t, view.Has(t2))
	assert.Equal(t, "Symbol(a)", t1.String())
	assert.Equal(t, "Symbol(a)", di.KeyName(t2))
}

//
// -----------------------------------------------------------------------------
// Concurrency
// -----------------------------------------------------------------------------

// TestView_ConcurrentResolve verifies a view can be shared between goroutines.
func TestView_ConcurrentResolve(t *testing.T) {
	t.Parallel()

	p := di.MustNew(di.Injectables{
		"a": func(deps di.Deps) any { return di.MustGet[int](deps, "b") * 2 },
		"b": 21,
	})
	view := p.Provide(nil)

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = di.MustGet[int](view, "a")
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}
