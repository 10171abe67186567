package codetext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codetext/internal/store"
)

func pyFunc(name, body string) *store.CodeElement {
	content := "def " + name + "():\n    " + body + "\n"
	return &store.CodeElement{
		Name:        name,
		ElementType: store.TypeFunction,
		Content:     content,
		FilePath:    "synthetic.py",
		Language:    "Python",
		StartLine:   1,
		EndLine:     2,
	}
}

func tableOf(t *testing.T, els ...*store.CodeElement) *store.Table {
	t.Helper()
	table := store.NewTable()
	require.NoError(t, table.Update(func(tx *store.Tx) error {
		for _, el := range els {
			tx.Insert(el)
		}
		return nil
	}))
	return table
}

func TestFindRoot_Priority(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		keyword string
		want    string
		how     string
	}{
		{"exact wins", []string{"Cache.get", "get", "get_all"}, "get", "get", "exact"},
		{"method suffix", []string{"Cache.get", "Store.get", "get_all"}, "get", "Cache.get", "method"},
		{"substring", []string{"widget_get_all", "get_all"}, "get", "get_all", "partial"},
		{"suffix needs a dot", []string{"forget"}, "get", "forget", "partial"},
		{"no match", []string{"alpha", "beta"}, "gamma", "", ""},
		{"empty keyword", []string{"alpha"}, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var els []*store.CodeElement
			for _, n := range tt.names {
				els = append(els, pyFunc(n, "pass"))
			}
			table := tableOf(t, els...)
			require.NoError(t, table.View(func(tx *store.Tx) error {
				el, how := findRoot(tx, tt.keyword)
				assert.Equal(t, tt.how, how)
				if tt.want == "" {
					assert.Nil(t, el)
				} else {
					require.NotNil(t, el)
					assert.Equal(t, tt.want, el.Name)
				}
				return nil
			}))
		})
	}
}

func TestTrace_CycleSafety(t *testing.T) {
	table := tableOf(t,
		pyFunc("ping", "return pong()"),
		pyFunc("pong", "return ping()"),
	)
	e := newTestEngine(t)

	root, err := e.traceTable(context.Background(), table, "ping", time.Time{})
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "ping", root.Name)
	require.Equal(t, []string{"pong"}, childNames(root))
	assert.Empty(t, root.NestedElements[0].NestedElements)
}

func TestTrace_SelfReference(t *testing.T) {
	table := tableOf(t, pyFunc("loop", "return loop()"))
	e := newTestEngine(t)

	root, err := e.traceTable(context.Background(), table, "loop", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, root.NestedElements)
}

func TestTrace_LeavesTableUntouched(t *testing.T) {
	foo := pyFunc("foo", "return bar()")
	bar := pyFunc("bar", "return 1")
	stale := pyFunc("stale", "return 2")
	foo.NestedElements = []*store.CodeElement{stale}
	table := tableOf(t, foo, bar)
	e := newTestEngine(t)

	root, err := e.traceTable(context.Background(), table, "foo", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar"}, childNames(root))
	assert.NotSame(t, foo, root)
	assert.Equal(t, []*store.CodeElement{stale}, foo.NestedElements)
}

func TestTrace_NotFound(t *testing.T) {
	table := tableOf(t, pyFunc("foo", "pass"))
	e := newTestEngine(t)

	root, err := e.traceTable(context.Background(), table, "zzz", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestTrace_CancelledMidway(t *testing.T) {
	table := tableOf(t,
		pyFunc("a", "return b()"),
		pyFunc("b", "return c()"),
		pyFunc("c", "return 1"),
	)
	flag := NewCancelFlag()
	e := newTestEngine(t, WithCancelFlag(flag))
	calls := 0
	tr := &tracer{
		ctx:    context.Background(),
		cancel: flag,
		refs: func(el *store.CodeElement) map[string]struct{} {
			calls++
			if calls == 2 {
				flag.Cancel()
			}
			return e.references(context.Background(), el)
		},
		maxDepth: 10,
		logger:   discardLogger(),
	}

	var (
		root *store.CodeElement
		err  error
	)
	require.NoError(t, table.View(func(tx *store.Tx) error {
		tr.tx = tx
		root, err = tr.run("a")
		return nil
	}))
	require.ErrorIs(t, err, ErrCancelled)
	require.NotNil(t, root)
	assert.Equal(t, "a", root.Name)
	require.Equal(t, []string{"b"}, childNames(root))
	assert.Empty(t, root.NestedElements[0].NestedElements)
}

func TestTrace_DeadlinePassed(t *testing.T) {
	table := tableOf(t, pyFunc("foo", "pass"))
	e := newTestEngine(t)

	_, err := e.traceTable(context.Background(), table, "foo", time.Now().Add(-time.Second))
	require.ErrorIs(t, err, ErrTimeout)
}

func TestTrace_PoisonedTable(t *testing.T) {
	table := store.NewTable()
	_ = table.Update(func(*store.Tx) error { panic("boom") })
	e := newTestEngine(t)

	_, err := e.traceTable(context.Background(), table, "foo", time.Time{})
	require.ErrorIs(t, err, ErrTablePoisoned)
}

func TestReferenceCandidates(t *testing.T) {
	method := &store.CodeElement{Name: "Greeter.greet", ElementType: store.TypeMethod}
	class := &store.CodeElement{Name: "Greeter", ElementType: store.TypeClass}
	fn := &store.CodeElement{Name: "main", ElementType: store.TypeFunction}

	tests := []struct {
		name string
		el   *store.CodeElement
		ref  string
		want []string
	}{
		{"plain", fn, "helper", []string{"helper"}},
		{"dotted", fn, "os.path.join", []string{"os.path.join", "join"}},
		{"self in method", method, "self.decorate", []string{"Greeter.decorate", "self.decorate", "decorate"}},
		{"this in class", class, "this.paint", []string{"Greeter.paint", "this.paint", "paint"}},
		{"Self path call", method, "Self.new", []string{"Greeter.new", "Self.new", "new"}},
		{"self outside a type", fn, "self.x", []string{"self.x", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, referenceCandidates(tt.el, tt.ref))
		})
	}
}

func TestMatchPolicy(t *testing.T) {
	tests := []struct {
		policy  MatchPolicy
		name    string
		keyword string
		want    bool
	}{
		{MatchSubstring, "load_user", "user", true},
		{MatchSubstring, "load_user", "admin", false},
		{MatchExact, "load_user", "user", false},
		{MatchExact, "user", "user", true},
		{MatchPrefix, "user_load", "user", true},
		{MatchPrefix, "load_user", "user", false},
		{MatchSubstring, "anything", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.policy.Matches(tt.name, tt.keyword), "%s %q %q", tt.policy, tt.name, tt.keyword)
	}
}

func TestParseMatchPolicy(t *testing.T) {
	for in, want := range map[string]MatchPolicy{
		"":          MatchSubstring,
		"substring": MatchSubstring,
		"EXACT":     MatchExact,
		"prefix":    MatchPrefix,
	} {
		got, err := ParseMatchPolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMatchPolicy("fuzzy")
	require.Error(t, err)
}
