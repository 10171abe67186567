package codetext

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jward/codetext/internal/lang"
	"github.com/jward/codetext/internal/store"
)

// receiverPrefixes name the enclosing instance or type inside a method
// body. References through them resolve to "Owner.member" first.
var receiverPrefixes = []string{"self.", "this.", "Self."}

// tracer expands a root element into its logic chain. It runs on a single
// goroutine while the caller holds the table lock.
type tracer struct {
	ctx      context.Context
	tx       *store.Tx
	refs     func(el *store.CodeElement) map[string]struct{}
	cancel   *CancelFlag
	deadline time.Time
	maxDepth int
	logger   *slog.Logger

	// visited holds every element name expanded or queued in this trace.
	visited map[string]bool
}

// findRoot selects the element a keyword names: an exact name, else the
// first "Owner.keyword" method, else the first name containing keyword.
// Ties go to the lexicographically smallest name.
func findRoot(tx *store.Tx, keyword string) (*store.CodeElement, string) {
	if keyword == "" {
		return nil, ""
	}
	if el, ok := tx.Get(keyword); ok {
		return el, "exact"
	}
	names := tx.Names()
	suffix := "." + keyword
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			el, _ := tx.Get(name)
			return el, "method"
		}
	}
	for _, name := range names {
		if strings.Contains(name, keyword) {
			el, _ := tx.Get(name)
			return el, "partial"
		}
	}
	return nil, ""
}

// run traces keyword from its root. A nil element with a nil error means
// nothing matched. On cancellation or timeout the partial tree is returned
// with the error.
func (t *tracer) run(keyword string) (*store.CodeElement, error) {
	root, how := findRoot(t.tx, keyword)
	if root == nil {
		t.logger.Info("no matching element found", "keyword", keyword)
		return nil, nil
	}
	t.logger.Info("tracing root element", "keyword", keyword, "name", root.Name, "match", how)
	t.visited = map[string]bool{root.Name: true}
	return t.trace(root, 0)
}

func (t *tracer) trace(el *store.CodeElement, depth int) (*store.CodeElement, error) {
	if err := abortCause(t.ctx, t.cancel, t.deadline); err != nil {
		t.logger.Warn("tracing stopped", "name", el.Name, "depth", depth, "reason", err)
		return nil, err
	}
	if depth >= t.maxDepth {
		t.logger.Debug("stopping trace, max depth reached", "name", el.Name, "depth", depth)
		return el.ShallowClone(), nil
	}

	traced := el.ShallowClone()
	refs := t.refs(el)
	t.logger.Debug("tracing element", "name", el.Name, "depth", depth, "references", len(refs))

	for _, ref := range sortedRefs(refs) {
		target, ok := resolveReference(t.tx, el, ref)
		if !ok {
			t.logger.Debug("reference not found", "from", el.Name, "reference", ref)
			continue
		}
		if t.visited[target.Name] {
			t.logger.Debug("circular reference", "from", el.Name, "reference", ref, "name", target.Name)
			continue
		}
		t.visited[target.Name] = true
		t.logger.Debug("following reference", "from", el.Name, "reference", ref, "name", target.Name)

		child, err := t.trace(target, depth+1)
		if child != nil {
			traced.NestedElements = append(traced.NestedElements, child)
		}
		if err != nil {
			return traced, err
		}
	}
	return traced, nil
}

// resolveReference looks ref up under each of its candidate keys.
func resolveReference(tx *store.Tx, el *store.CodeElement, ref string) (*store.CodeElement, bool) {
	for _, key := range referenceCandidates(el, ref) {
		if target, ok := tx.Get(key); ok {
			return target, true
		}
	}
	return nil, false
}

// referenceCandidates returns the table keys ref may name from inside el,
// most specific first: the owner-qualified member for receiver references,
// the reference itself, then its last dotted segment.
func referenceCandidates(el *store.CodeElement, ref string) []string {
	var out []string
	owner := el.Owner()
	if el.ElementType == store.TypeClass || el.ElementType == store.TypeImpl {
		owner = el.Name
	}
	if owner != "" {
		for _, p := range receiverPrefixes {
			if member, ok := strings.CutPrefix(ref, p); ok {
				out = append(out, owner+"."+member)
				break
			}
		}
	}
	out = append(out, ref)
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		out = append(out, ref[i+1:])
	}
	return out
}

// references is the reference set the tracer follows for el: the
// language parser's forms unioned with the generic call and attribute
// forms.
func (e *Engine) references(ctx context.Context, el *store.CodeElement) map[string]struct{} {
	l, ok := lang.Parse(el.Language)
	if !ok {
		l = lang.ForFile(el.FilePath)
	}
	return lang.Union(
		e.parserFor(ctx, l).FindReferences(el.Content),
		lang.GenericReferences(el.Content),
	)
}

// traceTable traces keyword against table, holding the table lock for the
// whole walk.
func (e *Engine) traceTable(ctx context.Context, table *store.Table, keyword string, deadline time.Time) (*store.CodeElement, error) {
	var (
		root     *store.CodeElement
		traceErr error
	)
	err := table.View(func(tx *store.Tx) error {
		t := &tracer{
			ctx:      ctx,
			tx:       tx,
			refs:     func(el *store.CodeElement) map[string]struct{} { return e.references(ctx, el) },
			cancel:   e.cancel,
			deadline: deadline,
			maxDepth: e.maxDepth,
			logger:   e.logger,
		}
		root, traceErr = t.run(keyword)
		return nil
	})
	if err != nil {
		return nil, poisoned(err)
	}
	return root, traceErr
}
