package runtime

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"github.com/risor-io/risor/object"
)

// patternCache memoizes compiled regular expressions across script runs.
type patternCache struct {
	mu sync.RWMutex
	re map[string]*regexp.Regexp
}

func newPatternCache() *patternCache {
	return &patternCache{re: make(map[string]*regexp.Regexp)}
}

func (c *patternCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	re, ok := c.re[pattern]
	c.mu.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.re[pattern] = re
	c.mu.Unlock()
	return re, nil
}

// makeFindAllFn creates the "find_all" host function.
//
// find_all(pattern, text) → []string
//
// Each item is the first capture group of a match, or the whole match when
// the pattern has no groups. Empty captures are dropped.
func makeFindAllFn(cache *patternCache) *object.Builtin {
	return object.NewBuiltin("find_all", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("find_all", 2, len(args))
		}

		patternStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("find_all: pattern must be a string, got %s", args[0].Type())
		}

		textStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("find_all: text must be a string, got %s", args[1].Type())
		}

		re, err := cache.compile(patternStr.Value())
		if err != nil {
			return object.Errorf("find_all: invalid pattern: %v", err)
		}

		results := []object.Object{}
		for _, m := range re.FindAllStringSubmatch(textStr.Value(), -1) {
			v := m[0]
			if len(m) > 1 {
				v = m[1]
			}
			if v != "" {
				results = append(results, object.NewString(v))
			}
		}
		return object.NewList(results)
	})
}

// logObject provides log.Debug/Info/Warn/Error methods for Risor scripts,
// forwarding to the host's structured logger.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Debug(msg string) {
	l.logger.Debug(msg)
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}
