package codetext

import (
	"context"
	"log/slog"

	"github.com/jward/codetext/internal/lang"
	"github.com/jward/codetext/internal/runtime"
	"github.com/jward/codetext/internal/store"
)

// scriptedParser adds the names returned by a Risor reference script to a
// language parser's reference set. Parsing is delegated unchanged. Script
// failures are logged and contribute no names.
type scriptedParser struct {
	lang.Parser

	ctx      context.Context
	rt       *runtime.Runtime
	script   string
	language lang.Language
	logger   *slog.Logger
}

var _ lang.Parser = (*scriptedParser)(nil)

func (p *scriptedParser) Parse(content, filePath string) []*store.CodeElement {
	return p.Parser.Parse(content, filePath)
}

func (p *scriptedParser) FindReferences(content string) map[string]struct{} {
	refs := p.Parser.FindReferences(content)
	extra, err := p.rt.References(p.ctx, p.script, content, p.language.String())
	if err != nil {
		p.logger.Warn("reference script failed", "script", p.script, "language", p.language, "error", err)
		return refs
	}
	for _, name := range extra {
		refs[name] = struct{}{}
	}
	return refs
}

// parserFor returns the parser for l, wrapped with the reference script
// when one is configured.
func (e *Engine) parserFor(ctx context.Context, l lang.Language) lang.Parser {
	base := lang.ParserFor(l)
	if e.runtime == nil || e.refScript == "" {
		return base
	}
	return &scriptedParser{
		Parser:   base,
		ctx:      ctx,
		rt:       e.runtime,
		script:   e.refScript,
		language: l,
		logger:   e.logger,
	}
}
