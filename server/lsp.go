// Package server implements a language server for program listings:
// diagnostics, completion, hover and jump-target navigation.
package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "cloudcal-lsp"

var log = commonlog.GetLogger("cloudcal.lsp")

// axisDocs describes the push operands that read the current point.
var axisDocs = map[string]string{
	"x": "X coordinate of the cell being evaluated (0-29)",
	"y": "Y coordinate of the cell being evaluated (0-29)",
	"z": "Z coordinate of the cell being evaluated (0-29)",
}

// LspServer provides editor support for program listings. It never runs
// the programs it is shown.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP(version string) *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("cloudcal LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{" "},
	}

	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	log.Info("cloudcal LSP shutting down")
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.setDoc(uri, text)
	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.setDoc(uri, whole.Text)
			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	// Clear diagnostics for the closed document
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) setDoc(uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()
}

func (s *LspServer) doc(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return complete(text, params.Position), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.doc(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return hover(text, params.Position), nil
}

func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.doc(uri)
	if !ok {
		return nil, nil
	}

	target, ok := jumpTarget(text, params.Position)
	if !ok {
		return nil, nil
	}
	return []protocol.Location{{URI: uri, Range: lineRange(target, 0)}}, nil
}

// complete offers mnemonics in the first column and axes after push.
func complete(text string, pos protocol.Position) []protocol.CompletionItem {
	line, ok := lineAt(text, pos.Line)
	if !ok {
		return nil
	}
	col := min(int(pos.Character), len(line))
	before := strings.Fields(line[:col])
	prefix := extractPrefix(text, pos)

	// Cursor is in (or starting) the first token.
	if len(before) == 0 || (len(before) == 1 && prefix != "") {
		items := make([]protocol.CompletionItem, 0, bytecode.OpcodeCount())
		for _, op := range bytecode.AllOpcodes() {
			name := op.String()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			info := bytecode.GetOpcodeInfo(op)
			kind := protocol.CompletionItemKindKeyword
			detail := info.Summary
			items = append(items, protocol.CompletionItem{
				Label:      name,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &name,
			})
		}
		return items
	}

	// Operand of push.
	if before[0] == bytecode.OpPush.String() && (len(before) == 1 || (len(before) == 2 && prefix != "")) {
		var items []protocol.CompletionItem
		for _, axis := range []string{"x", "y", "z"} {
			if !strings.HasPrefix(axis, strings.ToLower(prefix)) {
				continue
			}
			kind := protocol.CompletionItemKindVariable
			detail := axisDocs[axis]
			items = append(items, protocol.CompletionItem{
				Label:      axis,
				Kind:       &kind,
				Detail:     &detail,
				InsertText: &axis,
			})
		}
		return items
	}

	return nil
}

// hover describes the mnemonic or operand under the cursor.
func hover(text string, pos protocol.Position) *protocol.Hover {
	word := extractWord(text, pos)
	if word == "" {
		return nil
	}

	var b strings.Builder
	if op, ok := bytecode.LookupMnemonic(word); ok {
		info := bytecode.GetOpcodeInfo(op)
		fmt.Fprintf(&b, "**%s**", info.Mnemonic)
		if info.Operands > 0 {
			b.WriteString(" `<operand>`")
		}
		fmt.Fprintf(&b, "\n\n%s\n\nStack: pops %d, pushes %d", info.Summary, info.StackPop, info.StackPush)
	} else if doc, ok := axisDocs[strings.ToLower(word)]; ok {
		fmt.Fprintf(&b, "**%s**\n\n%s", strings.ToLower(word), doc)
	} else if target, ok := jumpTarget(text, pos); ok {
		fmt.Fprintf(&b, "Jumps to line %d when the popped value is >= 0", target+1)
	} else {
		return nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// jumpTarget returns the zero-based line a jmpos on the cursor's line
// transfers control to. One instruction per line, so pc equals line. A jump
// that leaves the document has no target.
func jumpTarget(text string, pos protocol.Position) (int, bool) {
	line, ok := lineAt(text, pos.Line)
	if !ok {
		return 0, false
	}
	in, err := bytecode.DecodeLine(line)
	if err != nil || in.Op != bytecode.OpJmpos {
		return 0, false
	}
	target := int(pos.Line) + 1 + int(in.Offset)
	if target < 0 || target >= len(splitLines(text)) {
		return 0, false
	}
	return target, true
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := diagnose(text)
	log.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose reports every line that fails to decode. When the whole listing
// decodes, it reports the static warnings from bytecode.Check instead.
func diagnose(text string) []protocol.Diagnostic {
	lines := splitLines(text)
	diagnostics := []protocol.Diagnostic{}
	source := lspName

	var instructions []bytecode.Instruction
	for i, line := range lines {
		in, err := bytecode.DecodeLine(line)
		if err != nil {
			severity := protocol.DiagnosticSeverityError
			msg := err.Error()
			var de *bytecode.DecodeError
			if errors.As(err, &de) {
				msg = de.Err.Error()
			}
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    lineRange(i, len(line)),
				Severity: &severity,
				Source:   &source,
				Message:  msg,
			})
			continue
		}
		instructions = append(instructions, in)
	}
	if len(diagnostics) > 0 {
		return diagnostics
	}

	prog := bytecode.NewProgram(instructions...)
	for _, w := range bytecode.Check(prog) {
		severity := protocol.DiagnosticSeverityWarning
		width := 0
		if in, ok := prog.At(w.PC); ok {
			width = len(in.String())
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    lineRange(w.PC, width),
			Severity: &severity,
			Source:   &source,
			Message:  w.Message,
		})
	}
	return diagnostics
}

// --- Text extraction helpers ---

// splitLines splits a document into listing lines. A trailing newline does
// not start another line and \r\n endings are accepted.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func lineAt(text string, n protocol.UInteger) (string, bool) {
	lines := strings.Split(text, "\n")
	if int(n) >= len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[n], "\r"), true
}

func lineRange(line, width int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(width)},
	}
}

func isWordChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '-' || ch == '+'
}

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, ok := lineAt(text, pos.Line)
	if !ok {
		return ""
	}
	col := min(int(pos.Character), len(line))

	// Walk backwards from cursor to find the start of the token
	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}

	return line[start:col]
}

// extractWord returns the full token under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, ok := lineAt(text, pos.Line)
	if !ok {
		return ""
	}
	col := min(int(pos.Character), len(line))

	start := col
	for start > 0 && isWordChar(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(rune(line[end])) {
		end++
	}

	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
