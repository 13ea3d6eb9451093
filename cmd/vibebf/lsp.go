package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mgomes/vibebf/bf"
)

var instructionDocs = map[bf.Instruction]string{
	bf.InstrPointerRight: "move the pointer one cell right, wrapping to cell 0 after the last cell",
	bf.InstrPointerLeft:  "move the pointer one cell left, wrapping from cell 0 to the last cell",
	bf.InstrIncrement:    "add one to the current cell (255 wraps to 0)",
	bf.InstrDecrement:    "subtract one from the current cell (0 wraps to 255)",
	bf.InstrInput:        "read a line from input and store its first byte in the current cell",
	bf.InstrOutput:       "write the current cell as a character",
	bf.InstrLoopOpen:     "start a loop; the body always runs at least once",
	bf.InstrLoopClose:    "jump back to the matching `[` while the current cell is non-zero",
}

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	docs   map[string]string
}

func newLSPServer(r io.Reader, w io.Writer) *lspServer {
	return &lspServer{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
		docs:   make(map[string]string),
	}
}

func lspCommand(args []string) error {
	if len(args) > 0 {
		return errors.New("vibebf lsp: unexpected arguments")
	}
	return newLSPServer(os.Stdin, os.Stdout).serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			ID:      incoming.ID,
			Result: map[string]any{
				"capabilities": map[string]any{
					"textDocumentSync":   1,
					"hoverProvider":      true,
					"completionProvider": map[string]any{"resolveProvider": false},
				},
			},
		}}
	case "initialized", "exit":
		return nil
	case "shutdown":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text)}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil || len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{s.publishDiagnostics(params.TextDocument.URI, latest)}
	case "textDocument/completion":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			ID:      incoming.ID,
			Result:  map[string]any{"isIncomplete": false, "items": completionItems()},
		}}
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
			}}
		}
		doc := hoverText(s.docs[params.TextDocument.URI], params.Position.Line, params.Position.Character)
		if doc == "" {
			return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
		}
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			ID:      incoming.ID,
			Result: map[string]any{
				"contents": map[string]any{"kind": "markdown", "value": doc},
			},
		}}
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			ID:      incoming.ID,
			Error:   &lspResponseError{Code: -32601, Message: "method not found"},
		}}
	}
}

func (s *lspServer) publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(source),
		},
	}
}

func diagnosticsForSource(source string) []map[string]any {
	warnings := analyzeProgram([]rune(source))
	out := make([]map[string]any, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, newDiagnostic(warning.Pos.Line-1, warning.Pos.Column-1, warning.Message))
	}
	return out
}

func newDiagnostic(line, character int, message string) map[string]any {
	return map[string]any{
		"range": map[string]any{
			"start": map[string]any{"line": line, "character": character},
			"end":   map[string]any{"line": line, "character": character + 1},
		},
		"severity": 1,
		"source":   "vibebf-lsp",
		"message":  message,
	}
}

func completionItems() []map[string]any {
	items := make([]map[string]any, 0, len(instructionDocs))
	for _, r := range "+-<>,.[]" {
		items = append(items, map[string]any{
			"label":  string(r),
			"kind":   24, // Operator
			"detail": instructionDocs[bf.Decode(r)],
		})
	}
	return items
}

// hoverText documents the instruction at a zero-based line and character.
func hoverText(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	runes := []rune(lines[line])
	if character < 0 || character >= len(runes) {
		return ""
	}
	r := runes[character]
	doc, ok := instructionDocs[bf.Decode(r)]
	if !ok {
		return ""
	}
	return fmt.Sprintf("`%c`\n\n%s", r, doc)
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
