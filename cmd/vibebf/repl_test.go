package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgomes/vibebf/bf"
)

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateNonQuitCommandDoesNotReturnCmd(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(":tape")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)
	if cmd != nil {
		t.Fatalf("expected no command for non-quit input")
	}
	if !rm.showTape {
		t.Fatalf("tape toggle should be enabled")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after command")
	}
}

func TestUpdateExecutesProgram(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(lettersProgram)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)
	if len(rm.history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(rm.history))
	}
	entry := rm.history[0]
	if entry.isErr || entry.output != "ABC" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if rm.pointer != 1 || rm.tape[1] != 'C' {
		t.Fatalf("expected tape snapshot, pointer=%d cell=%d", rm.pointer, rm.tape[1])
	}
	if len(rm.cmdHistory) != 1 {
		t.Fatalf("program not recorded in command history")
	}
}

func TestEvaluateConsumesQueuedInput(t *testing.T) {
	m := newREPLModel()
	m, _ = m.handleCommand(":input hello")
	m, _ = m.handleCommand(":input world")
	if len(m.inputs) != 2 {
		t.Fatalf("expected 2 queued lines, got %d", len(m.inputs))
	}

	output, isErr := m.evaluate(",.")
	if isErr || output != "h" {
		t.Fatalf("unexpected result %q (err=%t)", output, isErr)
	}
	if len(m.inputs) != 1 || m.inputs[0] != "world\n" {
		t.Fatalf("expected unread line to stay queued, got %q", m.inputs)
	}
}

func TestEvaluateReportsErrors(t *testing.T) {
	m := newREPLModel()

	output, isErr := m.evaluate(",")
	if !isErr || !strings.Contains(output, bf.ErrEmptyInput.Error()) {
		t.Fatalf("expected empty input error, got %q", output)
	}

	output, isErr = m.evaluate("+[]")
	if !isErr || !strings.Contains(output, bf.ErrStepQuotaExceeded.Error()) {
		t.Fatalf("expected step quota error, got %q", output)
	}
}

func TestResetClearsInputAndTape(t *testing.T) {
	m := newREPLModel()
	m, _ = m.handleCommand(":input x")
	m.evaluate("+++")
	m, _ = m.handleCommand(":reset")
	if len(m.inputs) != 0 || m.tape[0] != 0 || m.pointer != 0 {
		t.Fatalf("reset left state behind: inputs=%q cell=%d pointer=%d", m.inputs, m.tape[0], m.pointer)
	}
}

func TestRenderTapePanelWrapsAroundPointer(t *testing.T) {
	tape := make([]byte, bf.TapeSize)
	tape[bf.TapeSize-1] = 42
	panel := renderTapePanel(tape, 0)
	if !strings.Contains(panel, "3999") || !strings.Contains(panel, "42") {
		t.Fatalf("expected wrapped neighbour in panel:\n%s", panel)
	}
}

func TestViewRendersHistory(t *testing.T) {
	m := newREPLModel()
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = model.(replModel)
	m.textInput.SetValue(lettersProgram)
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := model.(replModel).View()
	if !strings.Contains(view, "ABC") {
		t.Fatalf("expected program output in view:\n%s", view)
	}
}
