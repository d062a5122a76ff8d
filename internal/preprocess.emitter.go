package internal

import "io"

// EmitterConfig controls how lines reach the output
type EmitterConfig struct {
	KeepLines      bool
	Substitute     bool
	EchoDirectives bool
}

// Emitter writes the filtered output stream. Every written line ends with
// a single newline.
type Emitter struct {
	w     io.Writer
	cfg   EmitterConfig
	lines int
}

// NewEmitter creates an emitter over w
func NewEmitter(w io.Writer, cfg EmitterConfig) *Emitter {
	return &Emitter{w: w, cfg: cfg}
}

// Content routes a non-directive line. Live lines are written, optionally
// substituted; skipped lines become blank in keep-lines mode.
func (e *Emitter) Content(line string, live bool, table *MacroTable) error {
	if live {
		if e.cfg.Substitute && table != nil {
			line = table.Substitute(line, true)
		}
		return e.writeLine(line)
	}
	if e.cfg.KeepLines {
		return e.writeLine(StringValueEmpty)
	}
	return nil
}

// Directive handles a directive line. echo marks define and include lines,
// which are written verbatim when echoing is enabled, inert branches included.
func (e *Emitter) Directive(raw string, echo bool) error {
	if echo && e.cfg.EchoDirectives {
		return e.writeLine(raw)
	}
	if e.cfg.KeepLines {
		return e.writeLine(StringValueEmpty)
	}
	return nil
}

// Lines returns the number of lines written so far
func (e *Emitter) Lines() int {
	return e.lines
}

func (e *Emitter) writeLine(line string) error {
	if _, err := io.WriteString(e.w, line+LineTerminator); err != nil {
		return err
	}
	e.lines++
	return nil
}
