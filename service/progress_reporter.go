package service

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ludo-technologies/cobscn/domain"
)

// ProgressReporterImpl implements domain.ProgressReporter for verbose,
// per-section output: one line per section as it finishes.
type ProgressReporterImpl struct {
	writer    io.Writer
	total     int
	processed int
	startTime time.Time
	enabled   bool
	verbose   bool
}

// NewProgressReporter creates a verbose progress reporter writing to writer
// (stderr if nil).
func NewProgressReporter(writer io.Writer, enabled, verbose bool) *ProgressReporterImpl {
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressReporterImpl{writer: writer, enabled: enabled, verbose: verbose}
}

func (p *ProgressReporterImpl) StartProgress(total int) {
	if !p.enabled {
		return
	}
	p.total = total
	p.processed = 0
	p.startTime = time.Now()
	if p.verbose {
		fmt.Fprintf(p.writer, "restructuring %d section(s)...\n", total)
	} else if total > 1 {
		fmt.Fprintf(p.writer, "restructuring %d sections...\n", total)
	}
}

func (p *ProgressReporterImpl) UpdateProgress(currentUnit string, processed, total int) {
	if !p.enabled {
		return
	}
	p.processed = processed
	if p.verbose {
		fmt.Fprintf(p.writer, "[%d/%d] %s\n", processed+1, total, currentUnit)
	}
}

func (p *ProgressReporterImpl) FinishProgress() {
	if !p.enabled {
		return
	}
	elapsed := time.Since(p.startTime)
	fmt.Fprintf(p.writer, "done in %v\n", elapsed.Truncate(time.Millisecond))
}

// NoOpProgressReporter discards every call; used for non-interactive output
// (piped stdout, --quiet, MCP tool calls).
type NoOpProgressReporter struct{}

func NewNoOpProgressReporter() *NoOpProgressReporter { return &NoOpProgressReporter{} }

func (n *NoOpProgressReporter) StartProgress(int)             {}
func (n *NoOpProgressReporter) UpdateProgress(string, int, int) {}
func (n *NoOpProgressReporter) FinishProgress()                {}

// ManagerProgressReporter adapts the task-keyed ProgressManager (and its
// terminal progress bar) to the simpler StartProgress/UpdateProgress/
// FinishProgress triad the driver speaks, running the whole batch as a
// single named task.
type ManagerProgressReporter struct {
	manager domain.ProgressManager
	task    string
}

func NewManagerProgressReporter(manager domain.ProgressManager, task string) *ManagerProgressReporter {
	return &ManagerProgressReporter{manager: manager, task: task}
}

func (m *ManagerProgressReporter) StartProgress(total int) {
	m.manager.Initialize(total)
	m.manager.StartTask(m.task)
}

func (m *ManagerProgressReporter) UpdateProgress(currentUnit string, processed, total int) {
	m.manager.UpdateProgress(m.task, processed, total)
}

func (m *ManagerProgressReporter) FinishProgress() {
	m.manager.CompleteTask(m.task, true)
	m.manager.Close()
}

// CreateProgressReporter picks a reporter for the destination: silent for
// any writer other than os.Stdout/os.Stderr or a single-section run with no
// verbosity need, a bar
// for many sections, verbose line-per-section when requested.
func CreateProgressReporter(writer io.Writer, total int, verbose bool) domain.ProgressReporter {
	if writer == nil || !isTerminalWriter(writer) {
		return NewNoOpProgressReporter()
	}
	if total == 0 {
		return NewNoOpProgressReporter()
	}
	if verbose {
		return NewProgressReporter(writer, true, true)
	}
	if total == 1 {
		return NewNoOpProgressReporter()
	}
	return NewManagerProgressReporter(NewProgressManager(), "restructure")
}

func isTerminalWriter(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}
