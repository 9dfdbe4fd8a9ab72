package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	checkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// defaultWidth is assumed until the terminal reports its real size.
const defaultWidth = 80

// TUI implements UI with a live Bubble Tea progress display. The
// program renders inline (no alternate screen) so the last frame stays
// in the scrollback once the scan finishes.
type TUI struct {
	output  io.Writer
	input   io.Reader
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewTUI creates a TUI writing to output and reading confirmations
// from input.
func NewTUI(output io.Writer, input io.Reader) *TUI {
	return &TUI{output: output, input: input}
}

// Start launches the progress display in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := StartConfig{}
	for _, option := range options {
		option(&config)
	}

	model := newScanModel(config.mode)

	if f, ok := t.output.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			model.width = width
		}
	}

	t.program = tea.NewProgram(model, tea.WithOutput(t.output), tea.WithInput(nil))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// Close tears down the live display.
func (t *TUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}

	t.stop()
}

// Wait blocks until the display finished rendering its last frame.
func (t *TUI) Wait(ctx context.Context) {
	if t.done == nil {
		return
	}

	select {
	case <-t.done:
	case <-ctx.Done():
	}
}

// StageStarted implements UI.
func (t *TUI) StageStarted(stage m.Stage, candidates int) {
	t.send(stageStartedMsg{stage: stage, candidates: candidates})
}

// StageProgress implements UI.
func (t *TUI) StageProgress(stage m.Stage, done, total int) {
	t.send(stageProgressMsg{stage: stage, done: done, total: total})
}

// StageCompleted implements UI.
func (t *TUI) StageCompleted(stage m.Stage, survivors int) {
	t.send(stageCompletedMsg{stage: stage, survivors: survivors})
}

// Summary stops the live display and prints the scan outcome below it.
func (t *TUI) Summary(ctx context.Context, stats m.ScanStats, groups []m.DuplicateGroup) {
	t.stop()

	if err := ctx.Err(); err != nil {
		return
	}

	if stats.Groups == 0 {
		fmt.Fprint(t.output, "\nNo duplicate files found.\n")
		return
	}

	fmt.Fprintf(t.output, "\n%s", renderStatsTable(stats))
	fmt.Fprintf(t.output, "\n%s", renderExampleGroups(groups))
}

// Notice prints a single informational line.
func (t *TUI) Notice(ctx context.Context, message string) {
	t.stop()

	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprintf(t.output, "%s\n", message)
}

// Confirm asks a yes/no question. The live display is stopped first so
// the prompt owns the terminal.
func (t *TUI) Confirm(ctx context.Context, prompt string) bool {
	t.stop()

	if err := ctx.Err(); err != nil {
		return false
	}

	return readConfirmation(t.output, t.input, prompt)
}

// CleanProgress prints an occasional deletion progress line. Deletions
// only start once the live display is gone.
func (t *TUI) CleanProgress(done, failed, total int) {
	t.stop()
	fmt.Fprintf(t.output, "  removed %d/%d (%d failed)\n", done, total, failed)
}

// CleanSummary prints the post-clean outcome.
func (t *TUI) CleanSummary(ctx context.Context, result m.CleanResult, reversible bool, target string) {
	t.stop()

	if err := ctx.Err(); err != nil {
		return
	}

	fmt.Fprint(t.output, renderCleanSummary(result, reversible, target))
}

func (t *TUI) send(msg tea.Msg) {
	if t.program == nil {
		return
	}

	t.program.Send(msg)
}

// stop quits the program and waits for the renderer to settle, leaving
// the final frame on screen. Safe to call more than once.
func (t *TUI) stop() {
	t.once.Do(func() {
		if t.program == nil {
			return
		}

		t.program.Send(scanDoneMsg{})
		<-t.done
	})
}

type stageStartedMsg struct {
	stage      m.Stage
	candidates int
}

type stageProgressMsg struct {
	stage m.Stage
	done  int
	total int
}

type stageCompletedMsg struct {
	stage     m.Stage
	survivors int
}

type scanDoneMsg struct{}

type stageStatus int

const (
	stageRunning stageStatus = iota
	stageDone
)

type stageState struct {
	status     stageStatus
	candidates int
	done       int
	total      int
	survivors  int
}

// scanModel is the Bubble Tea model behind the live display. Stages
// appear as they start and collapse into a check-marked line when they
// complete.
type scanModel struct {
	mode     StartMode
	stages   map[m.Stage]*stageState
	order    []m.Stage
	spinner  spinner.Model
	bar      progress.Model
	width    int
	quitting bool
}

func newScanModel(mode StartMode) scanModel {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(stageStyle))
	bar := progress.New(progress.WithDefaultGradient())

	return scanModel{
		mode:    mode,
		stages:  make(map[m.Stage]*stageState),
		spinner: sp,
		bar:     bar,
		width:   defaultWidth,
	}
}

// Init implements tea.Model.
func (sm scanModel) Init() tea.Cmd {
	return sm.spinner.Tick
}

// Update implements tea.Model.
func (sm scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sm.width = msg.Width
		return sm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			sm.quitting = true
			return sm, tea.Quit
		}

		return sm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		sm.spinner, cmd = sm.spinner.Update(msg)

		return sm, cmd

	case stageStartedMsg:
		sm.ensure(msg.stage)
		state := sm.stages[msg.stage]
		state.status = stageRunning
		state.candidates = msg.candidates

		return sm, nil

	case stageProgressMsg:
		sm.ensure(msg.stage)
		state := sm.stages[msg.stage]
		state.done = msg.done
		state.total = msg.total

		return sm, nil

	case stageCompletedMsg:
		sm.ensure(msg.stage)
		state := sm.stages[msg.stage]
		state.status = stageDone
		state.survivors = msg.survivors

		if state.total > 0 {
			state.done = state.total
		}

		return sm, nil

	case scanDoneMsg:
		sm.quitting = true
		return sm, tea.Quit
	}

	return sm, nil
}

// View implements tea.Model.
func (sm scanModel) View() string {
	var b strings.Builder

	title := "dupeclean scan"
	if sm.mode == ModeClean {
		title = "dupeclean clean"
	}

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	for _, stage := range sm.order {
		b.WriteString(sm.renderStage(stage, sm.stages[stage]))
	}

	if !sm.quitting {
		b.WriteString(subtleStyle.Render("press ctrl+c to abort"))
		b.WriteString("\n")
	}

	return b.String()
}

func (sm scanModel) renderStage(stage m.Stage, state *stageState) string {
	var b strings.Builder

	label := stageStyle.Render(stageLabel(stage))

	switch state.status {
	case stageRunning:
		fmt.Fprintf(&b, "%s%s", sm.spinner.View(), label)

		if state.total > 0 {
			bar := sm.bar
			bar.Width = sm.barWidth()
			fmt.Fprintf(&b, " %s %s",
				bar.ViewAs(float64(state.done)/float64(state.total)),
				subtleStyle.Render(fmt.Sprintf("%d/%d", state.done, state.total)))
		} else if state.done > 0 {
			fmt.Fprintf(&b, " %s", subtleStyle.Render(fmt.Sprintf("%d files", state.done)))
		}

		b.WriteString("\n")
	case stageDone:
		fmt.Fprintf(&b, "%s %s %s\n",
			checkStyle.Render("✓"), label,
			subtleStyle.Render(stageOutcome(stage, state.survivors)))
	}

	return b.String()
}

func (sm scanModel) barWidth() int {
	width := sm.width - 40

	if width < 10 {
		return 10
	}

	if width > 40 {
		return 40
	}

	return width
}

// ensure registers a stage the first time any message mentions it.
func (sm *scanModel) ensure(stage m.Stage) {
	if _, ok := sm.stages[stage]; ok {
		return
	}

	sm.stages[stage] = &stageState{}
	sm.order = append(sm.order, stage)
}

func stageLabel(stage m.Stage) string {
	switch stage {
	case m.StageTraversal:
		return "scan files"
	case m.StagePartialDigest:
		return "partial digests"
	case m.StageFullDigest:
		return "full digests"
	case m.StageVerify:
		return "byte verification"
	}

	return stage.String()
}

func stageOutcome(stage m.Stage, survivors int) string {
	switch stage {
	case m.StageTraversal:
		return fmt.Sprintf("%d size-collision candidates", survivors)
	case m.StagePartialDigest:
		return fmt.Sprintf("%d candidates remain", survivors)
	case m.StageFullDigest:
		return fmt.Sprintf("%d duplicates", survivors)
	case m.StageVerify:
		return fmt.Sprintf("%d verified", survivors)
	}

	return fmt.Sprintf("%d", survivors)
}
