package service

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/ludo-technologies/mvnparity/domain"
)

// IsInteractiveEnvironment reports whether stderr is a terminal and neither
// CI nor MVNPARITY_NO_PROGRESS is set
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("MVNPARITY_NO_PROGRESS") != "" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewProgressManager returns a progress bar on stderr when enabled and stderr
// is interactive, and a no-op manager otherwise
func NewProgressManager(enabled bool) domain.ProgressManager {
	if !enabled || !IsInteractiveEnvironment() {
		return &NoOpProgressManager{}
	}
	return NewProgressManagerTo(os.Stderr)
}

// NewProgressManagerTo renders progress bars on w unconditionally
func NewProgressManagerTo(w io.Writer) *ProgressManagerImpl {
	return &ProgressManagerImpl{writer: w}
}

// ProgressManagerImpl draws one bar per started task. A parse run starts a
// single task counting finished parsers.
type ProgressManagerImpl struct {
	writer io.Writer

	mu   sync.Mutex
	bars []*progressbar.ProgressBar
}

// StartTask starts a bar that completes after total increments
func (pm *ProgressManagerImpl) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.writer),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowBytes(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(pm.writer, "\n")
		}),
	)

	pm.mu.Lock()
	pm.bars = append(pm.bars, bar)
	pm.mu.Unlock()

	return &barProgress{bar: bar, prefix: description}
}

// IsInteractive always reports true
func (pm *ProgressManagerImpl) IsInteractive() bool {
	return true
}

// Close finishes every bar still open
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, bar := range pm.bars {
		if !bar.IsFinished() {
			_ = bar.Finish()
		}
	}
	pm.bars = nil
}

// barProgress adapts a progressbar to domain.TaskProgress
type barProgress struct {
	bar    *progressbar.ProgressBar
	prefix string
}

func (p *barProgress) Increment(n int) {
	_ = p.bar.Add(n)
}

// Describe shows the item that last changed next to the task description
func (p *barProgress) Describe(item string) {
	p.bar.Describe(p.prefix + ": " + item)
}

func (p *barProgress) Complete() {
	if !p.bar.IsFinished() {
		_ = p.bar.Finish()
	}
}

// NoOpProgressManager implements ProgressManager without output
type NoOpProgressManager struct{}

func (pm *NoOpProgressManager) StartTask(_ string, _ int) domain.TaskProgress {
	return &NoOpTaskProgress{}
}

func (pm *NoOpProgressManager) IsInteractive() bool { return false }

func (pm *NoOpProgressManager) Close() {}

// NoOpTaskProgress implements TaskProgress without output
type NoOpTaskProgress struct{}

func (tp *NoOpTaskProgress) Increment(_ int) {}

func (tp *NoOpTaskProgress) Describe(_ string) {}

func (tp *NoOpTaskProgress) Complete() {}
