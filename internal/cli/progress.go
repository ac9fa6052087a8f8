package cli

import (
	"context"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/cardpress/cardpress/pkg/observability"
)

// renderProgress drives a terminal progress bar from the generator
// hooks: one tick per page side, finished when generation completes.
type renderProgress struct {
	bar *progressbar.ProgressBar
}

func newRenderProgress() *renderProgress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Rendering pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("sides"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionFullWidth(),
	)
	return &renderProgress{bar: bar}
}

func (p *renderProgress) OnPageStart(_ context.Context, _ int, _ string) {
	_ = p.bar.Add(1)
}

func (p *renderProgress) OnCellSkipped(context.Context, int) {}

func (p *renderProgress) OnGenerateComplete(_ context.Context, _, _, _ int, _ time.Duration, _ error) {
	_ = p.bar.Finish()
	_ = p.bar.Clear()
}

// withRenderProgress registers the progress hooks for the duration of
// fn. The previous hooks are restored afterwards.
func withRenderProgress(fn func() error) error {
	observability.SetGeneratorHooks(newRenderProgress())
	defer observability.Reset()
	return fn()
}
