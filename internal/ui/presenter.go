package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/steveyegge/gqld/internal/deploy"
)

// Presenter prints one line per finished or failed deployment stage.
type Presenter struct {
	Out io.Writer
	// Verbose also prints a line when a stage starts.
	Verbose bool

	mu sync.Mutex
}

// Handle is a deploy.Listener.
func (p *Presenter) Handle(e deploy.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case deploy.EventStarted:
		if p.Verbose {
			fmt.Fprintf(p.Out, "%s %s\n", StatusSkip.Icon(), RenderMuted(e.Stage.Title()+"..."))
		}
	case deploy.EventFinished:
		icon := StatusPass.Icon()
		if e.Stage == deploy.StageUpdateCheck && e.Detail != "" {
			icon = StatusWarn.Icon()
		}
		fmt.Fprintf(p.Out, "%s %s", icon, e.Stage.Title())
		if e.Detail != "" {
			fmt.Fprintf(p.Out, " %s", RenderMuted("("+e.Detail+")"))
		}
		fmt.Fprintln(p.Out)
		if len(e.Changes) > 0 {
			fmt.Fprint(p.Out, RenderChanges(e.Changes))
		}
	case deploy.EventFailed:
		fmt.Fprintf(p.Out, "%s %s\n", StatusFail.Icon(), e.Stage.Title())
		if e.Err != nil {
			fmt.Fprintf(p.Out, "%s%s\n", RenderMuted(DetailIndent), RenderFail(e.Err.Error()))
		}
	}
}
