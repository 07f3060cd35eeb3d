package rm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/kako-rgb/djnoday/pkg/clock"
	"github.com/kako-rgb/djnoday/pkg/engine"
	"github.com/kako-rgb/djnoday/pkg/hold"
	"github.com/kako-rgb/djnoday/pkg/printers"
)

type Rm struct {
	ID     string
	Now    bool // skip the hold countdown
	ShowID bool

	Engine *engine.Engine
	Clock  clock.Clock
}

// Do deletes one request. Unless --now is set the delete runs through the
// hold countdown: the command counts down the full threshold and ctrl-c
// before it elapses cancels the delete.
func (n *Rm) Do(ctx context.Context) error {
	if n.Engine == nil {
		return errors.New("can not remove, no engine")
	}
	if n.Clock == nil {
		n.Clock = clock.System()
	}

	if !n.Now {
		if err := n.countdown(ctx); err != nil {
			return err
		}
	}

	if err := n.Engine.Delete(ctx, n.ID); err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	v := n.Engine.Projection()
	pp.NewLine()
	pp.TitleWithCount("requests", len(v.Items))
	pp.Requests(v.Items...)
	return nil
}

func (n *Rm) countdown(ctx context.Context) error {
	tracker := hold.NewTracker(n.Clock)
	tracker.Begin(n.ID)

	faint := color.New(color.Faint)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			tracker.Release(n.ID)
			fmt.Println("\ncancelled")
			return ctx.Err()
		case <-ticker.C:
			if ids := tracker.Poll(); len(ids) > 0 {
				fmt.Println("")
				if !tracker.StartDelete(n.ID) {
					return errors.New("delete not confirmed")
				}
				return nil
			}
			_, _ = faint.Printf("\rdeleting %s in %.0fs (ctrl-c cancels) ",
				n.ID, (1-tracker.Progress(n.ID))*hold.Threshold.Seconds())
		}
	}
}
