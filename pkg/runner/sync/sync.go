package sync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kako-rgb/djnoday/pkg/engine"
	"github.com/kako-rgb/djnoday/pkg/printers"
)

type Sync struct {
	ShowID bool

	Engine *engine.Engine
}

// Do runs one full reconciliation cycle by hand: push the pending queue,
// pull a fresh snapshot, expire old requests, then print the result.
func (n *Sync) Do(ctx context.Context) error {
	if n.Engine == nil {
		return errors.New("can not sync, no engine")
	}

	pending := n.Engine.PendingCount()
	if err := n.Engine.Drain(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "push: %v\n", err)
	}
	if err := n.Engine.Pull(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pull: %v\n", err)
	}
	expired := n.Engine.Sweep()

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	v := n.Engine.Projection()

	pp.NewLine()
	pp.TitleWithCount("requests", len(v.Items))
	if v.Stale {
		pp.Stale()
	}
	pp.Requests(v.Items...)

	pushed := pending - n.Engine.PendingCount()
	fmt.Printf("pushed %d, expired %d, %d still pending\n", pushed, expired, n.Engine.PendingCount())
	return nil
}
