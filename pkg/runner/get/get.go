package get

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kako-rgb/djnoday/pkg/engine"
	"github.com/kako-rgb/djnoday/pkg/printers"
)

type Get struct {
	ShowID bool
	Table  bool

	Engine *engine.Engine
}

// Do pulls the latest snapshot and prints the merged view. A pull failure is
// not fatal: the view falls back to the cached snapshot and is flagged stale.
func (n *Get) Do(ctx context.Context) error {
	if n.Engine == nil {
		return errors.New("can not get, no engine")
	}

	if err := n.Engine.Pull(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pull: %v\n", err)
	}
	_ = n.Engine.Drain(ctx)

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	v := n.Engine.Projection()

	pp.NewLine()
	pp.TitleWithCount("requests", len(v.Items))
	if v.Stale {
		pp.Stale()
	}
	if n.Table {
		pp.Table(v)
		pp.NewLine()
		return nil
	}
	pp.Requests(v.Items...)
	return nil
}
