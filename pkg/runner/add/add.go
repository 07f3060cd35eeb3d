package add

import (
	"context"
	"errors"

	"github.com/kako-rgb/djnoday/pkg/engine"
	"github.com/kako-rgb/djnoday/pkg/printers"
)

type Add struct {
	Author string
	Text   string
	ShowID bool

	Engine *engine.Engine
}

// Do submits the request and prints the resulting view. The item shows up
// immediately as pending; the push to the remote store happens right after,
// and a failure there leaves the item queued for the next sync.
func (n *Add) Do(ctx context.Context) error {
	if n.Engine == nil {
		return errors.New("can not add, no engine")
	}

	r, err := n.Engine.Submit(n.Author, n.Text)
	if err != nil {
		return err
	}
	// Best effort: a failed push keeps the request pending on disk.
	_ = n.Engine.Push(ctx, r.ID)

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	v := n.Engine.Projection()

	pp.NewLine()
	pp.TitleWithCount("requests", len(v.Items))
	if v.Stale {
		pp.Stale()
	}
	pp.Requests(v.Items...)
	return nil
}
