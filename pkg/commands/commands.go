package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/kako-rgb/djnoday/pkg/engine"
	"github.com/kako-rgb/djnoday/pkg/remote"
	"github.com/kako-rgb/djnoday/pkg/store"
)

var (
	output = &base.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "noday",
		Short: base.Wrap80("Shared song requests on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addAdd(topLevel)
	addGet(topLevel)
	addRm(topLevel)
	addSync(topLevel)
	addServe(topLevel)
	addVersion(topLevel)
}

// loadEngine wires the durable store and the remote client into an engine
// using the resolved config.
func loadEngine() (*engine.Engine, store.Config, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, nil, err
	}
	r, err := remote.NewHTTP(cfg.RemoteURL())
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.New(engine.Options{Remote: r, Persistence: p})
	if err != nil {
		return nil, nil, err
	}
	return e, cfg, nil
}
