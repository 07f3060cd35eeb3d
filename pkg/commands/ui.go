package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kako-rgb/djnoday/pkg/commands/options"
	"github.com/kako-rgb/djnoday/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	ao := &options.AuthorOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
noday ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cfg, err := loadEngine()
			if err != nil {
				return err
			}
			author := ao.Author
			if author == "" {
				author = cfg.Author()
			}
			i := ui.UI{Author: author, Engine: e}
			return i.Do(context.Background())
		},
	}

	options.AddAuthorArgs(cmd, ao)

	topLevel.AddCommand(cmd)
}
