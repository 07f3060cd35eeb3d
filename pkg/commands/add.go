package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"github.com/kako-rgb/djnoday/pkg/commands/options"
	"github.com/kako-rgb/djnoday/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	ao := &options.AuthorOptions{}
	io := &options.IDOptions{}

	var text string

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"request"},
		Short:   "Add a song request",
		Example: `
noday add Shape of You
noday add --name Ana Red Red Wine
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a request")
			}
			text = strings.Join(args, " ")

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cfg, err := loadEngine()
			if err != nil {
				return err
			}
			author := ao.Author

			if author == "" {
				author = cfg.Author()
			}
			s := add.Add{
				Author: author,
				Text:   text,
				ShowID: io.ShowID,
				Engine: e,
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddAuthorArgs(cmd, ao)
	options.AddShowIDArgs(cmd, io)
	base.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}
