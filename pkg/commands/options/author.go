package options

import (
	"github.com/spf13/cobra"
)

// AuthorOptions
type AuthorOptions struct {
	Author string
}

func AddAuthorArgs(cmd *cobra.Command, o *AuthorOptions) {
	cmd.Flags().StringVarP(&o.Author, "name", "n", "",
		"Name shown next to the request. Defaults to the configured name.")
}
