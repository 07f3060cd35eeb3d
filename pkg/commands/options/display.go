package options

import (
	"github.com/spf13/cobra"
)

// DisplayOptions
type DisplayOptions struct {
	Table bool
}

func AddTableArgs(cmd *cobra.Command, o *DisplayOptions) {
	cmd.Flags().BoolVarP(&o.Table, "table", "t", false,
		"Render the requests as an aligned table.")
}

// RemoveOptions
type RemoveOptions struct {
	Now bool
}

func AddNowArgs(cmd *cobra.Command, o *RemoveOptions) {
	cmd.Flags().BoolVar(&o.Now, "now", false,
		"Skip the hold countdown and delete immediately.")
}
