package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type actionView struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Form        []string `json:"form"`
}

// NewActionsCommand 列出所有可构建的动作
func NewActionsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "actions",
		Short:         "List buildable actions and their form fields",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.service()
			if err != nil {
				return err
			}
			views := make([]actionView, 0)
			for _, a := range sc.Builders.Actions() {
				views = append(views, actionView{ID: a.ID, Description: a.Description, Form: a.FormFields()})
			}

			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				return writeJSON(w, views)
			}
			for _, v := range views {
				fmt.Fprintf(w, "%-40s %s\n", v.ID, v.Description)
				fmt.Fprintf(w, "%-40s form: %s\n", "", strings.Join(v.Form, ", "))
			}
			return nil
		},
	}
}
