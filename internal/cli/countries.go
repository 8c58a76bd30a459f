package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCountriesCmd(app *App, s *settings) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "Print the country list the form offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := s.provider(app).Load(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(app.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(names)
			}
			for _, n := range names {
				fmt.Fprintln(app.Out, n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}
