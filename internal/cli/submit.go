package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanizio/regform/internal/registration"
)

// newSubmitCmd validates and submits a record given entirely by flags, for
// scripts and smoke tests.
func newSubmitCmd(app *App, s *settings) *cobra.Command {
	var (
		rec    registration.Record
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a registration given by flags and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := registration.NewForm()
			defer form.Discard()

			values := map[string][]string{}
			for _, field := range registration.Fields {
				values[field] = rec.Value(field)
			}
			res, err := form.Load(values)
			if err != nil {
				return err
			}
			if !res.Valid {
				for _, field := range registration.Fields {
					if msg := res.Error(field); msg != "" {
						fmt.Fprintln(app.Err, errorStyle.Render(field+": "+msg))
					}
				}
				return res.Err()
			}
			if dryRun {
				fmt.Fprintln(app.Out, hintStyle.Render("Valid."))
				return nil
			}

			api, err := s.submitter(app)
			if err != nil {
				return err
			}
			coord := registration.NewCoordinator(api, &toaster{out: app.Out})
			_, err = coord.Submit(context.WithoutCancel(cmd.Context()), form)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&rec.Name, "name", "", "full name")
	f.StringVar(&rec.Email, "email", "", "email address")
	f.StringVar(&rec.Phone, "phone", "", "phone number")
	f.StringVar(&rec.Country, "country", "", "country display name")
	f.StringSliceVar(&rec.Hobbies, "hobby", nil, "hobby, repeatable (Reading, Music, Sports, Coding)")
	f.StringVar(&rec.Religion, "religion", "", "Christianity, Islam, Hinduism, or Other")
	f.BoolVar(&dryRun, "dry-run", false, "validate only")
	return cmd
}
