package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/regform/internal/registration"
)

// ErrSubmitFailed is returned when the user gives up after a failed submit.
var ErrSubmitFailed = errors.New("registration was not submitted")

func newRegisterCmd(app *App, s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Fill in the registration form interactively and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := s.submitter(app)
			if err != nil {
				return err
			}
			prov := s.provider(app)
			prov.Start(cmd.Context())

			form := registration.NewForm()
			defer form.Discard()

			f := &flow{
				p:     app.Prompter,
				out:   app.Out,
				form:  form,
				coord: registration.NewCoordinator(api, &toaster{out: app.Out}),
				names: prov.Load,
			}
			return f.run(cmd.Context())
		},
	}
}

// flow walks the user through every field, then submits.
type flow struct {
	p     Prompter
	out   io.Writer
	form  *registration.Form
	coord *registration.Coordinator
	names func(ctx context.Context) ([]string, error)
}

func (f *flow) run(ctx context.Context) error {
	for _, field := range registration.Fields {
		if err := f.ask(ctx, field); err != nil {
			return err
		}
	}

	for {
		f.summary()
		ok, err := f.p.Confirm(ctx, "Submit registration?", true)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(f.out, hintStyle.Render("Not submitted."))
			return nil
		}

		fmt.Fprintln(f.out, hintStyle.Render("Submitting..."))
		out, err := f.coord.Submit(ctx, f.form)
		switch {
		case out.Success:
			return nil
		case errors.Is(err, registration.ErrNotSubmittable):
			if err := f.fixInvalid(ctx); err != nil {
				return err
			}
			continue
		}

		// Values are kept; the user can retry without re-entering them.
		retry, perr := f.p.Confirm(ctx, "Try again?", true)
		if perr != nil {
			return perr
		}
		if !retry {
			return fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		}
	}
}

// ask prompts for field until the engine accepts it.
func (f *flow) ask(ctx context.Context, field string) error {
	for {
		vals, err := f.prompt(ctx, field)
		if err != nil {
			return err
		}
		res, err := f.form.Set(field, vals...)
		if err != nil {
			return err
		}
		msg := res.Error(field)
		if msg == "" {
			return nil
		}
		fmt.Fprintln(f.out, errorStyle.Render("  "+msg))
	}
}

func (f *flow) fixInvalid(ctx context.Context) error {
	res := f.form.Result()
	for _, field := range registration.Fields {
		if _, bad := res.Errors[field]; bad {
			if err := f.ask(ctx, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *flow) prompt(ctx context.Context, field string) ([]string, error) {
	cur := f.form.Record().Value(field)
	def := ""
	if len(cur) > 0 {
		def = cur[0]
	}

	switch field {
	case registration.FieldName:
		return one(f.p.Input(ctx, "Name", def))
	case registration.FieldEmail:
		return one(f.p.Input(ctx, "Email", def))
	case registration.FieldPhone:
		return one(f.p.Input(ctx, "Phone", def))
	case registration.FieldCountry:
		names, err := f.names(ctx)
		if err != nil || len(names) == 0 {
			zap.S().Warnw("country list unavailable, falling back to free text", "err", err)
			return one(f.p.Input(ctx, "Country", def))
		}
		return one(f.p.Select(ctx, "Country", names, def))
	case registration.FieldHobbies:
		return f.p.MultiSelect(ctx, "Hobbies", registration.Hobbies, cur)
	case registration.FieldReligion:
		return one(f.p.Select(ctx, "Religion", registration.Religions, def))
	}
	return nil, &registration.UnknownFieldError{Field: field}
}

func (f *flow) summary() {
	rec := f.form.Record()
	fmt.Fprintln(f.out, hintStyle.Render("Review:"))
	for _, field := range registration.Fields {
		fmt.Fprintf(f.out, "  %-9s %v\n", field, rec.Value(field))
	}
}

func one(s string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}
