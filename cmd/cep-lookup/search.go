package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/i474232898/cep-lookup/internal/history"
	"github.com/i474232898/cep-lookup/internal/lookup"
)

var validate = validator.New()

var searchCmd = &cobra.Command{
	Use:   "search <cep>",
	Short: "Look up a postal code and record it in the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := lookup.NormalizePostalCode(args[0])
		if err := validate.Var(code, lookup.PostalCodeRule); err != nil {
			return errors.New(lookup.Message(lookup.ErrValidation))
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Mount(ctx); err != nil {
			return err
		}

		out, err := a.session.Search(ctx, code)
		if msg := lookup.Message(err); msg != "" {
			return errors.New(msg)
		}
		if err != nil {
			return err
		}

		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

func printOutcome(w io.Writer, out lookup.Outcome) {
	addr := out.Address
	fmt.Fprintf(w, "CEP:          %s\n", out.PostalCode)
	fmt.Fprintf(w, "Street:       %s\n", addr.Street)
	if addr.Complement != "" {
		fmt.Fprintf(w, "Complement:   %s\n", addr.Complement)
	}
	fmt.Fprintf(w, "Neighborhood: %s\n", addr.Neighborhood)
	fmt.Fprintf(w, "City:         %s\n", addr.City)
	fmt.Fprintf(w, "State:        %s\n", addr.State)

	if wx := out.Weather; out.Enriched && wx != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Weather in %s (%s)\n", wx.City, wx.Provider)
		if wx.Description != "" {
			fmt.Fprintf(w, "  %s\n", wx.Description)
		}
		fmt.Fprintf(w, "  Temperature: %.1f°C (feels like %.1f°C)\n", wx.Temperature, wx.FeelsLike)
		fmt.Fprintf(w, "  Min/Max:     %.1f°C / %.1f°C\n", wx.TempMin, wx.TempMax)
		fmt.Fprintf(w, "  Humidity:    %.0f%%\n", wx.Humidity)
		fmt.Fprintf(w, "  Pressure:    %.0f hPa\n", wx.Pressure)
		fmt.Fprintf(w, "  Sunrise:     %s\n", wx.SunriseText)
		fmt.Fprintf(w, "  Sunset:      %s\n", wx.SunsetText)
	}

	if out.Diagnostic != "" {
		fmt.Fprintf(w, "\nwarning: %s\n", out.Diagnostic)
	}
	fmt.Fprintln(w)
	printHistory(w, out.History)
}

func printHistory(w io.Writer, list history.List) {
	if len(list) == 0 {
		fmt.Fprintln(w, "History is empty.")
		return
	}
	fmt.Fprintln(w, "History:")
	for i, code := range list {
		fmt.Fprintf(w, "  %d. %s\n", i+1, code)
	}
}
