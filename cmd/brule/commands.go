package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func compileCmd(types func() (*broute.TypeRegistry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <rule>",
		Short: "Compile a rule and print its pattern",
		Long: `Compile a rule and print the anchored regular expression it matches
with, followed by its placeholder names in source order.

Examples:
  brule compile '/user/<int:id>/edit'
  brule compile --types types.yaml '/commits/<hex:sha>'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := compile(types, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pattern: %s\n", rule.Pattern())
			fmt.Fprintf(out, "params:  %s\n", strings.Join(rule.Names(), ", "))

			return nil
		},
	}
}

func matchCmd(types func() (*broute.TypeRegistry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "match <rule> <path>",
		Short: "Match a path against a rule",
		Long: `Match a path against a rule and print the captured parameters, one
name=value pair per line in sorted order. Exits with an error when the
path does not match.

Examples:
  brule match '/user/<int:id>' /user/42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := compile(types, args[0])
			if err != nil {
				return err
			}

			params, ok := rule.MatchPath(args[1])
			if !ok {
				return errors.Newf("%q does not match %q", args[1], rule)
			}

			names := lo.Keys(params)
			slices.Sort(names)

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, params[name])
			}

			return nil
		},
	}
}

func urlCmd(types func() (*broute.TypeRegistry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "url <rule> [name=value...]",
		Short: "Build the URL of a rule",
		Long: `Substitute the given parameters into a rule and print the result.
Every placeholder needs a value that is valid for its type.

Examples:
  brule url '/user/<int:id>/edit' id=42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := compile(types, args[0])
			if err != nil {
				return err
			}

			params := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return errors.Newf("invalid parameter %q, expected name=value", arg)
				}

				params[name] = value
			}

			url, err := broute.RouteOf(rule).URL(params)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), url)

			return nil
		},
	}
}

func typesCmd(types func() (*broute.TypeRegistry, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the available placeholder types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := types()
			if err != nil {
				return err
			}

			for _, name := range reg.Names() {
				frag, _ := reg.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", name, frag)
			}

			return nil
		},
	}
}

func compile(types func() (*broute.TypeRegistry, error), src string) (*broute.Rule, error) {
	reg, err := types()
	if err != nil {
		return nil, err
	}

	return broute.CompileRule(src, reg)
}
