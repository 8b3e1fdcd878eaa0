package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tabsync/tabsync/internal/config"
	"github.com/tabsync/tabsync/internal/render"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List connection profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, settings, err := loadConfig()
			if err != nil {
				return err
			}

			active, _ := settings.CurrentProfileName()
			if config.IsStringSet(tsFlags.Profile) {
				active = *tsFlags.Profile
			}
			out := cmd.OutOrStdout()
			names := settings.ProfileNames()
			if len(names) == 0 {
				fmt.Fprintf(out, "no profiles in %s\n", config.AppProfilesFile)
				return nil
			}
			for _, name := range names {
				p, err := settings.GetProfile(name)
				if err != nil {
					return err
				}
				mark := " "
				if name == active {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-16s %s\n", mark, name, render.Missing(p.URL))
			}

			return nil
		},
	}
}

func newAliasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "List table aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.InitLocs(); err != nil {
				return err
			}
			aa := config.NewAliases()
			if err := aa.Load(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range aa.Names() {
				fmt.Fprintf(out, "%-16s %s\n", name, aa.Get(name))
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set NAME TABLE",
		Short: "Name a table, given as source/id",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := config.InitLocs(); err != nil {
				return err
			}
			aa := config.NewAliases()
			if err := aa.Load(); err != nil {
				return err
			}
			if err := aa.Set(args[0], args[1]); err != nil {
				return err
			}
			return aa.Save()
		},
	}
	cmd.AddCommand(set)

	return cmd
}
