package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nicky-ayoub/ebitreveal/internal/catalog"
)

var (
	addTitle       string
	addBefore      string
	addAfter       string
	addDescription string
	addTags        []string
	addID          string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the project catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := openStore().List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tTAGS\tCREATED")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, strings.Join(p.Tags, ","), p.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one project as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(p)
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore().Put(cmd.Context(), catalog.Project{
			ID:          addID,
			Title:       addTitle,
			BeforeURL:   addBefore,
			AfterURL:    addAfter,
			Description: addDescription,
			Tags:        addTags,
		})
		if err != nil {
			return err
		}
		logger.Info("project saved", zap.String("id", p.ID), zap.String("title", p.Title))
		fmt.Fprintln(cmd.OutOrStdout(), p.ID)
		return nil
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Remove a project",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openStore().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		logger.Info("project removed", zap.String("id", args[0]))
		return nil
	},
}

func init() {
	catalogAddCmd.Flags().StringVar(&addID, "id", "", "Project ID (generated when empty)")
	catalogAddCmd.Flags().StringVar(&addTitle, "title", "", "Project title")
	catalogAddCmd.Flags().StringVar(&addBefore, "before", "", "Before image path or URL")
	catalogAddCmd.Flags().StringVar(&addAfter, "after", "", "After image path or URL")
	catalogAddCmd.Flags().StringVar(&addDescription, "description", "", "Free text description")
	catalogAddCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag (repeatable)")
	_ = catalogAddCmd.MarkFlagRequired("title")
	_ = catalogAddCmd.MarkFlagRequired("before")
	_ = catalogAddCmd.MarkFlagRequired("after")

	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogAddCmd, catalogRemoveCmd)
}
