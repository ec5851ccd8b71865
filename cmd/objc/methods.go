package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var methodsCmd = &cobra.Command{
	Use:   "methods <Class>",
	Short: "List the resolved method table of a class",
	Long: `List every selector a class responds to, merged down its superclass chain,
with the decoded Go-side signature of each method.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classSide, _ := cmd.Flags().GetBool("class")

		rows, err := methodRows(current.reg, args[0], classSide)
		if err != nil {
			return err
		}

		side := "instance"
		if classSide {
			side = "class"
		}
		bold := color.New(color.Bold)
		name := color.New(color.FgGreen)
		sig := color.New(color.FgCyan)

		bold.Printf("%s (%d %s methods)\n", args[0], len(rows), side)
		for _, r := range rows {
			fmt.Printf("  %s %s\n", name.Sprint(r.name), sig.Sprint(r.signature))
		}
		return nil
	},
}

func init() {
	methodsCmd.Flags().Bool("class", false, "list class methods instead of instance methods")
}
