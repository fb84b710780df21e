package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

var catalogJSON bool

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List ingested collections",
	Args:  cobra.NoArgs,
	RunE:  runCollections,
}

var subcollectionsCmd = &cobra.Command{
	Use:   "subcollections [collection]",
	Short: "List sub-collections, optionally of one collection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSubcollections,
}

var unitsCmd = &cobra.Command{
	Use:   "units [collection] [subcollection]",
	Short: "List ingested units",
	Long: `Lists ingested units. Collection and sub-collection narrow the list
and are matched case-insensitively.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runUnits,
}

func init() {
	for _, c := range []*cobra.Command{collectionsCmd, subcollectionsCmd, unitsCmd} {
		c.Flags().BoolVar(&catalogJSON, "json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
}

func runCollections(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return notConfigured("catalog")
	}
	return printNames(cmd, catalogService.ListCollections(cmd.Context()), "No collections ingested.")
}

func runSubcollections(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return notConfigured("catalog")
	}
	collection := resolveArg(args, 0, func(name string) string {
		return scopeService.ResolveCollection(cmd.Context(), name).Value
	})
	return printNames(cmd, catalogService.ListSubcollections(cmd.Context(), collection), "No sub-collections found.")
}

func runUnits(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return notConfigured("catalog")
	}
	collection := resolveArg(args, 0, func(name string) string {
		return scopeService.ResolveCollection(cmd.Context(), name).Value
	})
	subcollection := resolveArg(args, 1, func(name string) string {
		return scopeService.ResolveSubcollection(cmd.Context(), collection, name).Value
	})

	units := catalogService.ListUnits(cmd.Context(), collection, subcollection)
	if catalogJSON {
		if units == nil {
			units = []domain.UnitDescriptor{}
		}
		return printJSON(cmd, units)
	}
	if len(units) == 0 {
		cmd.Println("No units found.")
		return nil
	}
	for _, u := range units {
		cmd.Printf("  %s: %s (%s / %s)\n", u.UnitID, u.Title, u.Collection, u.Subcollection)
	}
	return nil
}

// resolveArg returns args[i], resolved when a scope service is wired.
func resolveArg(args []string, i int, resolve func(string) string) string {
	if len(args) <= i {
		return ""
	}
	if scopeService == nil {
		return args[i]
	}
	return resolve(args[i])
}

func printNames(cmd *cobra.Command, names []string, empty string) error {
	if catalogJSON {
		if names == nil {
			names = []string{}
		}
		return printJSON(cmd, names)
	}
	if len(names) == 0 {
		cmd.Println(empty)
		return nil
	}
	for _, name := range names {
		cmd.Println("  " + name)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
