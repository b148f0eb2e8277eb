package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"suggest/internal/domain"
	"suggest/internal/usecase"
)

var (
	dirsQuery   string
	dirsMax     int
	dirsJSON    bool
	dirsProject string
)

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Select directories likely to contain relevant files",
	Long: `Ask the model which directories of the indexed project are most
likely to contain files relevant to a request. Without a model API key
the root-level directories are returned with fixed confidence.

Example:
  suggest dirs -q "implement auth login"`,
	RunE: runDirs,
}

func init() {
	rootCmd.AddCommand(dirsCmd)
	dirsCmd.Flags().StringVarP(&dirsQuery, "query", "q", "", "request text (required)")
	dirsCmd.Flags().IntVar(&dirsMax, "max", 5, "maximum directories")
	dirsCmd.Flags().BoolVar(&dirsJSON, "json", false, "output as JSON")
	dirsCmd.Flags().StringVar(&dirsProject, "project", "", "project id (default is the directory name)")
	dirsCmd.MarkFlagRequired("query")
}

func runDirs(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newService(st)
	selections, err := svc.SelectDirectories(cmd.Context(), projectIDOrDefault(dirsProject), domain.Query{Text: dirsQuery}, usecase.DirectoryOptions{
		MaxDirectories: dirsMax,
	})
	if err != nil {
		return fmt.Errorf("directory selection failed: %w", err)
	}

	if dirsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(selections)
	}
	if len(selections) == 0 {
		fmt.Println("No directories selected.")
		return nil
	}
	for _, sel := range selections {
		fmt.Printf("%-40s conf=%.2f %s\n", sel.Path, sel.Confidence, sel.Reason)
	}
	return nil
}
