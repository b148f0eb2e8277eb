package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"suggest/internal/domain"
	"suggest/internal/usecase"
)

var (
	filesQuery    string
	filesContext  string
	filesStrategy string
	filesMax      int
	filesJSON     bool
	filesProject  string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Rank indexed files against a request",
	Long: `Rank a project's indexed files against a free-text request.

Examples:
  suggest files -q "implement auth login"
  suggest files -q "add api route" --strategy thorough --max 5 --json`,
	RunE: runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.Flags().StringVarP(&filesQuery, "query", "q", "", "request text (required)")
	filesCmd.Flags().StringVar(&filesContext, "context", "", "additional user context")
	filesCmd.Flags().StringVar(&filesStrategy, "strategy", "balanced", "strategy: fast, balanced or thorough")
	filesCmd.Flags().IntVar(&filesMax, "max", 10, "maximum results")
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "output as JSON")
	filesCmd.Flags().StringVar(&filesProject, "project", "", "project id (default is the directory name)")
	filesCmd.MarkFlagRequired("query")
}

func runFiles(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newService(st)
	res, err := svc.SuggestFiles(cmd.Context(), projectIDOrDefault(filesProject), domain.Query{
		Text:        filesQuery,
		UserContext: filesContext,
	}, usecase.SuggestOptions{
		Strategy:   domain.Strategy(filesStrategy),
		MaxResults: filesMax,
	})
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}

	return printSuggestions(res, filesJSON)
}

func projectIDOrDefault(flag string) string {
	if flag != "" {
		return flag
	}
	return filepath.Base(rootDir)
}

func printSuggestions(res usecase.SuggestResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for i, sc := range res.Scores {
		line := fmt.Sprintf("%2d. %-50s score=%.3f", i+1, sc.ItemID, sc.Total)
		if sc.AIConfidence > 0 {
			line += fmt.Sprintf(" ai=%.2f (%s)", sc.AIConfidence, strings.Join(sc.AIReasons, ","))
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d/%d items analyzed, strategy=%s, ai=%d, %dms\n",
		res.Metadata.AnalyzedItems, res.Metadata.TotalItems,
		res.Metadata.Strategy, res.Metadata.AISelections,
		res.Metadata.ProcessingTimeMs)
	return nil
}
