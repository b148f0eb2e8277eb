package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"suggest/internal/usecase"
)

var (
	fetchLines   int
	fetchMax     int
	fetchJSON    bool
	fetchProject string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [directories...]",
	Short: "Fetch the first lines of files under selected directories",
	Long: `Fetch partial content for files under the given project-relative
directories. Directories resolving outside the project root are
rejected before any content is read.

Example:
  suggest fetch src/auth src/api --lines 30`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().IntVar(&fetchLines, "lines", 0, "lines per file (default from config)")
	fetchCmd.Flags().IntVar(&fetchMax, "max", 0, "maximum total files (default from config)")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output as JSON")
	fetchCmd.Flags().StringVar(&fetchProject, "project", "", "project id (default is the directory name)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newService(st)
	opts := usecase.FetchOptions{
		LineCount:         cfg.Fetch.LineCount,
		MaxTotalFiles:     cfg.Fetch.MaxTotalFiles,
		MaxFilesPerDir:    cfg.Fetch.MaxFilesPerDir,
		MaxFileSize:       cfg.Fetch.MaxFileSize,
		IncludeExtensions: cfg.Fetch.IncludeExtensions,
		ExcludeExtensions: cfg.Fetch.ExcludeExtensions,
	}
	if fetchLines > 0 {
		opts.LineCount = fetchLines
	}
	if fetchMax > 0 {
		opts.MaxTotalFiles = fetchMax
	}

	res, err := svc.FetchPartialContent(projectIDOrDefault(fetchProject), args, opts)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if fetchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	for _, pf := range res.PartialFiles {
		marker := ""
		if pf.Truncated {
			marker = " (truncated)"
		}
		fmt.Printf("== %s: %d/%d lines%s\n%s\n", pf.Path, pf.LineCount, pf.TotalLines, marker, pf.PartialContent)
	}
	fmt.Printf("\n%d found, %d returned, %d skipped, ~%d tokens, %dms\n",
		res.Metadata.TotalFilesFound, res.Metadata.FilesReturned,
		res.Metadata.FilesSkipped, res.Metadata.TotalEstimatedTokens,
		res.Metadata.ProcessingTimeMs)
	return nil
}
