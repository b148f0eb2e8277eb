package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"suggest/config"
	"suggest/internal/adapter/analyzer"
	"suggest/internal/adapter/fs"
	"suggest/internal/adapter/store"
	"suggest/internal/domain"
	"suggest/internal/port"
)

var indexProjectID string

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a project's files as suggestion candidates",
	Long: `Index files in the specified directory so they can be ranked
against requests. The index is stored in .suggest/items.db within the
target directory.

Examples:
  suggest index .                 # Index current directory
  suggest index /path/to/project  # Index a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexProjectID, "project", "", "project id (default is the directory name)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	projectID := indexProjectID
	if projectID == "" {
		projectID = filepath.Base(path)
	}

	if err := config.EnsureStateDir(path); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	st, err := store.NewBoltStore(config.StoreDBPath(path))
	if err != nil {
		return fmt.Errorf("failed to open item store: %w", err)
	}
	defer st.Close()

	var walker port.FileWalker = fs.NewWalker(cfg.Index.Includes, cfg.Index.Excludes)

	fmt.Printf("Scanning %s...\n", path)
	entries, err := walker.Walk(path)
	if err != nil {
		return fmt.Errorf("walk failed: %w", err)
	}

	if err := st.PutProject(domain.Project{
		ID:        projectID,
		Name:      filepath.Base(path),
		RootDir:   path,
		CreatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to store project: %w", err)
	}
	if err := st.DeleteFilesByProject(projectID); err != nil {
		return fmt.Errorf("failed to clear previous index: %w", err)
	}

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
	)

	indexed := 0
	for _, entry := range entries {
		content, err := fs.ReadFile(path, entry.Path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", entry.Path, "error", err)
			_ = bar.Add(1)
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Path))
		mtime := time.Unix(entry.ModTime, 0)
		file := domain.File{
			ID:        projectID + ":" + entry.Path,
			ProjectID: projectID,
			Path:      entry.Path,
			Name:      filepath.Base(entry.Path),
			Extension: ext,
			Content:   content,
			Size:      entry.Size,
			Imports:   analyzer.ExtractImports(content, ext),
			CreatedAt: mtime,
			UpdatedAt: mtime,
		}
		if err := st.PutFile(file); err != nil {
			return fmt.Errorf("failed to store %s: %w", entry.Path, err)
		}
		indexed++
		_ = bar.Add(1)
	}

	fmt.Printf("\nIndexed %d files into project %q\n", indexed, projectID)
	return nil
}
