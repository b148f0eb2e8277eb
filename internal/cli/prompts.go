package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"suggest/internal/domain"
	"suggest/internal/usecase"
)

var (
	promptTitle    string
	promptContent  string
	promptTags     []string
	promptProject  string
	promptQuery    string
	promptContext  string
	promptStrategy string
	promptMax      int
	promptJSON     bool
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage and rank reusable prompts",
}

var promptsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a reusable prompt",
	RunE:  runPromptsAdd,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored prompts",
	RunE:  runPromptsList,
}

var promptsSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank stored prompts against a request",
	RunE:  runPromptsSuggest,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsAddCmd, promptsListCmd, promptsSuggestCmd)

	promptsCmd.PersistentFlags().StringVar(&promptProject, "project", "", "project id (default is the directory name)")

	promptsAddCmd.Flags().StringVarP(&promptTitle, "title", "t", "", "prompt title (required)")
	promptsAddCmd.Flags().StringVarP(&promptContent, "content", "c", "", "prompt content (required)")
	promptsAddCmd.Flags().StringSliceVar(&promptTags, "tags", nil, "comma separated tags")
	promptsAddCmd.MarkFlagRequired("title")
	promptsAddCmd.MarkFlagRequired("content")

	promptsSuggestCmd.Flags().StringVarP(&promptQuery, "query", "q", "", "request text (required)")
	promptsSuggestCmd.Flags().StringVar(&promptContext, "context", "", "additional user context")
	promptsSuggestCmd.Flags().StringVar(&promptStrategy, "strategy", "balanced", "strategy: fast, balanced or thorough")
	promptsSuggestCmd.Flags().IntVar(&promptMax, "max", 5, "maximum results")
	promptsSuggestCmd.Flags().BoolVar(&promptJSON, "json", false, "output as JSON")
	promptsSuggestCmd.MarkFlagRequired("query")
}

func runPromptsAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	projectID := projectIDOrDefault(promptProject)
	now := time.Now()
	prompt := domain.Prompt{
		ID:        fmt.Sprintf("%s:%d", slugify(promptTitle), now.UnixNano()),
		ProjectID: projectID,
		Title:     promptTitle,
		Content:   promptContent,
		Tags:      promptTags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.PutPrompt(prompt); err != nil {
		return fmt.Errorf("failed to store prompt: %w", err)
	}

	fmt.Printf("Stored prompt %q in project %q\n", prompt.ID, projectID)
	return nil
}

func runPromptsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	prompts, err := st.ListPrompts(projectIDOrDefault(promptProject))
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}
	if len(prompts) == 0 {
		fmt.Println("No prompts stored.")
		return nil
	}
	for _, p := range prompts {
		fmt.Printf("%-40s %-30s [%s]\n", p.ID, p.Title, strings.Join(p.Tags, ","))
	}
	return nil
}

func runPromptsSuggest(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newService(st)
	res, err := svc.SuggestPrompts(cmd.Context(), projectIDOrDefault(promptProject), domain.Query{
		Text:        promptQuery,
		UserContext: promptContext,
	}, usecase.SuggestOptions{
		Strategy:   domain.Strategy(promptStrategy),
		MaxResults: promptMax,
	})
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}

	return printSuggestions(res, promptJSON)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
