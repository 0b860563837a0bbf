package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage question categories",
	Long: `Manage categories of question/answer pairs, the older content model
that is kept alongside chunks and stored in every autosave and version.`,
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories and their questions",
	RunE:  runCategoryList,
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a category",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCategoryRename,
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category and its questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryDelete,
}

var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Manage questions inside a category",
}

var questionAddCmd = &cobra.Command{
	Use:   "add <category-id> <question> <answer>",
	Short: "Add a question",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuestionAdd,
}

var questionEditCmd = &cobra.Command{
	Use:   "edit <category-id> <question-id> <question> <answer>",
	Short: "Replace a question and its answer",
	Args:  cobra.ExactArgs(4),
	RunE:  runQuestionEdit,
}

var questionDeleteCmd = &cobra.Command{
	Use:   "delete <category-id> <question-id>",
	Short: "Delete a question",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuestionDelete,
}

func init() {
	categoryListCmd.Flags().StringP("query", "q", "", "Only list categories matching the query")
	categoryListCmd.Flags().Bool("json", false, "Output as JSON")

	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryRenameCmd, categoryDeleteCmd)
	questionCmd.AddCommand(questionAddCmd, questionEditCmd, questionDeleteCmd)
	rootCmd.AddCommand(categoryCmd, questionCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("%w: category name is empty", domain.ErrInvalidInput)
	}
	category := categoryService.AddCategory(name)
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Added category %s (%s)\n", category.Name, category.ID)
	return nil
}

func runCategoryList(cmd *cobra.Command, _ []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	categories := categoryService.Categories()
	if query != "" {
		categoryService.FilterCategories(query)
		categories = categoryService.FilteredCategories()
	}

	if jsonFlag(cmd) {
		return printJSON(cmd, categories)
	}

	if len(categories) == 0 {
		cmd.Println("No categories found.")
		return nil
	}
	for _, c := range categories {
		cmd.Printf("%s  %s (%d questions)\n", c.ID, c.Name, len(c.Questions))
		for _, q := range c.Questions {
			cmd.Printf("    %s  Q: %s\n", q.ID, preview(q.Question, 60))
			cmd.Printf("    %s  A: %s\n", strings.Repeat(" ", len(q.ID)), preview(q.Answer, 60))
		}
	}
	return nil
}

func runCategoryRename(cmd *cobra.Command, args []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if err := categoryService.RenameCategory(args[0], name); err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Renamed category %s to %s\n", args[0], name)
	return nil
}

func runCategoryDelete(cmd *cobra.Command, args []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	if !categoryService.DeleteCategory(args[0]) {
		return fmt.Errorf("failed to delete category: %w", domain.ErrNotFound)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Deleted category %s\n", args[0])
	return nil
}

func runQuestionAdd(cmd *cobra.Command, args []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	question, err := categoryService.AddQuestion(args[0], args[1], args[2])
	if err != nil {
		return fmt.Errorf("failed to add question: %w", err)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Added question %s\n", question.ID)
	return nil
}

func runQuestionEdit(cmd *cobra.Command, args []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	if err := categoryService.UpdateQuestion(args[0], args[1], args[2], args[3]); err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Updated question %s\n", args[1])
	return nil
}

func runQuestionDelete(cmd *cobra.Command, args []string) error {
	if err := requireCategories(); err != nil {
		return err
	}

	if !categoryService.DeleteQuestion(args[0], args[1]) {
		return fmt.Errorf("failed to delete question: %w", domain.ErrNotFound)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Deleted question %s\n", args[1])
	return nil
}
