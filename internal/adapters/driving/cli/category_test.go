package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

func TestCategoryCommands_Flow(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "category", "add", "Billing", "FAQ")
	require.NoError(t, err)
	assert.Contains(t, out, "Added category Billing FAQ")

	categories := env.categories.Categories()
	require.Len(t, categories, 1)
	catID := categories[0].ID

	out, err = execute(t, "question", "add", catID, "How do refunds work?", "Within 30 days.")
	require.NoError(t, err)
	assert.Contains(t, out, "Added question")
	questionID := env.categories.Categories()[0].Questions[0].ID

	_, err = execute(t, "question", "edit", catID, questionID, "How do refunds work?", "Within 14 days.")
	require.NoError(t, err)
	assert.Equal(t, "Within 14 days.", env.categories.Categories()[0].Questions[0].Answer)

	_, err = execute(t, "category", "rename", catID, "Payments")
	require.NoError(t, err)

	out, err = execute(t, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Payments (1 questions)")
	assert.Contains(t, out, "Q: How do refunds work?")
	assert.Contains(t, out, "A: Within 14 days.")

	ws := savedWorkspace(t, env)
	require.Len(t, ws.Categories, 1)
	assert.Equal(t, "Payments", ws.Categories[0].Name)

	_, err = execute(t, "question", "delete", catID, questionID)
	require.NoError(t, err)
	assert.Empty(t, env.categories.Categories()[0].Questions)

	_, err = execute(t, "category", "delete", catID)
	require.NoError(t, err)
	assert.Empty(t, env.categories.Categories())
}

func TestCategoryList_Query(t *testing.T) {
	env := setupTestServices(t)
	env.categories.AddCategory("Shipping")
	env.categories.AddCategory("Returns")

	out, err := execute(t, "category", "list", "--query", "ship")
	require.NoError(t, err)
	assert.Contains(t, out, "Shipping")
	assert.NotContains(t, out, "Returns")
}

func TestCategoryCommands_NotFound(t *testing.T) {
	setupTestServices(t)

	tests := [][]string{
		{"category", "rename", "missing", "name"},
		{"category", "delete", "missing"},
		{"question", "add", "missing", "q", "a"},
		{"question", "edit", "missing", "q1", "q", "a"},
		{"question", "delete", "missing", "q1"},
	}
	for _, args := range tests {
		_, err := execute(t, args...)
		assert.ErrorIs(t, err, domain.ErrNotFound, args)
	}
}

func TestCategoryAdd_BlankName(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "category", "add", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
