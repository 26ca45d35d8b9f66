package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/core/domain"
)

// ==== Processes Command Tests ====

func TestProcessesCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"list", "show", "categories"} {
		c := findCommand(t, "processes", name)
		assert.Equal(t, name, c.Name())
		assert.NotNil(t, c.Flags().Lookup("json"), name)
	}
}

func TestProcessesList(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("processes", "list", "--category", "HR", "--search", "leave", "--page", "2", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentQuery{Search: "leave", Category: "HR", Page: 2, Limit: 5}, ts.processes.lastQuery)
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "Title:    HR Leave Policy")
	assert.Contains(t, out, "Category: HR")
	assert.Contains(t, out, "Page 1 of 1 (1 documents)")
}

func TestProcessesList_Empty(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.processes.docs = nil

	out, err := execute("processes", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents found.")
}

func TestProcessesList_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("processes", "list", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"TotalPages": 1`)
	assert.Contains(t, out, `"Title": "HR Leave Policy"`)
}

func TestProcessesShow(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("processes", "show", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "Words:      12")
	assert.Contains(t, out, "Assessable: true")
	assert.Contains(t, out, "Created:    2024-03-01 09:00:00")
	assert.Contains(t, out, "Employees request leave through the portal")
}

func TestProcessesShow_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("processes", "show", "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProcessesShow_RequiresID(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("processes", "show")

	assert.Error(t, err)
}

func TestProcessesCategories(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("processes", "categories")

	require.NoError(t, err)
	assert.Equal(t, "All\nFinance\nHR\n", out)
}

func TestProcessesCategories_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("docs", "categories", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"Finance"`)
}
