package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRequiresFiles(t *testing.T) {
	cmd := NewRootCommand("test", "none", "now")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 1 file")
}

func TestRootCommandListLanguages(t *testing.T) {
	listLanguages = true
	defer func() { listLanguages = false }()

	cmd := NewRootCommand("test", "none", "now")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--list-languages"})

	assert.NoError(t, cmd.Execute())
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCommand("test", "none", "now")

	for _, name := range []string{"config", "lang", "save-as-pdf", "debug", "list-languages"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}

	assert.Equal(t, "l", cmd.PersistentFlags().Lookup("lang").Shorthand)
}

func TestRootCommandVersion(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc", "today")

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
}
