package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
)

func TestOpenCmd_Use(t *testing.T) {
	assert.Equal(t, "open [metatext-id]", openCmd.Use)
}

func TestOpenCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"open"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestOpenCmd_Executes(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	_ = configStore.Delete(driven.ConfigKeyCurrentMetaText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"open", "7"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Opened metatext 7: 3 chunks")
	assert.Contains(t, buf.String(), "Active chunk:")

	// The metatext is remembered for later commands
	assert.Equal(t, 7, configStore.GetInt(driven.ConfigKeyCurrentMetaText))
}

func TestOpenCmd_InvalidID(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"open", "not-a-number"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid metatext id")
}
