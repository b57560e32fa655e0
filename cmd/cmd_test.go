package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nunnai/marketmentor/internal/config"
	"github.com/nunnai/marketmentor/internal/widget"
)

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")), "missing file should be ignored")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("YDC_API_KEY=from-file\nGOOGLE_API_KEY=from-file\n"), 0o600))
	t.Setenv("YDC_API_KEY", "")
	os.Unsetenv("YDC_API_KEY")
	t.Setenv("GOOGLE_API_KEY", "from-env")

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("YDC_API_KEY"))
	assert.Equal(t, "from-env", os.Getenv("GOOGLE_API_KEY"), "existing values must win")
}

func TestCreateTransport(t *testing.T) {
	cfg := config.DefaultConfig()
	tr, err := createTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &widget.BackendTransport{}, tr)

	cfg.Widget.Mode = config.ModeDirect
	t.Setenv(config.EnvOpenAIKey, "")
	_, err = createTransport(cfg)
	assert.Error(t, err, "direct mode without a key should fail")

	t.Setenv(config.EnvOpenAIKey, "sk-test")
	tr, err = createTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &widget.CompletionTransport{}, tr)

	cfg.Widget.Mode = config.ModeSocket
	tr, err = createTransport(cfg)
	require.NoError(t, err)
	assert.IsType(t, &widget.SocketTransport{}, tr)
}

func TestMentorConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.YouResults = 7
	mc := mentorConfig(cfg)
	assert.Equal(t, 7, mc.YouResults)
	assert.Equal(t, cfg.LLM.AnswerModel, mc.AnswerModel)
	assert.Equal(t, cfg.LLM.CacheSize, mc.CacheSize)
}

func TestFormatCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte("**Steps**\n\n- *Register* first"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"format", "--no-footer", "--env-file", "", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	got := strings.TrimSpace(out.String())
	assert.Contains(t, got, "<strong class='section-heading'>Steps</strong>")
	assert.Contains(t, got, "<li><em>Register</em> first</li>")
	assert.NotContains(t, got, "support-message")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 8))
}

func TestAskRejectsNonPositiveTimeout(t *testing.T) {
	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"ask", "--env-file", "", "--timeout", "-1s", "walmart invoices?"})
	t.Cleanup(func() {
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")
}
