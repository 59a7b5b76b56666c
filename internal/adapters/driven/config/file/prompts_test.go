package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
)

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("WIKICHAT_HOME", home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptQASystem)
	require.NoError(t, err)

	for _, f := range []string{"qa_system.txt", "summarise.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsDefaultContent(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	qa, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)
	assert.Contains(t, qa, "If you don't know the answer")

	summarise, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSummarisePrompt, summarise)
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Summary so far: %s\nNew: %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarise.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_RejectsWrongPlaceholders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarise.txt"), []byte("Only %s here, 100%% sure"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa_system.txt"), []byte("Answer about %s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	summarise, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSummarisePrompt, summarise)

	qa, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQASystemPrompt, qa)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptQASystem)
	require.NoError(t, os.Remove(filepath.Join(dir, "qa_system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQASystemPrompt, prompt)
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSummarisePrompt, prompt)

	_, err = store.Load("unknown")
	assert.Error(t, err)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)

	modified := "Answer briefly."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa_system.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	reloaded, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)
	assert.Equal(t, modified, reloaded)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptSummarise)
			assert.NoError(t, err)
			results[n] = prompt
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "pre-existing custom prompt"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa_system.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptSummarise)

	data, err := os.ReadFile(filepath.Join(dir, "qa_system.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "qa_system.txt"), []byte("\n\n  prompt content  \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptQASystem)
	require.NoError(t, err)
	assert.Equal(t, "prompt content", prompt)
}

func TestLoadPrompt_Fallbacks(t *testing.T) {
	assert.Equal(t, domain.DefaultQASystemPrompt, driven.LoadPrompt(nil, driven.PromptQASystem))

	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSummarisePrompt, driven.LoadPrompt(store, driven.PromptSummarise))
}
