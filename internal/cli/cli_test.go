package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"render", "graph", "stats", "shapes", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestSceneFileCompletion(t *testing.T) {
	exts, directive := sceneFileCompletion(nil, nil, "")
	if len(exts) != 1 || exts[0] != "toml" {
		t.Errorf("completions = %v, want [toml]", exts)
	}
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("directive = %v, want file extension filter", directive)
	}

	// With the scene already given there is nothing left to complete.
	if _, directive := sceneFileCompletion(nil, []string{"helix.toml"}, ""); directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive after arg = %v, want no file completion", directive)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-test")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-test", appName) {
		t.Errorf("cacheDir = %q, want XDG path", dir)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", appName) {
		t.Errorf("cacheDir = %q, want ~/.cache/%s", dir, appName)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c, err := newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("newCache(true) returned nil")
	}
}

func TestScanScenes(t *testing.T) {
	dir := t.TempDir()
	good := `
name = "good"
[[rule]]
name = "root"
[[rule.step]]
shape = "cube"
`
	if err := os.WriteFile(filepath.Join(dir, "good.toml"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("rules = ["), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := scanScenes(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Sorted by file name: broken.toml first.
	if entries[0].ParseErr == nil {
		t.Error("broken.toml should carry a parse error")
	}
	if entries[1].Name != "good" || entries[1].Rules != 1 {
		t.Errorf("good.toml entry = %+v", entries[1])
	}
}
