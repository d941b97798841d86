package wizard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbfirmware/kbsetup/internal/gitrepo"
	"github.com/kbfirmware/kbsetup/internal/menu"
)

// selectRepo decides which user config repo to modify: an explicit path
// from the config, the current directory when it is (or the user says it
// is) a config repo, or a fresh clone.
func (w *Wizard) selectRepo(ctx context.Context) (*gitrepo.Repo, error) {
	if w.cfg.RepoPath != "" {
		return gitrepo.New(w.cfg.RepoPath, w.log), nil
	}

	repo := gitrepo.New(".", w.log)
	if repo.IsRepo() {
		use, err := w.shouldUseCurrentDirectory()
		if err != nil {
			return nil, err
		}
		if use {
			return repo, nil
		}
	}

	return w.cloneRepo(ctx)
}

func (w *Wizard) shouldUseCurrentDirectory() (bool, error) {
	if exists("build.yaml") && exists(filepath.Join("config", "west.yml")) {
		// Looks like a user config repo. Use it automatically.
		return true, nil
	}

	cwd, _ := os.Getwd()
	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "Found an existing Git repo at %s\n", cwd)
	fmt.Fprintln(w.out, "but it doesn't look like a keyboard config repo.")
	fmt.Fprintln(w.out)

	const (
		edit   = "Edit this repo"
		clone  = "Clone a new repo here"
		cancel = "Cancel"
	)

	choice, err := menu.Show(w.screen, "Select an option:", []string{edit, clone, cancel}, nil)
	if err != nil {
		return false, err
	}

	switch choice {
	case edit:
		return true, nil
	case clone:
		return false, nil
	default:
		return false, menu.ErrCanceled
	}
}

func (w *Wizard) cloneRepo(ctx context.Context) (*gitrepo.Repo, error) {
	template := strings.TrimSuffix(w.cfg.TemplateURL, ".git")

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "This tool must clone your user config repo locally for modifications.")
	fmt.Fprintln(w.out, "(If you have done this already, press Ctrl+C to cancel and re-run the")
	fmt.Fprintln(w.out, "tool from the repo folder.)")
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "If you do not have a user config repo, please sign in to https://github.com,")
	fmt.Fprintln(w.out, "open the following URL, click the \"Use this template\" button, and follow the")
	fmt.Fprintln(w.out, "instructions to create your repo.")
	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "    %s\n", template)
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Next, go to your repo page on GitHub and click the \"Code\" button. Copy the")
	fmt.Fprintln(w.out, "repo URL and paste it here (Ctrl+Shift+V or right click).")
	fmt.Fprintln(w.out)

	repoURL, err := w.promptLine(ctx, "Repo URL: ")
	if err != nil {
		return nil, err
	}
	if repoURL == "" {
		return nil, menu.ErrCanceled
	}

	repoName := repoNameFromURL(repoURL)

	repo, err := gitrepo.Clone(repoURL, repoName, w.log)
	if err != nil {
		return nil, &StopError{Reason: err.Error()}
	}
	return repo, nil
}

func repoNameFromURL(url string) string {
	name := strings.TrimSuffix(url, ".git")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
