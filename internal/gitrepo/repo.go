// Package gitrepo wraps the git command-line tool for the user config repo.
package gitrepo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kbfirmware/kbsetup/internal/terminal"
)

// Repo is a Git repository at a local path. Commands that produce progress
// output are echoed to the terminal with a "git: " prefix; commands run for
// their output are silent.
type Repo struct {
	path string
	echo io.Writer
	log  *zap.Logger
}

// New returns a Repo for the given path. An empty path means the current
// directory.
func New(path string, logger *zap.Logger) *Repo {
	if path == "" {
		path = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{path: path, echo: os.Stdout, log: logger}
}

// Clone clones url into path and returns the resulting Repo.
func Clone(url, path string, logger *zap.Logger) (*Repo, error) {
	scratch := New(".", logger)
	if err := scratch.Run("clone", url, path); err != nil {
		return nil, err
	}
	return New(path, logger), nil
}

// Path returns the repository's local path.
func (r *Repo) Path() string { return r.path }

// IsRepo reports whether a Git repository exists at this location.
func (r *Repo) IsRepo() bool {
	info, err := os.Stat(filepath.Join(r.path, ".git"))
	return err == nil && info.IsDir()
}

// Run runs git and echoes its combined output line by line.
func (r *Repo) Run(args ...string) error {
	r.log.Info("running git", zap.Strings("args", args), zap.String("path", r.path))

	cmd := exec.Command("git", args...)
	cmd.Dir = r.path
	cmd.Stdin = os.Stdin

	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}

	prefix := terminal.Colorize("git: ", terminal.ColorBlue)
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		fmt.Fprintln(r.echo, prefix+scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

// Output runs git and returns its standard output with trailing whitespace
// trimmed.
func (r *Repo) Output(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.path

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimRight(string(out), " \t\r\n"), nil
}

// RemoteURL returns the URL of the repo's main remote.
func (r *Repo) RemoteURL() (string, error) {
	remote, err := r.Output("remote")
	if err != nil {
		return "", err
	}
	return r.Output("remote", "get-url", remote)
}

// ActionsURL returns the GitHub Actions URL for the repo's remote, or ""
// when the remote is not hosted on GitHub.
func (r *Repo) ActionsURL() (string, error) {
	remoteURL, err := r.RemoteURL()
	if err != nil {
		return "", err
	}
	return actionsURL(remoteURL), nil
}

func actionsURL(remoteURL string) string {
	if !strings.HasPrefix(remoteURL, "https://github.com") {
		return ""
	}
	return strings.TrimSuffix(remoteURL, ".git") + "/actions"
}

// HasChanges reports whether there are uncommitted local changes.
func (r *Repo) HasChanges() (bool, error) {
	status, err := r.Output("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// Fetch runs 'git fetch'.
func (r *Repo) Fetch(args ...string) error {
	return r.Run(append([]string{"fetch"}, args...)...)
}

// Pull runs 'git pull'.
func (r *Repo) Pull() error {
	return r.Run("pull")
}

// HeadRef returns the symbolic ref for the head commit.
func (r *Repo) HeadRef() (string, error) {
	return r.Output("symbolic-ref", "--short", "HEAD")
}

// PushOrigin pushes the current branch to origin and sets it as the
// upstream tracking branch.
func (r *Repo) PushOrigin() error {
	head, err := r.HeadRef()
	if err != nil {
		return err
	}
	return r.Run("push", "-u", "origin", head)
}

// CheckoutFile checks out the file at the repo-relative path from commit.
func (r *Repo) CheckoutFile(commit, path string) error {
	return r.Run("checkout", commit, "--", path)
}

// CommitAll stages all local changes and commits them.
func (r *Repo) CommitAll(message string) error {
	if err := r.Run("add", "."); err != nil {
		return err
	}
	return r.Run("commit", "-m", message)
}

// CheckDependencies verifies that Git is installed and the configuration
// needed for committing has been set. The returned error text is meant for
// the user.
func CheckDependencies() error {
	probe := New(".", nil)

	if _, err := probe.Output("--version"); err != nil {
		return fmt.Errorf("this tool requires Git. Please install it from https://git-scm.com/downloads")
	}

	if _, err := probe.Output("config", "user.name"); err != nil {
		return fmt.Errorf("git username not set!\nRun: git config --global user.name 'My Name'")
	}
	if _, err := probe.Output("config", "user.email"); err != nil {
		return fmt.Errorf("git email not set!\nRun: git config --global user.email 'example@myemail.com'")
	}
	return nil
}
