// Package wizard drives the interactive flow that adds a keyboard to a
// user's firmware config repository.
package wizard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kbfirmware/kbsetup/internal/buildmatrix"
	"github.com/kbfirmware/kbsetup/internal/config"
	"github.com/kbfirmware/kbsetup/internal/fetch"
	"github.com/kbfirmware/kbsetup/internal/gitrepo"
	"github.com/kbfirmware/kbsetup/internal/hardware"
	"github.com/kbfirmware/kbsetup/internal/menu"
	"github.com/kbfirmware/kbsetup/internal/terminal"
)

// StopError aborts the wizard with a message for the user. It is distinct
// from cancellation: the wizard cannot proceed, but nothing went wrong with
// the machinery.
type StopError struct {
	Reason string
}

func (e *StopError) Error() string { return e.Reason }

// Wizard runs the setup flow against one terminal.
type Wizard struct {
	cfg    *config.Config
	screen terminal.Screen
	log    *zap.Logger

	stdin *bufio.Reader
	out   io.Writer
}

// New creates a wizard reading line input from stdin and printing to stdout.
func New(cfg *config.Config, screen terminal.Screen, logger *zap.Logger) *Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{
		cfg:    cfg,
		screen: screen,
		log:    logger,
		stdin:  bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run walks the user through adding a keyboard: pick a repo, pick the
// hardware, download missing files, register the build, commit and push.
// Cancellation surfaces as menu.ErrCanceled; anything the wizard refuses to
// continue past surfaces as a StopError.
func (w *Wizard) Run(ctx context.Context) error {
	return mapCanceled(w.run(ctx))
}

func (w *Wizard) run(ctx context.Context) error {
	if err := gitrepo.CheckDependencies(); err != nil {
		return &StopError{Reason: err.Error()}
	}

	repo, err := w.selectRepo(ctx)
	if err != nil {
		return err
	}

	dirty, err := repo.HasChanges()
	if err != nil {
		return err
	}
	if dirty {
		return &StopError{Reason: "You have local changes in this repo. Please commit or stash them first."}
	}

	if err := repo.Pull(); err != nil {
		return err
	}
	if err := w.checkRepoFiles(repo); err != nil {
		return err
	}

	selected, err := w.selectKeyboard(ctx)
	if err != nil {
		return err
	}

	copyKeymap, err := menu.Confirm(w.screen, "Copy the stock keymap for customization?", false)
	if err != nil {
		return err
	}

	remote, err := repo.RemoteURL()
	if err != nil {
		return err
	}
	w.printPendingChanges(remote, selected, copyKeymap)

	proceed, err := menu.Confirm(w.screen, "Continue?", false)
	if err != nil {
		return err
	}
	if !proceed {
		return menu.ErrCanceled
	}

	if err := w.applyChanges(ctx, repo, selected, copyKeymap); err != nil {
		return err
	}
	return w.commitAndPush(repo, selected)
}

// printPendingChanges summarizes what will be added before asking the user
// to confirm.
func (w *Wizard) printPendingChanges(remote string, sel *hardware.Selection, copyKeymap bool) {
	fmt.Fprintln(w.out, "Adding the following to your user config repo:")

	boards := terminal.Colorize("("+strings.Join(sel.BoardIDs, " ")+")", terminal.ColorGray)

	if len(sel.ShieldIDs) > 0 {
		shields := terminal.Colorize("("+strings.Join(sel.ShieldIDs, " ")+")", terminal.ColorGray)
		fmt.Fprintf(w.out, "- Shield:       %s  %s\n", sel.Keyboard.Name, shields)
		fmt.Fprintf(w.out, "- MCU Board:    %s  %s\n", sel.Controller.Name, boards)
	} else {
		fmt.Fprintf(w.out, "- Board:        %s  %s\n", sel.Keyboard.Name, boards)
	}

	copyText := "No"
	if copyKeymap {
		copyText = "Yes"
	}
	fmt.Fprintf(w.out, "- Copy keymap?: %s\n", copyText)
	fmt.Fprintf(w.out, "- Repo URL:     %s\n", remote)
	fmt.Fprintln(w.out)
}

// applyChanges makes the requested changes to the files in the repo.
func (w *Wizard) applyChanges(ctx context.Context, repo *gitrepo.Repo, sel *hardware.Selection, copyKeymap bool) error {
	if err := w.downloadFiles(ctx, repo, sel, copyKeymap); err != nil {
		return err
	}

	fmt.Fprintln(w.out, "Updating build matrix...")
	w.log.Info("updating build matrix",
		zap.String("keyboard", sel.Keyboard.ID),
		zap.Strings("boards", sel.BoardIDs),
		zap.Strings("shields", sel.ShieldIDs),
	)
	return buildmatrix.Add(filepath.Join(repo.Path(), "build.yaml"), buildmatrix.Entries(sel))
}

// downloadFiles fetches any keyboard files (config, keymap) that are missing
// for the selected keyboard. A file the remote does not have becomes an
// empty placeholder so the user still gets something to edit.
func (w *Wizard) downloadFiles(ctx context.Context, repo *gitrepo.Repo, sel *hardware.Selection, copyKeymap bool) error {
	base := filepath.Join(repo.Path(), "config")

	names := []string{sel.Keyboard.ConfigFileName()}
	if copyKeymap {
		names = append(names, sel.Keyboard.KeymapFileName())
	}

	for _, name := range names {
		dest := filepath.Join(base, name)
		if exists(dest) {
			fmt.Fprintf(w.out, "%s already exists\n", name)
			continue
		}

		fmt.Fprintf(w.out, "Downloading %s...\n", name)
		url := w.cfg.FilesURL + "/" + sel.Keyboard.Directory + "/" + name
		w.log.Info("downloading file", zap.String("url", url))

		err := fetch.Download(ctx, url, dest)
		if err == nil {
			continue
		}

		var statusErr *fetch.StatusError
		if !errors.As(err, &statusErr) {
			return err
		}

		fmt.Fprintln(w.out, err)
		w.log.Warn("download failed, writing placeholder",
			zap.String("url", url), zap.Int("status", statusErr.StatusCode))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, nil, 0644); err != nil {
			return err
		}
	}
	return nil
}

// commitAndPush makes a commit and pushes it.
func (w *Wizard) commitAndPush(repo *gitrepo.Repo, sel *hardware.Selection) error {
	dirty, err := repo.HasChanges()
	if err != nil {
		return err
	}
	if !dirty {
		fmt.Fprintln(w.out, "This keyboard is already in the repo. No changes made.")
		return nil
	}

	fmt.Fprintln(w.out, "Committing changes...")
	fmt.Fprintln(w.out)
	if err := repo.CommitAll("Add " + sel.Keyboard.Name); err != nil {
		return err
	}

	remote, err := repo.RemoteURL()
	if err != nil {
		return err
	}

	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "Pushing changes to %s ...\n", remote)
	fmt.Fprintln(w.out)

	if err := repo.PushOrigin(); err != nil {
		w.log.Error("push failed", zap.Error(err))
		head, headErr := repo.HeadRef()
		if headErr != nil {
			head = "<BRANCH>"
		}
		reason := fmt.Sprintf(`%s
Check your repo's URL and try again by running the following commands:
    git remote rm origin
    git remote add origin <PASTE_REPO_URL_HERE>
    git push --set-upstream origin %s`,
			terminal.Colorize("Failed to push to "+remote, terminal.ColorRed), head)
		return &StopError{Reason: reason}
	}

	fmt.Fprintln(w.out)

	actions, err := repo.ActionsURL()
	if err == nil && actions != "" {
		fmt.Fprintln(w.out, terminal.Colorize(
			"Success! Your firmware will be available from GitHub Actions at:", terminal.ColorGreen))
		fmt.Fprintln(w.out)
		fmt.Fprintf(w.out, "    %s\n", actions)
	} else {
		fmt.Fprintln(w.out, terminal.Colorize("Success!", terminal.ColorGreen))
	}
	return nil
}

// promptLine reads one echoed line of input. EOF and context cancellation
// (Ctrl+C) both count as cancellation. The read runs in a goroutine because
// a blocked terminal read cannot be unblocked from here; on cancellation
// the pending read is abandoned.
func (w *Wizard) promptLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(w.out, prompt)

	type readResult struct {
		line string
		err  error
	}
	results := make(chan readResult, 1)
	go func() {
		line, err := w.stdin.ReadString('\n')
		results <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", menu.ErrCanceled
	case res := <-results:
		line := strings.TrimSpace(res.line)
		if res.err != nil {
			if errors.Is(res.err, io.EOF) && line != "" {
				return line, nil
			}
			if errors.Is(res.err, io.EOF) {
				return "", menu.ErrCanceled
			}
			return "", res.err
		}
		return line, nil
	}
}

// mapCanceled folds a context cancellation, the shape Ctrl+C takes during a
// blocking network operation, into the menu's cancellation sentinel so it is
// never reported as a failure.
func mapCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return menu.ErrCanceled
	}
	return err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
