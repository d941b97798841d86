package wizard

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kbfirmware/kbsetup/internal/fetch"
	"github.com/kbfirmware/kbsetup/internal/gitrepo"
	"github.com/kbfirmware/kbsetup/internal/hardware"
	"github.com/kbfirmware/kbsetup/internal/menu"
	"github.com/kbfirmware/kbsetup/internal/terminal"
)

var requiredFiles = []string{
	filepath.Join(".github", "workflows", "build.yml"),
	filepath.Join("config", "west.yml"),
	"build.yaml",
}

// checkRepoFiles verifies that the files a config repo needs are present,
// and offers to initialize the missing ones from the template repo.
func (w *Wizard) checkRepoFiles(repo *gitrepo.Repo) error {
	var missing []string
	for _, rel := range requiredFiles {
		if !exists(filepath.Join(repo.Path(), rel)) {
			missing = append(missing, rel)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, terminal.Colorize("The following required files are missing:", terminal.ColorYellow))
	for _, rel := range missing {
		fmt.Fprintln(w.out, terminal.Colorize("- "+rel, terminal.ColorYellow))
	}
	fmt.Fprintln(w.out)

	initialize, err := menu.Confirm(w.screen, "Initialize these files?", false)
	if err != nil {
		return err
	}
	if !initialize {
		return menu.ErrCanceled
	}

	if err := repo.Fetch(w.cfg.TemplateURL); err != nil {
		return err
	}
	for _, rel := range missing {
		if err := repo.CheckoutFile("FETCH_HEAD", rel); err != nil {
			return err
		}
	}
	return repo.CommitAll("Initialize repo from template")
}

// selectKeyboard prompts the user to pick a keyboard and, for shields, a
// compatible controller board.
func (w *Wizard) selectKeyboard(ctx context.Context) (*hardware.Selection, error) {
	fmt.Fprintln(w.out)

	data, err := fetch.Get(ctx, w.cfg.MetadataURL)
	if err != nil {
		return nil, mapCanceled(err)
	}
	entries, err := hardware.ParseMetadata(data)
	if err != nil {
		return nil, err
	}

	name := func(e *hardware.Entry) string { return e.Name }

	keyboard, err := menu.Show(w.screen, "Pick a keyboard:", hardware.Keyboards(entries), name)
	if err != nil {
		return nil, err
	}

	if keyboard.IsBoard() {
		return hardware.NewBoardSelection(keyboard), nil
	}

	controller, err := menu.Show(w.screen, "Pick an MCU board:", hardware.Controllers(entries, keyboard), name)
	if err != nil {
		return nil, err
	}

	if keyboard.IsSplit() && controller.USBOnly() {
		return nil, &StopError{Reason: "Sorry, ZMK does not yet support wired splits"}
	}

	return hardware.NewShieldSelection(keyboard, controller), nil
}
