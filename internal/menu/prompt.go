package menu

import (
	"errors"

	"github.com/kbfirmware/kbsetup/internal/terminal"
)

const (
	answerYes = "Yes"
	answerNo  = "No"
)

// Confirm displays a yes/no menu and reports whether the user picked "Yes".
// Canceling the menu counts as "No" rather than an error.
func Confirm(s terminal.Screen, prompt string, defaultNo bool) (bool, error) {
	defaultIndex := 0
	if defaultNo {
		defaultIndex = 1
	}

	m := &Menu[string]{
		Title:        prompt,
		Items:        []string{answerYes, answerNo},
		DefaultIndex: defaultIndex,
	}

	answer, err := m.Show(s)
	if errors.Is(err, ErrCanceled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return answer == answerYes, nil
}
