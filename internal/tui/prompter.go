package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// EnvNonInteractive disables every prompt; tests and scripts set it
const EnvNonInteractive = "REAPER_NON_INTERACTIVE"

// ErrInteractiveDisabled is returned when prompts are disabled via REAPER_NON_INTERACTIVE
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (%s is set)", EnvNonInteractive)

// ErrCanceled is returned when the user interrupts a prompt
var ErrCanceled = errors.New("canceled")

// checkInteractiveAllowed returns an error if interactive mode is disabled
func checkInteractiveAllowed() error {
	if os.Getenv(EnvNonInteractive) != "" {
		return ErrInteractiveDisabled
	}
	return nil
}

// Prompter asks the user questions for the menu front end.
// Options are plain labels; answers are indices into them.
type Prompter interface {
	Select(message string, options []string) (int, error)
	MultiSelect(message string, options []string) ([]int, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter with survey
type SurveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter creates a SurveyPrompter; opts are passed to every question
func NewSurveyPrompter(opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{opts: opts}
}

var _ Prompter = (*SurveyPrompter)(nil)

func (p *SurveyPrompter) Select(message string, options []string) (int, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return 0, err
	}

	var answer string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}
	if err := survey.AskOne(prompt, &answer, p.opts...); err != nil {
		return 0, mapSurveyError(err)
	}
	return indexOf(options, answer), nil
}

func (p *SurveyPrompter) MultiSelect(message string, options []string) ([]int, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return nil, err
	}

	var answers []string
	prompt := &survey.MultiSelect{
		Message:  message,
		Options:  options,
		PageSize: 15,
		Help:     "Space to select, Enter to confirm",
	}
	if err := survey.AskOne(prompt, &answers, p.opts...); err != nil {
		return nil, mapSurveyError(err)
	}

	indices := make([]int, 0, len(answers))
	for _, answer := range answers {
		if i := indexOf(options, answer); i >= 0 {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer, p.opts...); err != nil {
		return false, mapSurveyError(err)
	}
	return answer, nil
}

func mapSurveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCanceled
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return -1
}
