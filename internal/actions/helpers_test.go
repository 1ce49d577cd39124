package actions_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"reaper.dev/reaper/internal/config"
	"reaper.dev/reaper/internal/demo"
	"reaper.dev/reaper/internal/engine"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// newDemoContext builds a runtime context over gw that logs into the returned buffer
func newDemoContext(t *testing.T, gw *demo.Gateway) (*runtime.Context, *bytes.Buffer) {
	t.Helper()
	eng := engine.NewEngine(gw, engine.Options{
		Protected:     engine.NewProtectedSet(config.DefaultProtectedBranches...),
		DefaultRemote: "origin",
		ForceLocal:    true,
	})

	var out bytes.Buffer
	splog, err := tui.NewSplogWithConfig(&out, "")
	require.NoError(t, err)

	ctx := runtime.NewContext(eng)
	ctx.Splog = splog
	ctx.Config.FetchOnStart = false
	ctx.RepoName = "reaper-demo"
	return ctx, &out
}

// scriptedPrompter answers prompts from a queue. Select answers are option
// labels, MultiSelect answers are label lists, Confirm answers are bools.
// An error in the queue is returned by whichever prompt comes next.
type scriptedPrompter struct {
	t       *testing.T
	answers []any
	// asked records every prompt message in order
	asked []string
	// offered records the options of every MultiSelect
	offered [][]string
}

var _ tui.Prompter = (*scriptedPrompter)(nil)

func newPrompter(t *testing.T, answers ...any) *scriptedPrompter {
	return &scriptedPrompter{t: t, answers: answers}
}

func (p *scriptedPrompter) next(message string) any {
	p.t.Helper()
	p.asked = append(p.asked, message)
	require.NotEmpty(p.t, p.answers, "unexpected prompt %q", message)
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer
}

func (p *scriptedPrompter) Select(message string, options []string) (int, error) {
	switch answer := p.next(message).(type) {
	case error:
		return 0, answer
	case string:
		for i, o := range options {
			if o == answer {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no option %q in %v", answer, options)
	default:
		return 0, fmt.Errorf("Select got answer %v", answer)
	}
}

func (p *scriptedPrompter) MultiSelect(message string, options []string) ([]int, error) {
	p.offered = append(p.offered, options)
	switch answer := p.next(message).(type) {
	case error:
		return nil, answer
	case []string:
		var indices []int
		for _, want := range answer {
			found := false
			for i, o := range options {
				if o == want {
					indices = append(indices, i)
					found = true
				}
			}
			if !found {
				return nil, fmt.Errorf("no option %q in %v", want, options)
			}
		}
		return indices, nil
	default:
		return nil, fmt.Errorf("MultiSelect got answer %v", answer)
	}
}

func (p *scriptedPrompter) Confirm(message string, _ bool) (bool, error) {
	switch answer := p.next(message).(type) {
	case error:
		return false, answer
	case bool:
		return answer, nil
	default:
		return false, fmt.Errorf("Confirm got answer %v", answer)
	}
}

// done fails the test when scripted answers were never asked for
func (p *scriptedPrompter) done() {
	p.t.Helper()
	require.Empty(p.t, p.answers, "unused answers")
}
