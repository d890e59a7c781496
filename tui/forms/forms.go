// Package forms builds the huh forms the trimmer opens over its main screen.
package forms

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/user/clip-trimmer/pkg/timeutil"
)

// RangeInput is bound to the range form fields.
type RangeInput struct {
	Start string
	End   string
}

// NewRangeInput pre-fills the form with the current range.
func NewRangeInput(start, end float64) RangeInput {
	return RangeInput{
		Start: timeutil.FormatTimePrecise(start),
		End:   timeutil.FormatTimePrecise(end),
	}
}

// Parse converts both fields to seconds.
func (r RangeInput) Parse() (start, end float64, err error) {
	start, err = timeutil.ParseTimeToSeconds(r.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	end, err = timeutil.ParseTimeToSeconds(r.End)
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

// NewRangeForm asks for a start and end time. Each field must parse as a
// timestamp within [0, duration]; the ordering of the two is left to the
// session so that a rejected range is reported the same way everywhere.
func NewRangeForm(input *RangeInput, duration float64) *huh.Form {
	within := func(s string) error {
		v, err := timeutil.ParseTimeToSeconds(s)
		if err != nil {
			return err
		}
		if v > duration {
			return errors.New("past the end of the video")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Set range (video is %s)", timeutil.FormatTime(duration))),
			huh.NewInput().
				Title("Start").
				Description("H:MM:SS, MM:SS or seconds").
				Value(&input.Start).
				Validate(within),
			huh.NewInput().
				Title("End").
				Value(&input.End).
				Validate(within),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}

// NewConfirmResetForm asks before the session is cleared.
func NewConfirmResetForm(confirm *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reset session?").
				Description("The selected video and range will be cleared.").
				Affirmative("Reset").
				Negative("Keep").
				Value(confirm),
		),
	).WithTheme(Theme())
}
