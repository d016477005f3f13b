package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	cardiogrpc "github.com/bibbank/cardiorisk/internal/presentation/grpc"
)

// errAborted is returned when the user interrupts a prompt.
var errAborted = errors.New("aborted")

// InputConfig configures a text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
}

// Prompter asks the user for values. The survey implementation talks to the
// terminal; tests substitute a scripted one.
type Prompter interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}

	var opts []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out int
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

// collectInputs prompts for every field the server describes, in form order.
func collectInputs(ctx context.Context, p Prompter, fields []cardiogrpc.FieldMsg) (map[string]any, error) {
	inputs := make(map[string]any, len(fields))
	for _, f := range fields {
		if len(f.Options) > 0 {
			labels := make([]string, len(f.Options))
			def := 0
			for i, o := range f.Options {
				labels[i] = o.Label
				if o.Value == f.Default {
					def = i
				}
			}
			idx, err := p.Select(ctx, SelectConfig{Message: f.Label, Options: labels, DefaultIndex: def})
			if err != nil {
				return nil, err
			}
			if idx < 0 || idx >= len(f.Options) {
				return nil, fmt.Errorf("%s: no option selected", f.Name)
			}
			inputs[f.Name] = f.Options[idx].Value
			continue
		}

		answer, err := p.Input(ctx, InputConfig{
			Message:   f.Label,
			Default:   f.Default,
			Help:      fmt.Sprintf("%v to %v", f.Min, f.Max),
			Validator: rangeValidator(f),
		})
		if err != nil {
			return nil, err
		}
		x, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		inputs[f.Name] = x
	}
	return inputs, nil
}

// rangeValidator accepts numbers within the field's range; integer fields
// also require whole numbers.
func rangeValidator(f cardiogrpc.FieldMsg) func(string) error {
	return func(s string) error {
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		if f.Kind == "integer" && x != math.Trunc(x) {
			return fmt.Errorf("%v is not a whole number", x)
		}
		if x < f.Min || x > f.Max {
			return fmt.Errorf("must be between %v and %v", f.Min, f.Max)
		}
		return nil
	}
}

// assignedInputs builds the inputs from -set values, filling every other field
// with its form default. Numeric values are parsed here and range checked by
// the server.
func assignedInputs(set map[string]string, fields []cardiogrpc.FieldMsg) (map[string]any, error) {
	known := make(map[string]bool, len(fields))
	inputs := make(map[string]any, len(fields))
	for _, f := range fields {
		known[f.Name] = true
		value, ok := set[f.Name]
		if !ok {
			value = f.Default
		}
		if len(f.Options) > 0 {
			inputs[f.Name] = value
			continue
		}
		x, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.Name, value)
		}
		inputs[f.Name] = x
	}
	for name := range set {
		if !known[name] {
			return nil, fmt.Errorf("unknown field %q", name)
		}
	}
	return inputs, nil
}
