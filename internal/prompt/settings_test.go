package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemamodel/pkg/codegen"
)

// scriptedDriver replays canned answers and records every message asked.
type scriptedDriver struct {
	answers  []string
	choices  []int
	confirms []bool
	asked    []string
}

func (s *scriptedDriver) Ask(_ context.Context, q Question) (string, error) {
	s.asked = append(s.asked, q.Message)
	if len(s.answers) == 0 {
		return "", errors.New("no answer scripted")
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	if q.Required && strings.TrimSpace(answer) == "" && q.Default == "" {
		return "", errors.New("a value is required")
	}
	return answer, nil
}

func (s *scriptedDriver) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	s.asked = append(s.asked, message)
	if len(s.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

func (s *scriptedDriver) Choose(_ context.Context, message string, _ []string, _ int) (int, error) {
	s.asked = append(s.asked, message)
	if len(s.choices) == 0 {
		return -1, errors.New("no choice scripted")
	}
	answer := s.choices[0]
	s.choices = s.choices[1:]
	return answer, nil
}

func TestSettings_AsksForMissingSchema(t *testing.T) {
	driver := &scriptedDriver{
		answers:  []string{" pets.yaml ", "out", "pets"},
		choices:  []int{1},
		confirms: []bool{true},
	}
	cfg, err := Settings(context.Background(), driver, codegen.Config{})
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	want := codegen.Config{
		Schema:       "pets.yaml",
		OutDir:       "out",
		Individual:   true,
		Package:      "pets",
		CheckSchemas: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_KeepsProvidedSchema(t *testing.T) {
	driver := &scriptedDriver{
		answers:  []string{"", "  "},
		choices:  []int{0},
		confirms: []bool{false},
	}
	cfg, err := Settings(context.Background(), driver, codegen.Config{Schema: "a.json", Individual: true})
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	want := codegen.Config{Schema: "a.json", OutDir: ".", Package: codegen.DefaultPackageName}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	wantAsked := []string{"Output directory", "Output layout", "Package name", "Compile each definition schema before generating?"}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_UnknownChoiceKeepsLayout(t *testing.T) {
	driver := &scriptedDriver{
		answers:  []string{"out", "pets"},
		choices:  []int{-1},
		confirms: []bool{false},
	}
	cfg, err := Settings(context.Background(), driver, codegen.Config{Schema: "a.json", Individual: true})
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if !cfg.Individual {
		t.Fatalf("expected individual layout to survive an unmatched choice")
	}
}

func TestSettings_PropagatesErrors(t *testing.T) {
	if _, err := Settings(context.Background(), &scriptedDriver{answers: []string{"   "}}, codegen.Config{}); err == nil {
		t.Fatalf("expected required schema error")
	}
	if _, err := Settings(context.Background(), &scriptedDriver{answers: []string{"a.json"}}, codegen.Config{}); err == nil {
		t.Fatalf("expected error once the script runs out")
	}
	if _, err := Settings(context.Background(), nil, codegen.Config{}); err == nil {
		t.Fatalf("expected nil driver error")
	}
}

func TestInterrupted(t *testing.T) {
	if !errors.Is(interrupted(terminal.InterruptErr), ErrAborted) {
		t.Fatalf("expected ErrAborted for an interrupt")
	}
	other := errors.New("boom")
	if !errors.Is(interrupted(other), other) {
		t.Fatalf("expected passthrough")
	}
	if interrupted(nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}

func TestNotBlank(t *testing.T) {
	if notBlank("  ") == nil || notBlank(nil) == nil {
		t.Fatalf("expected blank answers to fail")
	}
	if err := notBlank("x"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSurveyDriver_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSurveyDriver().Ask(ctx, Question{Message: "never shown"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
