package composer

import (
	"errors"
	"fmt"
)

// Finalize form target; submitting it navigates to the end page
const (
	FinalizeAction = "/lyric_generator/end_page"
	FinalizeMethod = "POST"
	FinalizeField  = "prompt"
)

// ErrCandidateOutOfRange is returned when accepting an index with no rendered candidate
var ErrCandidateOutOfRange = errors.New("candidate index out of range")

// UIState is everything the composer page renders from
type UIState struct {
	Controls        Controls `json:"controls"`
	Draft           string   `json:"draft"`
	Candidates      []string `json:"candidates,omitempty"`
	ErrorMessage    string   `json:"error_message,omitempty"`
	Loading         bool     `json:"loading"`
	SubmitDisabled  bool     `json:"submit_disabled"`
	FinalizeEnabled bool     `json:"finalize_enabled"`
}

// NewUIState returns the state of a freshly loaded page
func NewUIState() *UIState {
	return &UIState{Controls: DefaultControls()}
}

// BeginRequest enters the loading state: error hidden, candidates cleared, submit disabled
func (s *UIState) BeginRequest() {
	s.ErrorMessage = ""
	s.Candidates = nil
	s.SubmitDisabled = true
	s.Loading = true
}

// EndRequest leaves the loading state; called on success and on failure
func (s *UIState) EndRequest() {
	s.SubmitDisabled = false
	s.Loading = false
}

// ShowCandidates replaces the rendered candidates, keeping service order
func (s *UIState) ShowCandidates(candidates []string) {
	s.Candidates = append([]string(nil), candidates...)
}

// TakeGeneration copies the outcome of a generation run on from into s.
// The draft and finalize controls of s are kept.
func (s *UIState) TakeGeneration(from *UIState) {
	s.Controls = from.Controls
	s.Candidates = append([]string(nil), from.Candidates...)
	s.ErrorMessage = from.ErrorMessage
	s.Loading = from.Loading
	s.SubmitDisabled = from.SubmitDisabled
}

// ShowError puts err's message in the error region
func (s *UIState) ShowError(err error) {
	s.ErrorMessage = err.Error()
}

// Accept appends candidate i to the draft and enables finalizing
func (s *UIState) Accept(i int) error {
	if err := s.checkCandidate(i); err != nil {
		return err
	}

	s.Draft = ComposeDraft(s.Draft, s.Controls.Prompt, s.Candidates[i])
	s.Candidates = nil
	s.FinalizeEnabled = true
	return nil
}

func (s *UIState) checkCandidate(i int) error {
	if i < 0 || i >= len(s.Candidates) {
		return fmt.Errorf("%w: %d of %d", ErrCandidateOutOfRange, i, len(s.Candidates))
	}
	return nil
}

// Reset clears the draft, the prompt and the candidates and disables finalizing
func (s *UIState) Reset() {
	s.Draft = ""
	s.Controls.Prompt = ""
	s.Candidates = nil
	s.FinalizeEnabled = false
}

// FinalizeForm is the form that carries the draft to the end page
type FinalizeForm struct {
	Method string
	Action string
	Fields map[string]string
}

// FinalizeForm builds the end page form from the current draft
func (s *UIState) FinalizeForm() FinalizeForm {
	return FinalizeForm{
		Method: FinalizeMethod,
		Action: FinalizeAction,
		Fields: map[string]string{FinalizeField: s.Draft},
	}
}
