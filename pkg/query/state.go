// Package query holds the user's selections for a legal question and
// composes them into the prompt sent to the generative API.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/teslashibe/go-nyaya/pkg/law"
)

// Sentinel errors.
var (
	// ErrValidation is wrapped by every error that blocks a submission.
	ErrValidation = errors.New("query: validation failed")

	// ErrEmptyQuery is returned when the query text is blank.
	ErrEmptyQuery = fmt.Errorf("%w: empty query", ErrValidation)

	// ErrNoLaws is returned when no legal code is selected.
	ErrNoLaws = fmt.Errorf("%w: no legal code selected", ErrValidation)

	// ErrUnknownOption is returned by setters for values outside the
	// fixed option lists.
	ErrUnknownOption = errors.New("query: unknown option")
)

// ValidationMessage is shown inline when a submission is rejected.
const ValidationMessage = "Please select at least one legal code and enter a query."

// State is the complete set of user selections for one query.
// Mutate it only through its setter methods.
type State struct {
	SelectedLaws   []law.Law `json:"selected_laws"`
	Audience       string    `json:"audience"`
	Query          string    `json:"query"`
	QueryFocus     string    `json:"query_focus"`
	OutputLanguage string    `json:"output_language"`
}

// NewState returns the selections of a freshly loaded session.
func NewState() State {
	return State{
		SelectedLaws:   []law.Law{law.CPC},
		Audience:       law.DefaultAudience(),
		QueryFocus:     law.DefaultFocus,
		OutputLanguage: law.English,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.SelectedLaws = slices.Clone(s.SelectedLaws)
	return s
}

// HasLaw reports whether l is selected. Identifiers match case-insensitively.
func (s *State) HasLaw(l law.Law) bool {
	if opt, err := law.Lookup(string(l)); err == nil {
		l = opt.ID
	}
	return slices.Contains(s.SelectedLaws, l)
}

// ToggleLaw selects l if absent and deselects it otherwise. The identifier
// is resolved to its catalogue form first, so "cpc" toggles CPC.
// Selection order is preserved.
func (s *State) ToggleLaw(l law.Law) error {
	opt, err := law.Lookup(string(l))
	if err != nil {
		return fmt.Errorf("%w: law %q", ErrUnknownOption, l)
	}
	if i := slices.Index(s.SelectedLaws, opt.ID); i >= 0 {
		s.SelectedLaws = slices.Delete(slices.Clone(s.SelectedLaws), i, i+1)
		return nil
	}
	s.SelectedLaws = append(slices.Clone(s.SelectedLaws), opt.ID)
	return nil
}

// ClearLaws deselects every legal code.
func (s *State) ClearLaws() {
	s.SelectedLaws = nil
}

// SetAudience selects an audience tier.
func (s *State) SetAudience(audience string) error {
	if !law.IsAudience(audience) {
		return fmt.Errorf("%w: audience %q", ErrUnknownOption, audience)
	}
	s.Audience = audience
	return nil
}

// SetQueryFocus selects the emphasised aspect of the answer.
func (s *State) SetQueryFocus(focus string) error {
	if !law.IsFocus(focus) {
		return fmt.Errorf("%w: focus %q", ErrUnknownOption, focus)
	}
	s.QueryFocus = focus
	return nil
}

// SetOutputLanguage selects the response language.
// It never touches the query text or the selected laws.
func (s *State) SetOutputLanguage(language string) error {
	if !law.IsLanguage(language) {
		return fmt.Errorf("%w: language %q", ErrUnknownOption, language)
	}
	s.OutputLanguage = language
	return nil
}

// SetQuery replaces the free-text query.
func (s *State) SetQuery(q string) {
	s.Query = q
}

// AppendQuery appends text to the query, separated by a space when the
// query already has content.
func (s *State) AppendQuery(text string) {
	if s.Query == "" {
		s.Query = text
		return
	}
	s.Query = s.Query + " " + text
}

// Validate reports whether s may be submitted.
func (s *State) Validate() error {
	if len(s.SelectedLaws) == 0 {
		return ErrNoLaws
	}
	if strings.TrimSpace(s.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}
