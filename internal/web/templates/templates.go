// Package templates renders the composer views.
// Views are embedded html/template files exposed as templ components.
package templates

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/Conceptual-Machines/lyric-composer/internal/composer"
	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

var views = template.Must(template.ParseFS(files, "html/*.html"))

// CandidateItem is one rendered continuation; Index is its position in the service response
type CandidateItem struct {
	Index int
	Text  string
}

// SliderView is a slider control with its mirrored label
type SliderView struct {
	Name    string
	Label   string
	LabelID string
	Min     string
	Max     string
	Step    string
	Value   string
}

// PageData is the view model of the composer page and its fragments
type PageData struct {
	Sliders         []SliderView
	LowRepetition   bool
	NSFW            bool
	Prompt          string
	Draft           string
	Candidates      []CandidateItem
	ErrorMessage    string
	Loading         bool
	SubmitDisabled  bool
	FinalizeEnabled bool
	Finalize        composer.FinalizeForm

	// OOB marks the error region for an out-of-band swap
	OOB bool
}

// EndPageData is the view model of the final lyric page
type EndPageData struct {
	Lyric string
}

// NewPageData builds the view model for state
func NewPageData(state *composer.UIState) PageData {
	sliders := make([]SliderView, 0, len(composer.Parameters))
	for _, p := range composer.Parameters {
		value, _ := state.Controls.Value(p.Name)
		sliders = append(sliders, SliderView{
			Name:    p.Name,
			Label:   p.Label,
			LabelID: p.LabelID(),
			Min:     composer.FormatValue(p.Min),
			Max:     composer.FormatValue(p.Max),
			Step:    composer.FormatValue(p.Step),
			Value:   composer.FormatValue(value),
		})
	}

	return PageData{
		Sliders:         sliders,
		LowRepetition:   state.Controls.LowRepetition,
		NSFW:            state.Controls.NSFW,
		Prompt:          state.Controls.Prompt,
		Draft:           state.Draft,
		Candidates:      CandidateItems(state.Candidates),
		ErrorMessage:    state.ErrorMessage,
		Loading:         state.Loading,
		SubmitDisabled:  state.SubmitDisabled,
		FinalizeEnabled: state.FinalizeEnabled,
		Finalize:        state.FinalizeForm(),
	}
}

// CandidateItems numbers candidates in response order
func CandidateItems(candidates []string) []CandidateItem {
	items := make([]CandidateItem, len(candidates))
	for i, text := range candidates {
		items[i] = CandidateItem{Index: i, Text: text}
	}
	return items
}

func view(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return views.ExecuteTemplate(w, name, data)
	})
}

// ComposerPage renders the full composer page
func ComposerPage(data PageData) templ.Component {
	return view("page", data)
}

// ComposerPanel renders the prompt, candidates, draft and finalize controls
func ComposerPanel(data PageData) templ.Component {
	return view("composer_panel", data)
}

// GenerateResult renders the candidate list plus an out-of-band error region
func GenerateResult(data PageData) templ.Component {
	data.OOB = true
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := view("candidates", data).Render(ctx, w); err != nil {
			return err
		}
		return view("error_region", data).Render(ctx, w)
	})
}

// FinalizeForms renders the finalize form and both finalize buttons
func FinalizeForms(data PageData) templ.Component {
	return view("finalize_forms", data)
}

// ParamLabel renders the text of a slider's value label
func ParamLabel(value float64) templ.Component {
	return view("param_label", composer.FormatValue(value))
}

// EndPage renders the final lyric
func EndPage(data EndPageData) templ.Component {
	return view("end_page", data)
}
