package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/lyric-composer/internal/composer"
	"github.com/Conceptual-Machines/lyric-composer/internal/logger"
	"github.com/Conceptual-Machines/lyric-composer/internal/session"
	"github.com/Conceptual-Machines/lyric-composer/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// Form field names of the generate form
const (
	fieldLowRepetition = "l-repetitie"
	fieldNSFW          = "nsfw"
	fieldPrompt        = "prompt"
	fieldResult        = "result"
)

type ComposerHandler struct {
	sessions   *session.Store
	dispatcher *composer.Dispatcher
}

func NewComposerHandler(sessions *session.Store, dispatcher *composer.Dispatcher) *ComposerHandler {
	return &ComposerHandler{
		sessions:   sessions,
		dispatcher: dispatcher,
	}
}

// Index renders the composer page
func (h *ComposerHandler) Index(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}
	if !h.update(c, sess, nil) {
		return
	}
	render(c, http.StatusOK, templates.ComposerPage(templates.NewPageData(sess.State)))
}

// Param mirrors a slider value into its label
func (h *ComposerHandler) Param(c *gin.Context) {
	name := c.Param("name")

	sess, ok := h.load(c)
	if !ok {
		return
	}

	ev := composer.Event{Kind: composer.EventParam, Name: name, Value: c.PostForm(name)}
	ok = h.update(c, sess, func(state *composer.UIState) error {
		if err := h.dispatcher.Dispatch(c.Request.Context(), state, ev); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, composer.ErrUnknownParameter) {
				status = http.StatusNotFound
			}
			return &requestError{status: status, err: err}
		}
		return nil
	})
	if !ok {
		return
	}

	value, _ := sess.State.Controls.Value(name)
	render(c, http.StatusOK, templates.ParamLabel(value))
}

// Generate requests candidates for the submitted controls and renders them or the error
func (h *ComposerHandler) Generate(c *gin.Context) {
	controls, err := controlsFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.load(c)
	if !ok {
		return
	}

	// The session is not held during the outbound call; only the outcome is merged back.
	result := *sess.State
	ev := composer.Event{Kind: composer.EventSubmit, SessionID: sess.ID, Controls: &controls}
	if err := h.dispatcher.Dispatch(c.Request.Context(), &result, ev); err != nil {
		logger.Error("Generate dispatch failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate"})
		return
	}

	if result.ErrorMessage != "" {
		fields := logger.WithContext(c)
		fields["error"] = result.ErrorMessage
		logger.Warn("Generation failed", fields)
	}

	ok = h.update(c, sess, func(state *composer.UIState) error {
		state.TakeGeneration(&result)
		return nil
	})
	if !ok {
		return
	}
	render(c, http.StatusOK, templates.GenerateResult(templates.NewPageData(sess.State)))
}

// Accept appends the chosen candidate to the draft
func (h *ComposerHandler) Accept(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate index"})
		return
	}

	sess, ok := h.load(c)
	if !ok {
		return
	}

	ev := composer.Event{
		Kind:   composer.EventAccept,
		Index:  index,
		Prompt: optionalField(c, fieldPrompt),
		Draft:  optionalField(c, fieldResult),
	}
	if !h.dispatch(c, sess, ev, http.StatusBadRequest) {
		return
	}
	render(c, http.StatusOK, templates.ComposerPanel(templates.NewPageData(sess.State)))
}

// EditDraft stores a draft edited in the browser and refreshes the finalize form
func (h *ComposerHandler) EditDraft(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}

	ev := composer.Event{Kind: composer.EventEdit, Draft: optionalField(c, fieldResult)}
	if !h.dispatch(c, sess, ev, http.StatusBadRequest) {
		return
	}
	render(c, http.StatusOK, templates.FinalizeForms(templates.NewPageData(sess.State)))
}

// Reset clears the draft, prompt and candidates
func (h *ComposerHandler) Reset(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}

	if !h.dispatch(c, sess, composer.Event{Kind: composer.EventReset}, http.StatusInternalServerError) {
		return
	}
	render(c, http.StatusOK, templates.ComposerPanel(templates.NewPageData(sess.State)))
}

// EndPage renders the submitted lyric
func (h *ComposerHandler) EndPage(c *gin.Context) {
	lyric := normalizeNewlines(c.PostForm(composer.FinalizeField))

	fields := logger.WithContext(c)
	fields["lyric_length"] = len(lyric)
	logger.Info("Lyric finalized", fields)

	render(c, http.StatusOK, templates.EndPage(templates.EndPageData{Lyric: lyric}))
}

func (h *ComposerHandler) load(c *gin.Context) (*session.Session, bool) {
	sess, err := h.sessions.Load(c.Request)
	if err != nil {
		logger.Error("Failed to load session", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return nil, false
	}
	c.Set("session_id", sess.ID)
	return sess, true
}

// requestError carries the status a failed state update responds with
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string {
	return e.err.Error()
}

// dispatch applies ev to the latest state of sess, answering errStatus when the event is rejected
func (h *ComposerHandler) dispatch(c *gin.Context, sess *session.Session, ev composer.Event, errStatus int) bool {
	return h.update(c, sess, func(state *composer.UIState) error {
		if err := h.dispatcher.Dispatch(c.Request.Context(), state, ev); err != nil {
			return &requestError{status: errStatus, err: err}
		}
		return nil
	})
}

// update runs fn on the latest state of sess and saves it.
// It reports whether the handler may render; otherwise the error response is written.
func (h *ComposerHandler) update(c *gin.Context, sess *session.Session, fn func(*composer.UIState) error) bool {
	err := h.sessions.Update(c.Request, c.Writer, sess, fn)
	if err == nil {
		return true
	}

	var reqErr *requestError
	if errors.As(err, &reqErr) {
		c.JSON(reqErr.status, gin.H{"error": reqErr.Error()})
		return false
	}

	logger.Error("Failed to save session", err, logger.WithContext(c))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
	return false
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		logger.Error("Failed to render template", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render template"})
	}
}

func controlsFromForm(c *gin.Context) (composer.Controls, error) {
	controls := composer.Controls{
		LowRepetition: checked(c, fieldLowRepetition),
		NSFW:          checked(c, fieldNSFW),
		Prompt:        normalizeNewlines(c.PostForm(fieldPrompt)),
	}

	for _, p := range composer.Parameters {
		raw, ok := c.GetPostForm(p.Name)
		v := p.Default
		if ok {
			parsed, err := composer.ParseValue(raw)
			if err != nil {
				return composer.Controls{}, err
			}
			v = parsed
		}
		if err := controls.Set(p.Name, v); err != nil {
			return composer.Controls{}, err
		}
	}

	return controls, nil
}

// checked reports whether a checkbox was submitted; unchecked boxes are absent from the form
func checked(c *gin.Context, name string) bool {
	_, ok := c.GetPostForm(name)
	return ok
}

func optionalField(c *gin.Context, name string) *string {
	if v, ok := c.GetPostForm(name); ok {
		v = normalizeNewlines(v)
		return &v
	}
	return nil
}

// normalizeNewlines undoes the CRLF line breaks browsers submit for textareas
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
