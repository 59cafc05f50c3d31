package routes

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/assistant"
	"github.com/danschewy/lexiform/httpx"
	"github.com/danschewy/lexiform/log"
	"github.com/danschewy/lexiform/model"
)

// DemoStore holds try-before-signup forms and their submissions in process
// memory, keyed "demoForm-<id>". Entries never expire; restarting the
// server clears them.
type DemoStore struct {
	mu          sync.RWMutex
	forms       map[string]model.Form
	submissions map[string][]model.Response
}

func NewDemoStore() *DemoStore {
	return &DemoStore{
		forms:       map[string]model.Form{},
		submissions: map[string][]model.Response{},
	}
}

func demoKey(id string) string {
	return "demoForm-" + id
}

func (s *DemoStore) Put(form model.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[demoKey(form.ID)] = form
}

func (s *DemoStore) Get(id string) (model.Form, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[demoKey(id)]
	return form, ok
}

func (s *DemoStore) AddSubmission(formId string, resp model.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[demoKey(formId)] = append(s.submissions[demoKey(formId)], resp)
}

func (s *DemoStore) Submissions(formId string) []model.Response {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Response{}, s.submissions[demoKey(formId)]...)
}

func DemoCreateForm(store *DemoStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{IsActive: true, AllowAnonymous: true}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := form.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.validate", "%s", err)
			return
		}

		form.ID = model.NewID()
		form.UserID = ""
		store.Put(form)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": form.ID,
		})
	}
}

func DemoGetForm(store *DemoStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, ok := store.Get(formId)
		if !ok {
			httpx.LogNotFound(w, "get_demo_form", formId)
			return
		}

		render.JSON(w, r, form)
	}
}

type demoFillRequest struct {
	Messages       []model.Message `json:"messages"`
	CurrentAnswers []any           `json:"current_answers"`
}

// DemoFillAssist is the fill-out chat for demo forms: same extraction and
// merge flow as FillAssist, with the definition read from the demo store.
func DemoFillAssist(app app.App, store *DemoStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, ok := store.Get(formId)
		if !ok {
			httpx.LogNotFound(w, "get_demo_form", formId)
			return
		}

		req := demoFillRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if len(req.Messages) == 0 {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.messages", "missing messages")
			return
		}

		current := req.CurrentAnswers
		if len(current) != len(form.Prompts) {
			current = make([]any, len(form.Prompts))
		}

		msgs, err := assistant.Compose(assistant.FillPrompt, req.Messages,
			assistant.Snapshot{Label: "Current form", Value: form},
			assistant.Snapshot{Label: "Current answers", Value: current})
		if err != nil {
			httpx.LogInternalError(w, "assistant.compose", err)
			return
		}

		raw, err := app.Assistant.Complete(r.Context(), msgs)
		if err != nil {
			httpx.LogInternalError(w, "llm.complete", err)
			return
		}

		merged, updated := assistant.MergeAnswers(assistant.ExtractJSON(raw), form, current)
		display := raw
		if updated {
			display = answersUpdatedReply
		}

		render.JSON(w, r, fillAssistResponse{
			Message: model.Message{
				ID:      model.NewMessageID(),
				Role:    model.RoleAssistant,
				Content: display,
			},
			Answers: merged,
			Updated: updated,
		})
	}
}

func DemoSubmitForm(store *DemoStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form, ok := store.Get(formId)
		if !ok {
			httpx.LogNotFound(w, "get_demo_form", formId)
			return
		}

		submission := submitRequest{}
		err := render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if len(submission.Answers) != len(form.Prompts) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit.answers_length",
				"expected %d answers, got %d", len(form.Prompts), len(submission.Answers))
			return
		}

		resp := model.Response{
			ID:      model.NewID(),
			FormID:  form.ID,
			Email:   submission.Email,
			Answers: submission.Answers,
		}
		store.AddSubmission(formId, resp)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": resp.ID,
		})
	}
}

func DemoGetSubmissions(store *DemoStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		if _, ok := store.Get(formId); !ok {
			httpx.LogNotFound(w, "get_demo_form", formId)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": store.Submissions(formId),
		})
	}
}
