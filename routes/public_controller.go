package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/httpx"
	"github.com/danschewy/lexiform/log"
	"github.com/danschewy/lexiform/model"
	"github.com/danschewy/lexiform/routes/middlewares"
)

// PublicGetFormById serves the respondent-facing view of an active form.
// Ownership is not exposed.
func PublicGetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		row := app.QueryRowContext(r.Context(), `
			SELECT `+formColumns+`
			FROM form
			WHERE id = ? AND is_active`,
			formId,
		)
		form, err := scanForm(row.Scan)
		if err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_public_form", formId)
			} else {
				httpx.LogInternalError(w, "db.get_public_form", err)
			}
			return
		}

		form.UserID = ""
		render.JSON(w, r, form)
	}
}

type submitRequest struct {
	Answers []any  `json:"answers"`
	Email   string `json:"email,omitempty"`
}

// PublicSubmitForm records one response. Anonymous submitters are turned
// away unless the form allows them, and the answer array must line up with
// the form's prompts one to one.
func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		submission := submitRequest{}
		err := render.DecodeJSON(r.Body, &submission)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		row := app.QueryRowContext(r.Context(), `
			SELECT `+formColumns+`
			FROM form
			WHERE id = ? AND is_active`,
			formId,
		)
		form, err := scanForm(row.Scan)
		if err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_public_form", formId)
			} else {
				httpx.LogInternalError(w, "db.get_public_form", err)
			}
			return
		}

		userId := middlewares.UserID(r)
		if userId == "" && !form.AllowAnonymous {
			w.Header().Set("location", "/login")
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "submit.anonymous_rejected")
			return
		}

		if len(submission.Answers) != len(form.Prompts) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit.answers_length",
				"expected %d answers, got %d", len(form.Prompts), len(submission.Answers))
			return
		}

		answersJson, err := json.Marshal(submission.Answers)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response.encode", err)
			return
		}

		email := submission.Email
		if email == "" {
			email = middlewares.Email(r)
		}

		responseId := model.NewID()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO response (id, form_id, user_id, email, answers)
			VALUES (?, ?, ?, ?, ?)`,
			responseId,
			formId,
			sql.NullString{String: userId, Valid: userId != ""},
			sql.NullString{String: email, Valid: email != ""},
			string(answersJson),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": responseId,
		})
	}
}
