package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/httpx"
	"github.com/danschewy/lexiform/model"
	"github.com/danschewy/lexiform/routes/middlewares"
)

func scanResponse(scan func(dest ...any) error) (resp model.Response, err error) {
	var userId, email sql.NullString
	var answers string
	err = scan(&resp.ID, &resp.FormID, &userId, &email, &answers, &resp.CreatedAt)
	if err != nil {
		return
	}

	resp.UserID = userId.String
	resp.Email = email.String
	err = json.Unmarshal([]byte(answers), &resp.Answers)
	return
}

// formOwned reports whether the form exists and belongs to the session
// user. sql.ErrNoRows doubles as the not-owned signal.
func formOwned(r *http.Request, app app.App, formId string) error {
	var one int
	return app.QueryRowContext(r.Context(), `
		SELECT 1 FROM form
		WHERE id = ? AND user_id = ?`,
		formId,
		middlewares.UserID(r),
	).Scan(&one)
}

func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		if err := formOwned(r, app, formId); err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_responses", formId)
			} else {
				httpx.LogInternalError(w, "db.get_responses.owner", err)
			}
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, form_id, user_id, email, answers, created_at
			FROM response
			WHERE form_id = ?
			ORDER BY created_at`,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}
		defer rows.Close()

		responses := []model.Response{}
		for rows.Next() {
			resp, err := scanResponse(rows.Scan)
			if err != nil {
				httpx.LogInternalError(w, "db.get_responses.scan", err)
				return
			}
			responses = append(responses, resp)
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

// GetResponseById serves one response to the form owner, or to the
// authenticated user who submitted it.
func GetResponseById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")
		responseId := chi.URLParam(r, "responseId")

		row := app.QueryRowContext(r.Context(), `
			SELECT r.id, r.form_id, r.user_id, r.email, r.answers, r.created_at
			FROM response r
			INNER JOIN form f ON (f.id = r.form_id)
			WHERE r.id = ?
				AND r.form_id = ?
				AND (f.user_id = ? OR r.user_id = ?)`,
			responseId,
			formId,
			middlewares.UserID(r),
			middlewares.UserID(r),
		)
		resp, err := scanResponse(row.Scan)
		if err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_response", responseId)
			} else {
				httpx.LogInternalError(w, "db.get_response", err)
			}
			return
		}

		render.JSON(w, r, resp)
	}
}

// ListMyResponses returns every response the session user has submitted,
// across all forms, newest first.
func ListMyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, form_id, user_id, email, answers, created_at
			FROM response
			WHERE user_id = ?
			ORDER BY created_at DESC`,
			middlewares.UserID(r),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_my_responses", err)
			return
		}
		defer rows.Close()

		responses := []model.Response{}
		for rows.Next() {
			resp, err := scanResponse(rows.Scan)
			if err != nil {
				httpx.LogInternalError(w, "db.get_my_responses.scan", err)
				return
			}
			responses = append(responses, resp)
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

// DeleteFormResponses bulk-deletes every response of an owned form.
// Individual responses are never edited or deleted one by one.
func DeleteFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		if err := formOwned(r, app, formId); err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "delete_responses", formId)
			} else {
				httpx.LogInternalError(w, "db.delete_responses.owner", err)
			}
			return
		}

		_, err := app.ExecContext(r.Context(), `
			DELETE FROM response
			WHERE form_id = ?`,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_responses", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
