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

const formColumns = `id, user_id, title, description, prompts, question_types, is_active, allow_anonymous, created_at`

func scanForm(scan func(dest ...any) error) (f model.Form, err error) {
	var prompts string
	var questionTypes sql.NullString
	err = scan(
		&f.ID, &f.UserID, &f.Title, &f.Description,
		&prompts, &questionTypes,
		&f.IsActive, &f.AllowAnonymous, &f.CreatedAt,
	)
	if err != nil {
		return
	}

	err = json.Unmarshal([]byte(prompts), &f.Prompts)
	if err != nil {
		return
	}
	if questionTypes.Valid && questionTypes.String != "" {
		err = json.Unmarshal([]byte(questionTypes.String), &f.QuestionTypes)
	}
	return
}

func formColumnValues(f model.Form) (prompts string, questionTypes sql.NullString, err error) {
	promptsJson, err := json.Marshal(f.Prompts)
	if err != nil {
		return
	}
	prompts = string(promptsJson)

	if len(f.QuestionTypes) > 0 {
		typesJson, err2 := json.Marshal(f.QuestionTypes)
		if err2 != nil {
			return "", sql.NullString{}, err2
		}
		questionTypes = sql.NullString{String: string(typesJson), Valid: true}
	}
	return
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{IsActive: true}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := form.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.validate", "%s", err)
			return
		}

		prompts, questionTypes, err := formColumnValues(form)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form.encode", err)
			return
		}

		form.ID = model.NewID()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO form (id, user_id, title, description, prompts, question_types, is_active, allow_anonymous)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			form.ID,
			middlewares.UserID(r),
			form.Title,
			form.Description,
			prompts,
			questionTypes,
			form.IsActive,
			form.AllowAnonymous,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": form.ID,
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT `+formColumns+`
			FROM form
			WHERE user_id = ?
			ORDER BY created_at DESC`,
			middlewares.UserID(r),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}
		defer rows.Close()

		forms := []model.Form{}
		for rows.Next() {
			f, err := scanForm(rows.Scan)
			if err != nil {
				httpx.LogInternalError(w, "db.get_forms.scan", err)
				return
			}
			forms = append(forms, f)
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		row := app.QueryRowContext(r.Context(), `
			SELECT `+formColumns+`
			FROM form
			WHERE id = ? AND user_id = ?`,
			formId,
			middlewares.UserID(r),
		)
		form, err := scanForm(row.Scan)
		if err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_form", formId)
			} else {
				httpx.LogInternalError(w, "db.get_form", err)
			}
			return
		}

		render.JSON(w, r, form)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := form.Validate(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.validate", "%s", err)
			return
		}

		prompts, questionTypes, err := formColumnValues(form)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.encode", err)
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE form
			SET
				title = ?,
				description = ?,
				prompts = ?,
				question_types = ?,
				is_active = ?,
				allow_anonymous = ?
			WHERE	id = ?
				AND user_id = ?`,
			form.Title,
			form.Description,
			prompts,
			questionTypes,
			form.IsActive,
			form.AllowAnonymous,
			formId,
			middlewares.UserID(r),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_form.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_form", formId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteForm removes a form and every response submitted to it in one
// transaction: a form and its responses go together or not at all.
func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId := chi.URLParam(r, "id")

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM response
			WHERE form_id = ?`,
			formId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form.responses", err)
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			DELETE FROM form
			WHERE id = ? AND user_id = ?`,
			formId,
			middlewares.UserID(r),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_form", formId)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
