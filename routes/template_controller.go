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

func ListTemplates(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, title, description, prompts, created_at, updated_at
			FROM template
			ORDER BY title`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_templates", err)
			return
		}
		defer rows.Close()

		templates := []model.Template{}
		for rows.Next() {
			t := model.Template{}
			var prompts string
			err = rows.Scan(&t.ID, &t.Title, &t.Description, &prompts, &t.CreatedAt, &t.UpdatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_templates.scan", err)
				return
			}
			err = json.Unmarshal([]byte(prompts), &t.Prompts)
			if err != nil {
				httpx.LogInternalError(w, "db.get_templates.parse_prompts", err)
				return
			}
			templates = append(templates, t)
		}

		render.JSON(w, r, map[string]any{
			"templates": templates,
		})
	}
}

type fromTemplateRequest struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	AllowAnonymous bool   `json:"allow_anonymous,omitempty"`
}

// CreateFormFromTemplate seeds a new form from a template. The prompt list
// is copied by value: later template edits never reach forms built from it.
func CreateFormFromTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := chi.URLParam(r, "templateId")

		req := fromTemplateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		var title, description, prompts string
		err = app.QueryRowContext(r.Context(), `
			SELECT title, description, prompts
			FROM template
			WHERE id = ?`,
			templateId,
		).Scan(&title, &description, &prompts)
		if err != nil {
			if err == sql.ErrNoRows {
				httpx.LogNotFound(w, "get_template", templateId)
			} else {
				httpx.LogInternalError(w, "db.get_template", err)
			}
			return
		}

		if req.Title != "" {
			title = req.Title
		}
		if req.Description != "" {
			description = req.Description
		}

		formId := model.NewID()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO form (id, user_id, title, description, prompts, is_active, allow_anonymous)
			VALUES (?, ?, ?, ?, ?, TRUE, ?)`,
			formId,
			middlewares.UserID(r),
			title,
			description,
			prompts,
			req.AllowAnonymous,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form_from_template", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": formId,
		})
	}
}
