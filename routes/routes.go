package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danschewy/lexiform/app"
	"github.com/danschewy/lexiform/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()
	api.Use(middlewares.CookieToBearer)

	// respondent-facing form access and submission
	api.Get("/public/forms/{id}", PublicGetFormById(app))
	api.With(middlewares.MaybeAuthenticated(app.Config)).
		Post("/public/forms/{id}/responses", PublicSubmitForm(app))
	api.Post("/assistant/fill-assist", FillAssist(app))

	api.Get("/templates", ListTemplates(app))

	// try-before-signup mode, held in process memory
	demo := NewDemoStore()
	api.Route("/demo", func(r chi.Router) {
		r.Post("/chat", FormChat(app))
		r.Post("/forms", DemoCreateForm(demo))
		r.Get("/forms/{id}", DemoGetForm(demo))
		r.Post("/forms/{id}/chat", DemoFillAssist(app, demo))
		r.Post("/forms/{id}/submissions", DemoSubmitForm(demo))
		r.Get("/forms/{id}/submissions", DemoGetSubmissions(demo))
	})

	// owner surface
	api.Route("/forms", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.Config))

		r.Post("/", CreateForm(app))
		r.Get("/", ListForms(app))
		r.Post("/from-template/{templateId}", CreateFormFromTemplate(app))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetFormById(app))
			r.Put("/", UpdateForm(app))
			r.Delete("/", DeleteForm(app))

			r.Get("/responses", GetFormResponses(app))
			r.Delete("/responses", DeleteFormResponses(app))
			r.Get("/responses/{responseId}", GetResponseById(app))

			r.Post("/summary", SummarizeResponses(app))
		})
	})

	api.With(middlewares.Authenticated(app.Config)).
		Post("/assistant/form-chat", FormChat(app))
	api.With(middlewares.Authenticated(app.Config)).
		Get("/my-responses", ListMyResponses(app))

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Post("/signup", Signup(app))
	api.Get("/auth/callback", OAuthCallback(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}
