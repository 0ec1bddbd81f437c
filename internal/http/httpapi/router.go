package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"housepaint/internal/http/handlers"
	"housepaint/internal/middleware"
)

// Options carries the pieces the router needs beyond the handlers.
type Options struct {
	CountryLookup middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	cfg := app.Config
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		middleware.Metrics,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N(cfg.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

		r.Get("/v1/palette", app.Palette)
		r.Get("/v1/parts", app.Parts)

		r.Post("/v1/sessions", app.CreateSession)
		r.Route("/v1/sessions/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Delete("/", app.DeleteSession)

			r.Put("/photo", app.UploadPhoto)
			r.Put("/reference", app.UploadReference)
			r.Delete("/reference", app.ClearReference)
			r.Put("/colors/{part}", app.SetColor)
			r.Put("/parts/{part}", app.SetPart)
			r.Put("/note", app.SetNote)
			r.Put("/logo", app.SetLogo)

			r.Put("/mask", app.UploadMask)
			r.Delete("/mask", app.ClearMask)
			r.Get("/mask.png", app.MaskPNG)

			r.Route("/editor", func(r chi.Router) {
				r.Post("/", app.OpenEditor)
				r.Get("/", app.EditorState)
				r.Delete("/", app.EditorCancel)
				r.Get("/canvas.png", app.EditorCanvas)
				r.Put("/tool", app.EditorTool)
				r.Post("/pointer", app.EditorPointer)
				r.Post("/undo", app.EditorUndo)
				r.Post("/clear", app.EditorClear)
				r.Post("/resize", app.EditorResize)
				r.Post("/save", app.EditorSave)
			})

			r.Get("/instruction", app.Instruction)
			r.With(middleware.RateLimit(cfg.GenerateRatePerMin, time.Minute)).Post("/generate", app.Generate)
			r.Get("/result.png", app.ResultPNG)
			r.Get("/bundle.zip", app.Bundle)
			r.Get("/generations", app.Generations)
		})
	})

	return r
}
