package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/esports-arena/docs"
	"github.com/Dosada05/esports-arena/handlers"
	"github.com/Dosada05/esports-arena/middleware"
	"github.com/Dosada05/esports-arena/models"
)

// Handlers - набор HTTP-обработчиков приложения.
type Handlers struct {
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Player       *handlers.PlayerHandler
	Match        *handlers.MatchHandler
	Sponsor      *handlers.SponsorHandler
	LiveMatch    *handlers.LiveMatchHandler
	Wallet       *handlers.WalletHandler
	Upload       *handlers.UploadHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	// RegisterRateLimit - запросов регистрации в минуту с одного IP.
	RegisterRateLimit int
}

func SetupRoutes(r chi.Router, h Handlers, opts Options) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)
	optionalAuth := middleware.OptionalAuthenticate(opts.JWTSecret)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// WebSocket
	r.Get("/ws/live", h.WebSocket.ServeLive)
	r.With(middleware.OptionalAuthenticateWebSocket(opts.JWTSecret)).Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", h.Tournament.Get)
			r.Get("/timer", h.Tournament.Timer)
			r.Get("/registrations", h.Registration.ListForTournament)
			r.With(optionalAuth).Get("/registration", h.Registration.State)
			r.With(
				authenticate,
				httprate.LimitByIP(opts.RegisterRateLimit, time.Minute),
			).Post("/register", h.Registration.Register)
		})
	})

	r.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.Leaderboard)
		r.Get("/{playerID}", h.Player.Get)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{matchID}", h.Match.Get)
	})

	r.Get("/sponsors", h.Sponsor.ListActive)
	r.Get("/live-matches", h.LiveMatch.ListActive)

	// Маршруты текущего пользователя
	r.Route("/me", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/profile", h.Player.Me)
		r.Get("/registrations", h.Registration.ListMine)
		r.Get("/wallet", h.Wallet.Balance)
	})

	// Администрирование
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", h.Tournament.Create)
			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Patch("/", h.Tournament.Update)
				r.Delete("/", h.Tournament.Delete)
				r.Post("/timer/start", h.Tournament.StartTimer)
				r.Post("/timer/stop", h.Tournament.StopTimer)
				r.Put("/room", h.Registration.UpsertRoom)
			})
		})

		r.Patch("/registrations/{registrationID}/payment", h.Registration.UpdatePayment)

		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.Player.Create)
			r.Patch("/{playerID}", h.Player.Update)
			r.Delete("/{playerID}", h.Player.Delete)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", h.Match.Create)
			r.Patch("/{matchID}", h.Match.Update)
			r.Delete("/{matchID}", h.Match.Delete)
		})

		r.Route("/sponsors", func(r chi.Router) {
			r.Get("/", h.Sponsor.ListAll)
			r.Post("/", h.Sponsor.Create)
			r.Patch("/{sponsorID}", h.Sponsor.Update)
			r.Post("/{sponsorID}/toggle", h.Sponsor.Toggle)
			r.Delete("/{sponsorID}", h.Sponsor.Delete)
		})

		r.Route("/live-matches", func(r chi.Router) {
			r.Get("/", h.LiveMatch.ListAll)
			r.Post("/", h.LiveMatch.Create)
			r.Patch("/{liveMatchID}", h.LiveMatch.Update)
			r.Post("/{liveMatchID}/toggle", h.LiveMatch.Toggle)
			r.Delete("/{liveMatchID}", h.LiveMatch.Delete)
		})

		r.Get("/wallet/transactions", h.Wallet.ListTransactions)
		r.Patch("/wallet/transactions/{transactionID}", h.Wallet.ReviewTransaction)

		r.Post("/uploads", h.Upload.Upload)
	})
}
