package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/veritrace/veritrace/internal/health"
	"github.com/veritrace/veritrace/internal/http/handler"
	"github.com/veritrace/veritrace/internal/http/middleware"
	"github.com/veritrace/veritrace/internal/http/response"
)

type Dependencies struct {
	ProductHandler    *handler.ProductHandler
	PaymentHandler    *handler.PaymentHandler
	WalletHandler     *handler.WalletHandler
	CORSOrigins       []string
	APIRateLimitRPM   int
	MintRateLimitRPM  int
	GlobalRateLimiter GlobalRateLimiterFunc
	MintRateLimiter   MintRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type MintRateLimiterFunc func(http.Handler) http.Handler

const (
	jsonBodyLimit = 1 << 20
	// Mint requests can carry a multipart product image.
	mintBodyLimit = 10 << 20
)

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	mintLimiter := dep.MintRateLimiter
	if mintLimiter == nil {
		mintLimiter = middleware.NewRateLimiter(dep.MintRateLimitRPM, time.Minute).Middleware()
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	// Route names mirror the contract the existing frontend already speaks.
	r.Route("/api", func(r chi.Router) {
		// Mint sits outside the default body limit because of image uploads.
		r.With(mintLimiter, middleware.BodyLimit(mintBodyLimit)).Post("/mintNFT", dep.ProductHandler.Mint)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(jsonBodyLimit))

			r.Get("/getAllNFT", dep.ProductHandler.GetAll)
			r.Post("/searchNFT", dep.ProductHandler.Search)
			r.Post("/getHistory", dep.ProductHandler.History)
			r.Post("/transferNFT", dep.ProductHandler.Transfer)

			r.Post("/initiatePayment", dep.PaymentHandler.Initiate)
			r.Post("/approvePayment", dep.PaymentHandler.Approve)
			r.Post("/rejectPayment", dep.PaymentHandler.Reject)

			r.Post("/register-wallet", dep.WalletHandler.Register)
			r.Post("/check-wallet", dep.WalletHandler.Check)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
