package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pgledger/internal/cache"
	"pgledger/internal/core"
	applog "pgledger/internal/log"
	"pgledger/internal/middleware/ratelimit"
	"pgledger/internal/middleware/security"
	"pgledger/internal/middleware/trace"
	"pgledger/internal/services"
)

type (
	Onboarder interface {
		Onboard(ctx context.Context, req core.OnboardingRequest) (core.Customer, []core.Posting, error)
	}

	FeeRecorder interface {
		RecordPayment(ctx context.Context, req core.FeePaymentRequest) (core.FeeOutcome, error)
	}

	IncomeLedger interface {
		PostManual(ctx context.Context, m core.ManualIncome) (core.Posting, error)
		ClearAll(ctx context.Context) (int64, error)
	}

	ExpenseRecorder interface {
		CreateExpense(ctx context.Context, e core.Expense) (int64, error)
		ListExpenses(ctx context.Context, month *core.Month) ([]core.Expense, error)
	}

	// LedgerReader is the read-only side of the ledger store.
	LedgerReader interface {
		services.DuesReader
		ListIncome(ctx context.Context) ([]core.Posting, error)
		TotalIncome(ctx context.Context) (core.Money, error)
		TotalExpense(ctx context.Context) (core.Money, error)
		MonthlyIncome(ctx context.Context) ([]core.MonthTotal, error)
		MonthlyExpense(ctx context.Context) ([]core.MonthTotal, error)
		Ping(ctx context.Context) error
	}
)

type Dependencies struct {
	Onboarding Onboarder
	Fees       FeeRecorder
	Income     IncomeLedger
	Expenses   ExpenseRecorder
	Ledger     LedgerReader
}

type Options struct {
	RateLimitPerMinute int
	SummaryCacheTTL    time.Duration
	Logger             *applog.Logger
}

const (
	summaryTimeout   = 7 * time.Second
	readinessTimeout = 3 * time.Second
)

type Server struct {
	http.Server
	deps Dependencies

	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	cacheManager *cache.Manager
	totals       *cache.Loader[core.Money]
	monthly      *cache.Loader[[]core.MonthTotal]

	started      time.Time
	shutdownOnce sync.Once
}

func NewServer(addr string, deps Dependencies, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	totalsCache := cache.NewLRUCache[core.Money](8, opts.SummaryCacheTTL)
	monthlyCache := cache.NewLRUCache[[]core.MonthTotal](8, opts.SummaryCacheTTL)
	manager := cache.NewManager()
	manager.Register(totalsCache)
	manager.Register(monthlyCache)

	detector := security.NewDetector()
	s := &Server{
		deps:         deps,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ClientIP),
		cacheManager: manager,
		totals:       cache.NewLoader[core.Money](totalsCache),
		monthly:      cache.NewLoader[[]core.MonthTotal](monthlyCache),
		started:      time.Now(),
	}

	if opts.SummaryCacheTTL > 0 {
		manager.StartCleanup(max(opts.SummaryCacheTTL, time.Minute))
	}

	s.Server = http.Server{
		Addr:           addr,
		Handler:        s.routes(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware(false))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/customers", s.handleListCustomers)
	r.Get("/fee-dues", s.handleFeeDues)
	r.Get("/expense", s.handleListExpenses)
	r.Get("/income", s.handleListIncome)
	r.Get("/income/cleanup", s.handleClearIncome)

	r.Route("/summary", func(r chi.Router) {
		r.Get("/total-income", s.handleTotalIncome)
		r.Get("/total-expense", s.handleTotalExpense)
		r.Get("/monthly-income", s.handleMonthlyIncome)
		r.Get("/monthly-expense", s.handleMonthlyExpense)
	})

	// Writes are rate limited per client.
	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP, s.rateLimited))
		r.Post("/save", s.handleOnboard)
		r.Post("/fee-payment", s.handleFeePayment)
		r.Post("/expense", s.handleCreateExpense)
		r.Post("/income/save", s.handleCreateIncome)
	})

	return r
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldPath, r.URL.Path)
	Text(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown stops background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
	})
	return s.Server.Shutdown(ctx)
}

// invalidateSummaries must run after every committed write that can move a total.
func (s *Server) invalidateSummaries() {
	s.totals.Invalidate()
	s.monthly.Invalidate()
}
