package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/nssf"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	nssfService "github.com/cmlabs-hris/hris-payroll-go/internal/service/nssf"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

type stores struct {
	tx               database.Transactor
	payrollRepo      payroll.PayrollRepository
	employeeRepo     employee.EmployeeRepository
	contributionRepo nssf.ContributionRepository
	ready            func(ctx context.Context) error
	close            func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.String("driver", cfg.Storage.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	defer st.close()

	taxPolicy, err := payroll.NewTaxPolicy(cfg.Payroll.TaxPolicy, cfg.Payroll.TaxFlatRate)
	if err != nil {
		logger.Error("invalid tax policy", slog.Any("error", err))
		os.Exit(1)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	payrollSvc := payrollService.NewPayrollService(st.tx, st.payrollRepo, st.employeeRepo, taxPolicy, cfg.Payroll.DefaultCurrency, logger)
	contributionSvc := nssfService.NewContributionService(st.tx, st.contributionRepo, st.payrollRepo, st.employeeRepo, logger)

	scheduler := cron.NewScheduler(logger)
	cron.NewPayrollJobs(payrollSvc, logger).RegisterJobs(scheduler, cfg.Payroll.AutoGenerateInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	nssfHandler := appHTTP.NewNssfHandler(contributionSvc)

	router := appHTTP.NewRouter(JWTService, payrollHandler, nssfHandler, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Ready:          st.ready,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.RequestTimeout,
		WriteTimeout:      cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server running",
			slog.String("addr", server.Addr),
			slog.String("storage", cfg.Storage.Driver),
			slog.String("tax_policy", taxPolicy.Name()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		if cfg.Storage.EmployeeSeedFile != "" {
			if err := seedEmployees(store, cfg.Storage.EmployeeSeedFile); err != nil {
				return nil, err
			}
			logger.Info("employees seeded", slog.String("file", cfg.Storage.EmployeeSeedFile))
		}
		return &stores{
			tx:               store,
			payrollRepo:      memory.NewPayrollRepository(store),
			employeeRepo:     memory.NewEmployeeRepository(store),
			contributionRepo: memory.NewContributionRepository(store),
			ready:            func(context.Context) error { return nil },
			close:            func() {},
		}, nil

	case config.StorageDriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			tx:               postgresql.NewTransactor(db),
			payrollRepo:      postgresql.NewPayrollRepository(db),
			employeeRepo:     postgresql.NewEmployeeRepository(db),
			contributionRepo: postgresql.NewContributionRepository(db),
			ready:            db.Ping,
			close:            db.Close,
		}, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func seedEmployees(store *memory.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open employee seed file: %w", err)
	}
	defer f.Close()

	employees, err := memory.LoadEmployeesCSV(f)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	store.Seed(employees)
	return nil
}
