package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"temple_pass/internal/config"
	"temple_pass/internal/controllers"
	"temple_pass/internal/logger"
	"temple_pass/internal/middleware"
	"temple_pass/internal/models"
	"temple_pass/internal/realtime"
	"temple_pass/internal/routes"
	"temple_pass/internal/store"
	"temple_pass/internal/traffic"
)

func main() {
	settings := config.Load()

	// Initialize structured logging to file
	logOut := logger.Setup(logger.Options{
		File:   settings.LogFile,
		Level:  settings.LogLevel,
		Stdout: settings.LogStdout,
	})

	st, err := openStore(settings)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	hub := realtime.NewHub()
	defer hub.Close()

	svc := traffic.NewService(st,
		traffic.WithPublisher(hub),
		traffic.WithSlotInterval(settings.SlotInterval),
		traffic.WithGenerationLimit(settings.MaxGenerationDays),
	)
	middleware.Configure(settings.JWTSecret, settings.JWTTTL)

	if err := ensureAdmin(context.Background(), svc, settings); err != nil {
		log.Fatalf("admin bootstrap: %v", err)
	}

	r := routes.SetupRouter(controllers.New(svc), hub, logOut)

	// Wrap with CORS
	srv := &http.Server{
		Addr:              "0.0.0.0:" + settings.Port,
		Handler:           middleware.EnableCORS(r, middleware.ParseOrigins(settings.CORSOrigins)...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running at :%s (store=%s)", settings.Port, settings.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
	logrus.Info("Server stopped")
}

func openStore(s config.Settings) (traffic.Store, error) {
	switch s.Store {
	case config.StoreMemory:
		logrus.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	case config.StorePostgres:
		db, err := config.InitDB(s)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	default:
		return nil, errors.New("unknown STORE " + s.Store)
	}
}

// ensureAdmin creates the configured administrator if it does not exist yet.
func ensureAdmin(ctx context.Context, svc *traffic.Service, s config.Settings) error {
	if s.AdminEmail == "" || s.AdminPassword == "" {
		return nil
	}
	if _, err := svc.UserByEmail(ctx, s.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, traffic.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{Name: "Administrator", Email: s.AdminEmail, Password: string(hash), Role: models.RoleAdmin}
	if err := svc.RegisterUser(ctx, admin); err != nil {
		return err
	}
	logrus.WithField("email", admin.Email).Info("Administrator account created")
	return nil
}
