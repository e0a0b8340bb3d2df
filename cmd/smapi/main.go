// main is the entry point of the Student Management API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Build the auth components (token manager, role lookup, gate)
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/smapi --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/smapi
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/aanand-mishra/student-management-api/internal/auth"
	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/admin"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/adminauth"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/course"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad reads the YAML config and panics if anything is wrong.
	// If this returns, config is guaranteed valid.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting student-management-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// We keep the result as the storage.Storage INTERFACE, not *sqlite.SQLite,
	// so swapping backends only requires changing this one line.
	store, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	// ── 4. Build the Auth Components ──────────────────────────────────────
	// tokens verifies bearer credentials (401 on failure), roles maps a
	// verified identity to admin/student/both/none, and gate makes the
	// final allow/deny call per action (403 on deny).
	tokens := auth.NewTokenManager(cfg)
	roles := auth.NewRoles(store)
	gate := auth.NewGate(store)

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	// The handler functions are FACTORIES — they receive dependencies and
	// return the actual handler (dependency injection via closures).
	//
	// Every route except the signup/login/refresh entry points is wrapped
	// in middleware.Authenticate, so no handler body ever runs without a
	// verified identity in the request context.
	router := http.NewServeMux()

	gated := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.Authenticate(tokens, h)
	}

	// Admin authentication
	router.HandleFunc("POST /api/auth/admin/signup", adminauth.Signup(store))
	router.HandleFunc("POST /api/auth/admin/login", adminauth.Login(store, tokens))
	router.HandleFunc("POST /api/auth/admin/refresh", adminauth.Refresh(tokens))

	// Students
	router.HandleFunc("POST /api/students/signup", student.Signup(store))
	router.HandleFunc("GET /api/students/", gated(student.GetList(store, roles, gate)))
	router.HandleFunc("GET /api/students/student/{id}", gated(student.GetByID(store, roles, gate)))
	router.HandleFunc("PUT /api/students/student/{id}", gated(student.Update(store, roles, gate)))
	router.HandleFunc("DELETE /api/students/student/{id}", gated(student.Delete(store, roles, gate)))

	// Courses (student-facing)
	router.HandleFunc("GET /api/course/getall_course", gated(course.GetAll(store, roles, gate)))
	router.HandleFunc("GET /api/course/getme/get_course", gated(course.GetMine(store, roles, gate)))
	router.HandleFunc("POST /api/course/create_course", gated(course.Create(store, roles, gate)))

	// Courses and grades (admin)
	router.HandleFunc("GET /api/auth/admin/courses", gated(admin.ListCourses(store, roles, gate)))
	router.HandleFunc("POST /api/auth/admin/courses", gated(admin.CreateCourse(store, roles, gate)))
	router.HandleFunc("PUT /api/auth/admin/courses/{id}", gated(admin.UpdateCourse(store, roles, gate)))
	router.HandleFunc("DELETE /api/auth/admin/courses/{id}", gated(admin.DeleteCourse(store, roles, gate)))
	router.HandleFunc("GET /api/auth/admin/grades", gated(admin.ListGrades(store, roles, gate)))
	router.HandleFunc("POST /api/auth/admin/course/add_grade/{course_id}/{student_id}",
		gated(admin.AddGrade(store, roles, gate)))
	router.HandleFunc("PUT /api/auth/admin/course/edit_grade/{id}", gated(admin.EditGrade(store, roles, gate)))
	router.HandleFunc("DELETE /api/auth/admin/course/delete_grade/{id}", gated(admin.DeleteGrade(store, roles, gate)))

	// Admin student management
	router.HandleFunc("DELETE /api/admin/delete/{id}", gated(admin.DeleteStudent(store, roles, gate)))
	router.HandleFunc("DELETE /api/admin/student/{id}/course", gated(admin.DeleteStudentCourse(store, roles, gate)))
	router.HandleFunc("GET /api/admin/course/{name}/students", gated(admin.StudentsPerCourse(store, roles, gate)))

	// ── 6. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,

		// The request-id middleware wraps the whole router so every
		// request — authenticated or not — gets a correlation id.
		Handler: middleware.RequestID(log, router),

		// Production hardening — set timeouts to prevent slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 7. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks forever; run it in a goroutine so the
	// graceful-shutdown code below can run.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 8. Wait for Shutdown Signal ───────────────────────────────────────
	// Buffered so we don't miss the signal if main is briefly busy.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	// Give in-flight requests 5 seconds to finish before forcing exit.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): colourised, human-readable output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
//
//	JSON logs are easy to ingest by log aggregators (Loki, CloudWatch, etc.)
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo, // INFO and above in production
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug, // more verbose in staging
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			tint.NewHandler(os.Stdout, &tint.Options{
				Level:      slog.LevelDebug,
				TimeFormat: time.Kitchen,
			}),
		)
	}
}
