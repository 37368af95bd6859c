// Package httpapi exposes the collection store over HTTP/JSON.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/kamensky/folio/internal/api"
	"github.com/kamensky/folio/internal/convert"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/service"
)

const apiPrefix = "/api/v1"

// Config carries server wiring options.
type Config struct {
	Addr    string
	SignKey []byte
}

// Server serves the admin and public JSON API.
type Server struct {
	echo    *echo.Echo
	log     *zap.Logger
	signKey []byte

	auth        service.AuthService
	projects    service.ProjectService
	experiences service.ExperienceService
	skills      service.SkillService
	resumes     service.ResumeService
	files       service.FileService

	addr string
}

// New constructs the server and registers all routes.
func New(cfg Config, log *zap.Logger,
	auth service.AuthService,
	projects service.ProjectService,
	experiences service.ExperienceService,
	skills service.SkillService,
	resumes service.ResumeService,
	files service.FileService,
) *Server {
	s := &Server{
		log:         log,
		signKey:     cfg.SignKey,
		auth:        auth,
		projects:    projects,
		experiences: experiences,
		skills:      skills,
		resumes:     resumes,
		files:       files,
		addr:        cfg.Addr,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(s.loggingMiddleware)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	pCol := collection[model.Project, api.ProjectRow]{
		svc:     s.projects,
		fromRow: convert.FromProjectRow,
		toRow:   convert.ToProjectRow,
	}
	eCol := collection[model.Experience, api.ExperienceRow]{
		svc:         s.experiences,
		fromRow:     convert.FromExperienceRow,
		toRow:       convert.ToExperienceRow,
		filterParam: "type",
	}
	sCol := collection[model.Skill, api.SkillRow]{
		svc:         s.skills,
		fromRow:     convert.FromSkillRow,
		toRow:       convert.ToSkillRow,
		filterParam: "category",
	}
	rCol := collection[model.Resume, api.ResumeRow]{
		svc:     s.resumes,
		fromRow: convert.FromResumeRow,
		toRow:   convert.ToResumeRow,
	}

	v1 := e.Group(apiPrefix)
	v1.POST("/login", s.handleLogin)
	v1.POST("/register", s.handleRegister)

	// Public read-only listings serve only active rows.
	pub := v1.Group("/public")
	pub.GET("/projects", pCol.list(true))
	pub.GET("/experiences", eCol.list(true))
	pub.GET("/skills", sCol.list(true))
	pub.GET("/resumes", rCol.list(true))

	adm := v1.Group("", s.authMiddleware)
	registerCollection(adm, "/projects", pCol)
	registerCollection(adm, "/experiences", eCol)
	registerCollection(adm, "/skills", sCol)
	registerCollection(adm, "/resumes", rCol)

	adm.GET("/files", s.handleFileList)
	adm.POST("/files", s.handleFileUpload)
	adm.GET("/files/content", s.handleFileContent)
	adm.DELETE("/files", s.handleFileDelete)

	s.echo = e
}

func registerCollection[M any, R any](g *echo.Group, path string, col collection[M, R]) {
	g.GET(path, col.list(false))
	g.POST(path, col.create)
	g.PATCH(path, col.update)
	g.DELETE(path, col.remove)
}

// Router returns the HTTP handler, useful in tests.
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start runs the listener until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.echo.Shutdown(context.Background())
	}
}
