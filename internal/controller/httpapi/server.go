// Package httpapi HTTP-интерфейс сервиса размещения: маршруты echo,
// JWT-авторизация и единый конверт ответа.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/hostel_rooms/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Services зависимости обработчиков
type Services struct {
	Rooms    *service.RoomService
	Requests *service.RequestService
	Queries  *service.QueryService
	Hostels  *service.HostelService
	Students *service.StudentService
}

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

func NewServer(addr, jwtSecret string, svc Services, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(middleware.Recover())
	e.Use(requestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.CORS())

	registerRoutes(e, jwtSecret, svc)

	return &Server{echo: e, addr: addr, logger: logger}
}

func registerRoutes(e *echo.Echo, jwtSecret string, svc Services) {
	rooms := NewRoomHandler(svc.Rooms)
	requests := NewRequestHandler(svc.Requests)
	queries := NewQueryHandler(svc.Queries)
	directory := NewDirectoryHandler(svc.Hostels, svc.Students)

	auth := RequireAuth(jwtSecret)
	admin := RequireRole(RoleAdmin, RoleStaff)
	student := RequireRole(RoleStudent)

	e.GET("/healthz", Health)

	// ===== Публичные =====
	e.GET("/room", rooms.List)
	e.GET("/room/:id", rooms.Get)
	e.GET("/hostel", directory.ListHostels)
	e.GET("/hostel/stats", queries.Stats)
	e.GET("/hostel/:id", directory.GetHostel)

	// ===== Студент =====
	e.POST("/room/book", rooms.Book, auth, student)
	e.POST("/room/requests", requests.Create, auth, student)
	e.GET("/room/requests/mine", requests.ListMine, auth, student)
	e.GET("/room/history/mine", queries.MyHistory, auth, student)

	// ===== Администратор =====
	e.POST("/room", rooms.Create, auth, admin)
	e.PUT("/room/:id", rooms.Update, auth, admin)
	e.DELETE("/room/:id", rooms.Delete, auth, admin)
	e.POST("/room/assign", rooms.Assign, auth, admin)
	e.POST("/room/unassign", rooms.Unassign, auth, admin)
	e.GET("/room/requests", requests.List, auth, admin)
	e.POST("/room/requests/:id/approve", requests.Approve, auth, admin)
	e.POST("/room/requests/:id/decline", requests.Decline, auth, admin)
	e.GET("/room/allocations", queries.Allocations, auth, admin)
	e.GET("/room/history", queries.History, auth, admin)
	e.POST("/hostel", directory.CreateHostel, auth, admin)
	e.PUT("/hostel/:id", directory.UpdateHostel, auth, admin)
	e.DELETE("/hostel/:id", directory.DeleteHostel, auth, admin)
	e.POST("/students", directory.RegisterStudent, auth, admin)
}

// Handler для тестов через httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run слушает addr до отмены ctx, затем корректно завершает соединения
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
