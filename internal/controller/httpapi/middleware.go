package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"

	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxName   = "name"
)

// Claims токена: sub это ID студента или сотрудника
type Claims struct {
	Sub  int64  `json:"sub"`
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func unauthorized(code string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, code)
}

// extractBearer достаёт токен из заголовка Authorization
func extractBearer(c echo.Context) (string, error) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return "", unauthorized("MISSING_AUTH_HEADER")
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", unauthorized("INVALID_AUTH_HEADER")
	}
	return parts[1], nil
}

// RequireAuth проверяет JWT (HS256) и кладёт claims в контекст
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, err := extractBearer(c)
			if err != nil {
				return err
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
				// Подмена алгоритма
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return unauthorized("INVALID_TOKEN")
			}
			if claims.Sub <= 0 || claims.Role == "" {
				return unauthorized("INVALID_CLAIMS")
			}

			c.Set(ctxUserID, claims.Sub)
			c.Set(ctxRole, strings.ToLower(claims.Role))
			c.Set(ctxName, claims.Name)
			return next(c)
		}
	}
}

// RequireRole пропускает только перечисленные роли
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "FORBIDDEN")
			}
			return next(c)
		}
	}
}

// callerID ID вызывающего из токена
func callerID(c echo.Context) int64 {
	id, _ := c.Get(ctxUserID).(int64)
	return id
}

// SignToken выпускает токен. Используется тестами и служебными скриптами.
func SignToken(secret string, sub int64, role, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:  sub,
		Role: role,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// requestID проставляет X-Request-ID, если клиент его не прислал
func requestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// requestLogger пишет каждый запрос в zap
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if id := callerID(c); id != 0 {
				fields = append(fields, zap.Int64("caller_id", id))
			}

			if v.Status >= http.StatusInternalServerError {
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				logger.Error("Request failed", fields...)
				return nil
			}
			logger.Info("Request handled", fields...)
			return nil
		},
	})
}
