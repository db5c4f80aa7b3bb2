package rest

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/tabliya/internal/logging"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/metrics"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/ratelimit"
	"github.com/dmitrijs2005/tabliya/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	apiPrefix = "/api/v1"
	banner    = "📦 This is the GET route for the tabliya project"

	maxMultipartMemory = 5 << 20
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, email, token string) error
	Login(ctx context.Context, in services.LoginInput) (*services.Identity, error)
	Logout(ctx context.Context, userID string) error
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*services.Identity, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) error
}

type DishService interface {
	List(ctx context.Context) ([]*models.Dish, error)
	Get(ctx context.Context, id string) (*models.Dish, error)
	Create(ctx context.Context, d *models.Dish, img *services.Image) (*models.Dish, error)
	Update(ctx context.Context, id string, p services.DishPatch) (*models.Dish, error)
	Delete(ctx context.Context, id string) (*models.Dish, error)
}

type TableService interface {
	List(ctx context.Context) ([]*models.Table, error)
	Get(ctx context.Context, id string) (*models.Table, error)
	Create(ctx context.Context, t *models.Table) (*models.Table, error)
	Update(ctx context.Context, id string, p services.TablePatch) (*models.Table, error)
	Delete(ctx context.Context, id string) (*models.Table, error)
}

// Deps are the collaborators of the router. Limiter and Metrics are optional.
type Deps struct {
	Auth           AuthService
	Dishes         DishService
	Tables         TableService
	Cookies        *auth.Cookies
	Limiter        *ratelimit.Limiter
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	FrontendOrigin string
	Development    bool
}

// staffRoles may change the menu and the floor plan.
var staffRoles = []models.Role{models.RoleAdmin, models.RoleManager}

var validatorOnce sync.Once

// useJSONFieldNames makes validation errors refer to fields by their
// request name.
func useJSONFieldNames() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}

func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()

	logger := d.Logger.With("module", "rest")

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered", "panic", recovered)
		writeError(c, http.StatusInternalServerError, msgInternal)
		c.Abort()
	}))
	r.Use(requestLogger(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.Use(securityHeaders(d.Development), cors(d.FrontendOrigin), errorHandler(logger))
	r.NoRoute(notFound)

	api := r.Group(apiPrefix)
	if d.Limiter != nil {
		api.Use(rateLimit(d.Limiter, logger))
	}

	api.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})

	authenticated := Authenticate(d.Auth, d.Cookies)
	staffOnly := AuthorizePermissions(staffRoles...)

	ah := &authHandler{svc: d.Auth, cookies: d.Cookies}
	authGroup := api.Group("/auth")
	authGroup.POST("/register", ah.register)
	authGroup.POST("/verify-email", ah.verifyEmail)
	authGroup.POST("/login", ah.login)
	authGroup.DELETE("/logout", authenticated, ah.logout)
	authGroup.POST("/forget-password", ah.forgotPassword)
	authGroup.POST("/reset-password", ah.resetPassword)

	dh := &dishHandler{svc: d.Dishes}
	dishes := api.Group("/dishes")
	dishes.GET("", dh.list)
	dishes.GET("/:id", dh.get)
	dishes.POST("", authenticated, staffOnly, dh.create)
	dishes.PATCH("/:id", authenticated, staffOnly, dh.update)
	dishes.DELETE("/:id", authenticated, staffOnly, dh.delete)

	th := &tableHandler{svc: d.Tables}
	tables := api.Group("/tables")
	tables.GET("", th.list)
	tables.GET("/:id", th.get)
	tables.POST("", authenticated, staffOnly, th.create)
	tables.PATCH("/:id", authenticated, staffOnly, th.update)
	tables.DELETE("/:id", authenticated, staffOnly, th.delete)

	return r
}
