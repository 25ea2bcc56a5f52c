package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/config"
	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
	"stockroom/internal/services"
)

type Deps struct {
	Auth     *services.AuthService
	AuditSvc *services.AuditService
	Notifier services.Notifier

	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	CategoryHandler *CategoryHandler
	SaleHandler     *SaleHandler
	AlertHandler    *AlertHandler
	AuditHandler    *AuditHandler

	cfg config.Config
}

// NewDeps wires repositories, services and handlers. extra receives every
// audit event after it is persisted (e.g. a Kafka sink); it may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, clock services.Clock, extra services.Notifier) *Deps {
	if clock == nil {
		clock = services.SystemClock{}
	}
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	ledger := repos.NewLedgerRepo(db)
	saleRepo := repos.NewSaleRepo(db)
	alertRepo := repos.NewAlertRepo(db)
	auditRepo := repos.NewAuditRepo(db)

	auditSvc := services.NewAuditService(auditRepo, clock)
	var notifier services.Notifier = auditSvc
	if extra != nil {
		notifier = services.MultiNotifier{auditSvc, extra}
	}

	authSvc := services.NewAuthService(userRepo, notifier, clock)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, notifier, clock)
	saleSvc := services.NewSaleService(db, prodRepo, ledger, saleRepo, notifier, clock)
	alertSvc := services.NewAlertService(alertRepo, notifier, clock)

	mode := services.BatchMode(cfg.SalesBatchMode)
	if mode != services.Atomic {
		mode = services.BestEffort
	}

	return &Deps{
		Auth:     authSvc,
		AuditSvc: auditSvc,
		Notifier: notifier,

		AuthHandler:     &AuthHandler{Auth: authSvc, Audit: notifier, Clock: clock},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Audit: notifier, Clock: clock},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		SaleHandler:     &SaleHandler{Sales: saleSvc, DefaultMode: mode},
		AlertHandler:    &AlertHandler{Alerts: alertSvc},
		AuditHandler:    &AuditHandler{Audit: auditSvc},

		cfg: cfg,
	}
}

// Mount registers the API on r. Trailing slashes are accepted because the
// app is not in strict routing mode.
func (d *Deps) Mount(r fiber.Router) {
	loginMax := d.cfg.LoginRateLimit
	if loginMax <= 0 {
		loginMax = 5
	}
	loginWindow := d.cfg.LoginRateWindow
	if loginWindow <= 0 {
		loginWindow = 10 * time.Minute
	}

	r.Post("/login", limiter.New(limiter.Config{
		Max:        loginMax,
		Expiration: loginWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)

	// Per route, so unknown paths still fall through to 404.
	authn := Authenticate(d.Auth)
	route := func(method, path string, h fiber.Handler, roles ...domain.Role) {
		chain := []fiber.Handler{authn}
		if len(roles) > 0 {
			chain = append(chain, RequireRoles(roles...))
		}
		r.Add(method, path, append(chain, h)...)
	}

	const (
		mgr   = domain.RoleManager
		clerk = domain.RoleStockClerk
		sales = domain.RoleSalesPerson
	)

	route(fiber.MethodPost, "/logout", d.AuthHandler.Logout)
	route(fiber.MethodGet, "/shop/info", d.AuthHandler.ShopInfo)

	// Products
	route(fiber.MethodGet, "/products", d.ProductHandler.List, mgr, clerk, sales)
	route(fiber.MethodPost, "/products/add", d.ProductHandler.Create, mgr, clerk)
	route(fiber.MethodGet, "/products/:id<int>", d.ProductHandler.Detail, mgr, clerk, sales)
	route(fiber.MethodPut, "/products/edit/:id<int>", d.ProductHandler.Edit, mgr, clerk)
	route(fiber.MethodDelete, "/products/delete/:id<int>", d.ProductHandler.Delete, mgr, clerk)
	route(fiber.MethodPut, "/products/:id<int>/alert", d.AlertHandler.Update, mgr, clerk)

	// Categories
	route(fiber.MethodGet, "/categories", d.CategoryHandler.List, mgr, clerk, sales)
	route(fiber.MethodPost, "/categories/add", d.CategoryHandler.Create, mgr, clerk)

	// Sales
	route(fiber.MethodPost, "/sales/record", d.SaleHandler.Record, mgr, sales)
	route(fiber.MethodGet, "/sales", d.SaleHandler.List, mgr, sales)
	route(fiber.MethodGet, "/sales/counts", d.SaleHandler.Counts, mgr, sales)

	// Stock alerts & audit
	route(fiber.MethodGet, "/alerts", d.AlertHandler.List, mgr, clerk)
	route(fiber.MethodGet, "/audit-logs", d.AuditHandler.List, mgr)
}
