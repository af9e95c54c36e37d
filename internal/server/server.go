// Package server exposes the HTTP API: session auth, tenant routes and the
// admin surface.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shopstack/shopbill/internal/admin"
	admindomain "github.com/shopstack/shopbill/internal/admin/domain"
	"github.com/shopstack/shopbill/internal/auth"
	authdomain "github.com/shopstack/shopbill/internal/auth/domain"
	"github.com/shopstack/shopbill/internal/auth/session"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/customer"
	customerdomain "github.com/shopstack/shopbill/internal/customer/domain"
	"github.com/shopstack/shopbill/internal/expense"
	expensedomain "github.com/shopstack/shopbill/internal/expense/domain"
	"github.com/shopstack/shopbill/internal/invoice"
	invoicedomain "github.com/shopstack/shopbill/internal/invoice/domain"
	"github.com/shopstack/shopbill/internal/product"
	productdomain "github.com/shopstack/shopbill/internal/product/domain"
	"github.com/shopstack/shopbill/internal/providers/pdf"
	"github.com/shopstack/shopbill/internal/purchaseorder"
	purchaseorderdomain "github.com/shopstack/shopbill/internal/purchaseorder/domain"
	"github.com/shopstack/shopbill/internal/ratelimit"
	"github.com/shopstack/shopbill/internal/shop"
	shopdomain "github.com/shopstack/shopbill/internal/shop/domain"
	"github.com/shopstack/shopbill/internal/supplier"
	supplierdomain "github.com/shopstack/shopbill/internal/supplier/domain"
	"github.com/shopstack/shopbill/internal/verification"
	verificationdomain "github.com/shopstack/shopbill/internal/verification/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(registerGin),
	session.Module,
	ratelimit.Module,
	auth.Module,
	shop.Module,
	customer.Module,
	product.Module,
	supplier.Module,
	purchaseorder.Module,
	expense.Module,
	invoice.Module,
	verification.Module,
	admin.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	db       *gorm.DB
	log      *zap.Logger
	sessions *session.Manager

	authsvc      authdomain.Service
	loginLimiter *ratelimit.LoginLimiter

	shopSvc          shopdomain.Service
	customerSvc      customerdomain.Service
	productSvc       productdomain.Service
	supplierSvc      supplierdomain.Service
	purchaseOrderSvc purchaseorderdomain.Service
	expenseSvc       expensedomain.Service
	invoiceSvc       invoicedomain.Service
	verificationSvc  verificationdomain.Service
	adminSvc         admindomain.Service

	pdf pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Sessions *session.Manager

	Authsvc      authdomain.Service
	LoginLimiter *ratelimit.LoginLimiter

	ShopSvc          shopdomain.Service
	CustomerSvc      customerdomain.Service
	ProductSvc       productdomain.Service
	SupplierSvc      supplierdomain.Service
	PurchaseOrderSvc purchaseorderdomain.Service
	ExpenseSvc       expensedomain.Service
	InvoiceSvc       invoicedomain.Service
	VerificationSvc  verificationdomain.Service
	AdminSvc         admindomain.Service

	PDF pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		log:              p.Log.Named("server"),
		sessions:         p.Sessions,
		authsvc:          p.Authsvc,
		loginLimiter:     p.LoginLimiter,
		shopSvc:          p.ShopSvc,
		customerSvc:      p.CustomerSvc,
		productSvc:       p.ProductSvc,
		supplierSvc:      p.SupplierSvc,
		purchaseOrderSvc: p.PurchaseOrderSvc,
		expenseSvc:       p.ExpenseSvc,
		invoiceSvc:       p.InvoiceSvc,
		verificationSvc:  p.VerificationSvc,
		adminSvc:         p.AdminSvc,
		pdf:              p.PDF,
	}

	svc.registerAuthRoutes()
	svc.registerShopRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/api/v1/auth")

	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/logout", s.Logout)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerShopRoutes() {
	api := s.engine.Group("/api/v1/shop", s.AuthRequired(), s.ShopContext())

	api.GET("/profile", s.GetShopProfile)
	api.PUT("/profile", s.UpdateShopProfile)
	api.GET("/dashboard", s.GetDashboardStats)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/search", s.SearchCustomersByPhone)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)
	api.GET("/customers/:id/stats", s.GetCustomerStats)
	api.GET("/customers/:id/invoices", s.ListCustomerInvoices)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/categories", s.ListProductCategories)
	api.GET("/products/low-stock", s.ListLowStockProducts)
	api.GET("/products/barcode/:code", s.GetProductByBarcode)
	api.GET("/products/:id", s.GetProductByID)
	api.PUT("/products/:id", s.UpdateProduct)
	api.POST("/products/:id/stock", s.UpdateProductStock)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Suppliers --------
	api.GET("/suppliers", s.ListSuppliers)
	api.POST("/suppliers", s.CreateSupplier)
	api.GET("/suppliers/:id", s.GetSupplierByID)
	api.PUT("/suppliers/:id", s.UpdateSupplier)
	api.DELETE("/suppliers/:id", s.DeleteSupplier)

	// -------- Purchase orders --------
	api.GET("/purchase-orders", s.ListPurchaseOrders)
	api.POST("/purchase-orders", s.CreatePurchaseOrder)
	api.GET("/purchase-orders/:id", s.GetPurchaseOrderByID)
	api.PUT("/purchase-orders/:id", s.UpdatePurchaseOrder)
	api.DELETE("/purchase-orders/:id", s.DeletePurchaseOrder)

	// -------- Expenses --------
	api.GET("/expenses", s.ListExpenses)
	api.POST("/expenses", s.CreateExpense)
	api.GET("/expenses/:id", s.GetExpenseByID)
	api.PUT("/expenses/:id", s.UpdateExpense)
	api.DELETE("/expenses/:id", s.DeleteExpense)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.GET("/invoices/:id/items", s.ListInvoiceItems)
	api.GET("/invoices/:id/payments", s.ListInvoicePayments)
	api.POST("/invoices/:id/payments", s.AddInvoicePayment)
	api.GET("/invoices/:id/payments/check", s.CheckInvoicePayment)
	api.GET("/invoices/:id/summary", s.GetInvoicePaymentSummary)
	api.POST("/invoices/:id/returns", s.CreateReturnInvoice)
	api.GET("/invoices/:id/returns", s.ListReturnInvoices)
	api.GET("/invoices/:id/net", s.GetInvoiceNetAmount)
	api.GET("/invoices/:id/pdf", s.GetInvoicePDF)

	// -------- Subscription verification --------
	api.POST("/verifications", s.SubmitVerification)
	api.GET("/verifications", s.ListOwnVerifications)
}

func (s *Server) registerAdminRoutes() {
	api := s.engine.Group("/api/v1/admin", s.AuthRequired(), s.RequireAdmin())

	api.GET("/dashboard", s.GetPlatformStats)

	api.GET("/shops", s.AdminListShops)
	api.POST("/shops/:id/activate", s.AdminActivateShop)
	api.POST("/shops/:id/deactivate", s.AdminDeactivateShop)

	api.GET("/verifications", s.AdminListVerifications)
	api.POST("/verifications/:id/verify", s.AdminVerifyPayment)
	api.POST("/verifications/:id/reject", s.AdminRejectPayment)
}
