package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	checkoutdomain "github.com/vitalislabs/vitalis/internal/checkout/domain"
	"github.com/vitalislabs/vitalis/internal/config"
	kycdomain "github.com/vitalislabs/vitalis/internal/kyc/domain"
	"github.com/vitalislabs/vitalis/internal/observability"
	orgdomain "github.com/vitalislabs/vitalis/internal/organization/domain"
	walletdomain "github.com/vitalislabs/vitalis/internal/wallet/domain"
	webhookdomain "github.com/vitalislabs/vitalis/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(registerHooks),
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Checkout checkoutdomain.Service
	Wallet   walletdomain.Service
	Org      orgdomain.Service
	KYC      kycdomain.Service
	Webhook  webhookdomain.Service
	Metrics  *observability.Metrics
}

type Server struct {
	log         *zap.Logger
	cfg         config.Config
	checkoutSvc checkoutdomain.Service
	walletSvc   walletdomain.Service
	orgSvc      orgdomain.Service
	kycSvc      kycdomain.Service
	webhookSvc  webhookdomain.Service
	metrics     *observability.Metrics

	engine *gin.Engine
	httpSrv *http.Server
}

func NewServer(p Params) *Server {
	if p.Cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		log:         p.Log.Named("server"),
		cfg:         p.Cfg,
		checkoutSvc: p.Checkout,
		walletSvc:   p.Wallet,
		orgSvc:      p.Org,
		kycSvc:      p.KYC,
		webhookSvc:  p.Webhook,
		metrics:     p.Metrics,
	}
	s.engine = s.buildRouter()
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", p.Cfg.App.Port),
		Handler: s.engine,
	}
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	router.POST("/webhooks/gateway", s.HandleGatewayWebhook)

	api := router.Group("/api")
	{
		api.GET("/organizations/:id/access", s.GetAccessStatus)
		api.POST("/organizations/:id/subscription", s.CreateSubscription)
		api.DELETE("/organizations/:id/subscription", s.CancelSubscription)
		api.POST("/kyc/subaccounts", s.RequestSubaccount)

		clinics := api.Group("/clinics/:clinicID", s.AccessGate())
		{
			clinics.POST("/checkout/compute", s.ComputeCheckout)
			clinics.POST("/checkout/confirm", s.ConfirmCheckout)
			clinics.GET("/wallets/:clientID/balance", s.GetWalletBalance)
		}
	}

	return router
}

// Engine exposes the router for handler tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func registerHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := s.Start(); err != nil {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
