package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rl1809/inventory-tracker/internal/adapter/auth"
	"github.com/rl1809/inventory-tracker/internal/adapter/handler"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP and gRPC servers",
		Action: func(c *cli.Context) error {
			log.SetFormatter(&log.JSONFormatter{})

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.close()

			// A failed initial load leaves the cache empty; clients can retry
			// through /api/refresh.
			if _, _, err := rt.inventory.LoadAll(ctx); err != nil {
				log.WithError(err).Error("initial inventory load failed")
			}

			tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)

			loginLimit, err := handler.NewLoginLimiter(cfg.LoginRate)
			if err != nil {
				return err
			}

			httpHandler := handler.NewHTTPHandler(rt.stock, rt.inventory, rt.auth, tokens, rt.notifier)
			httpServer := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           httpHandler.Router(loginLimit),
				ReadHeaderTimeout: 10 * time.Second,
			}

			grpcServer := grpc.NewServer()
			handler.RegisterInventoryServiceServer(grpcServer, handler.NewGRPCHandler(rt.stock, rt.inventory, tokens))

			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				log.WithField("addr", cfg.GRPCAddr).Info("gRPC server listening")
				return grpcServer.Serve(lis)
			})
			g.Go(func() error {
				log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					log.WithError(err).Warn("HTTP shutdown")
				}
				log.Info("HTTP server stopped")

				grpcServer.GracefulStop()
				log.Info("gRPC server stopped")
				return nil
			})

			return g.Wait()
		},
	}
}
