package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/kmolski/filevault/internal/config"
	"github.com/kmolski/filevault/internal/handlers"
	"github.com/kmolski/filevault/internal/keys"
	custommw "github.com/kmolski/filevault/internal/middleware"
	"github.com/kmolski/filevault/internal/service"
	"github.com/kmolski/filevault/internal/storage"
)

var flags struct {
	config        string
	addr          string
	baseDir       string
	bodyLimit     string
	logLevel      string
	publicKey     string
	privateKey    string
	storage       string
	shutdownGrace time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "filevault",
	Short: "filevault - an HTTP service that stores uploaded files, optionally encrypted.",
	Long: `filevault accepts multipart uploads and persists them as-is, encrypted or
decrypted with the server's AES secret or RSA key pair, then serves them back.

Every flag overrides the matching environment variable and config file entry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.config, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	f.StringVar(&flags.addr, "addr", "", "listen address (LISTEN_ADDR)")
	f.StringVar(&flags.baseDir, "base-dir", "", "upload directory for the local backend (UPLOAD_BASE_DIR)")
	f.StringVar(&flags.bodyLimit, "body-limit", "", "maximum request body size, e.g. 1G (BODY_LIMIT)")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	f.StringVar(&flags.publicKey, "rsa-public-key", "", "path to the RSA public key (RSA_PUBLIC_KEY_FILE)")
	f.StringVar(&flags.privateKey, "rsa-private-key", "", "path to the RSA private key (RSA_PRIVATE_KEY_FILE)")
	f.StringVar(&flags.storage, "storage", "", "storage backend: local, s3 or gcs (STORAGE_BACKEND)")
	f.DurationVar(&flags.shutdownGrace, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command) {
	set := func(name string, dst *string, value string) {
		if cmd.Flags().Changed(name) {
			*dst = value
		}
	}
	set("addr", &config.ListenAddr, flags.addr)
	set("base-dir", &config.BaseDir, flags.baseDir)
	set("body-limit", &config.BodyLimit, flags.bodyLimit)
	set("log-level", &config.LogLevel, flags.logLevel)
	set("rsa-public-key", &config.RSAPublicKeyFile, flags.publicKey)
	set("rsa-private-key", &config.RSAPrivateKeyFile, flags.privateKey)
	set("storage", &config.StorageBackend, flags.storage)

	// a key file given on the command line beats an inline key from the environment
	if cmd.Flags().Changed("rsa-public-key") {
		config.RSAPublicKey = ""
	}
	if cmd.Flags().Changed("rsa-private-key") {
		config.RSAPrivateKey = ""
	}
}

func logLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

func newServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(logLevel(config.LogLevel))

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(config.BodyLimit))
	e.Use(custommw.CompressionWithConfig(custommw.CompressionConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Path(), "/download")
		},
		BrotliLevel: 5,
		GzipLevel:   5,
	}))

	handlers.New(svc).Register(e)
	return e
}

func run(cmd *cobra.Command) error {
	if err := config.Load(flags.config); err != nil {
		return err
	}
	applyFlags(cmd)
	log.SetLevel(logLevel(config.LogLevel))

	material, err := config.KeyMaterial()
	if err != nil {
		return err
	}
	km, err := keys.NewManager(material)
	if err != nil {
		return err
	}
	log.Infof("Loaded key material (RSA block size %d bytes)", km.BlockSize())

	if err := storage.Initialize(cmd.Context()); err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error(err)
		}
	}()

	e := newServer(service.New(km, storage.GetFileStore()))

	errc := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", config.ListenAddr)
		if err := e.Start(config.ListenAddr); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case <-quit:
	}

	e.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), flags.shutdownGrace)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return err
	}

	e.Logger.Info("Server shutdown complete")
	return nil
}
