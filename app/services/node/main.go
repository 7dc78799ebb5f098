package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/broker"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Genesis struct {
			Path string `conf:"help:optional genesis file with the ledger policy"`
		}
		Broker struct {
			URL     string `conf:"help:optional nats url ledger events are published to"`
			Subject string `conf:"default:ledger.events"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
		Miner struct {
			Enabled      bool          `conf:"default:false,help:mine inside the node process"`
			KeyPath      string        `conf:"default:zblock/miner.ecdsa"`
			PollInterval time.Duration `conf:"default:5s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for miner ids. The
	// names come from the file names in the accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load miner name service: %w", err)
	}

	// Logging the miners for documentation in the logs.
	for minerID, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "minerID", minerID)
	}

	// =========================================================================
	// Ledger Support

	gen := genesis.Default()
	if cfg.Genesis.Path != "" {
		gen, err = genesis.Load(cfg.Genesis.Path)
		if err != nil {
			return fmt.Errorf("unable to load genesis file: %w", err)
		}
	}

	log.Infow("startup", "status", "genesis", "difficultyFactor", gen.DifficultyFactor, "maxDifficulty", gen.MaxDifficulty,
		"txPerBlock", gen.TxPerBlock, "feePerTx", gen.FeePerTx)

	// The ledger packages accept a function of this signature to allow the
	// application to log. Events prefixed for viewers are also sent to any
	// websocket client that is connected into the system.
	evts := events.New("viewer:")

	// The same events can be published to a nats subject for processes
	// that don't hold a websocket against the node.
	var brk *broker.Broker
	if cfg.Broker.URL != "" {
		brk, err = broker.New(cfg.Broker.URL, cfg.Broker.Subject, "viewer:")
		if err != nil {
			return fmt.Errorf("unable to connect to event broker: %w", err)
		}
		defer func() {
			log.Infow("shutdown", "status", "draining event broker")
			if err := brk.Close(); err != nil {
				log.Errorw("shutdown", "status", "event broker drain failed", "ERROR", err)
			}
		}()

		log.Infow("startup", "status", "event broker connected", "url", cfg.Broker.URL, "subject", brk.Subject())
	}

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)

		if brk != nil {
			if _, err := brk.Send(s); err != nil {
				log.Errorw("event broker", "status", "publish failed", "ERROR", err)
			}
		}
	}

	// The state value represents the ledger and manages the chain and the
	// mempool and provides an API for application support.
	st, err := state.New(state.Config{
		Genesis:   gen,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}

	if err := metrics.RegisterLedger(prometheus.DefaultRegisterer, st); err != nil {
		return fmt.Errorf("registering ledger metrics: %w", err)
	}

	// A node can mine its own mempool. The miner is credited through the fee
	// transaction of every block it mines.
	if cfg.Miner.Enabled {
		minerID, err := signature.LoadMinerID(cfg.Miner.KeyPath)
		if err != nil {
			return fmt.Errorf("unable to load private key for miner: %w", err)
		}

		log.Infow("startup", "status", "miner started", "minerID", minerID)

		w := worker.Run(worker.Config{
			Source:       worker.StateSource{State: st},
			MinerID:      minerID,
			PollInterval: cfg.Miner.PollInterval,
			EvHandler:    ev,
		})
		defer w.Shutdown()
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
