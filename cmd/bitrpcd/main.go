// Command bitrpcd bootstraps a BitRPC TCP server process: GOMAXPROCS
// tuning, structured logging, config loading, and the accept loop. It
// registers no services itself; Register exists for generated service code
// to plug services in before main starts serving.
package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"bitrpc/bitrpcconfig"
	"bitrpc/ringbuf"
	"bitrpc/rpc/rpcserver"
	"bitrpc/rpc/service"
	"bitrpc/shmmsg"
)

var registry = service.NewRegistry(0)

// Register adds svc to the process-wide registry bitrpcd serves. Because it
// lives in package main, it is called from an init function in a source
// file compiled into this command (such as generated service code), before
// main runs.
func Register(svc *service.Service) {
	registry.Register(svc)
}

func main() {
	configPath := flag.String("config", "", "path to a bitrpc config YAML file (defaults baked in if omitted)")
	flag.Parse()

	if _, err := maxprocs.Set(); err != nil {
		// Not fatal: GOMAXPROCS simply stays at its runtime default.
		os.Stderr.WriteString("bitrpcd: maxprocs.Set: " + err.Error() + "\n")
	}

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := bitrpcconfig.Default()
	if *configPath != "" {
		cfg, err = bitrpcconfig.Load(*configPath)
		if err != nil {
			log.Fatal("bitrpcd: failed to load config", zap.Error(err))
		}
	}

	lis, err := net.Listen("tcp", cfg.Server.ListenAddr)
	if err != nil {
		log.Fatal("bitrpcd: failed to listen", zap.Error(err))
	}

	shm := shmmsg.NewManager(shmmsg.Config{
		RingBufferSize:   cfg.Ring.BufferSize,
		InstanceName:     cfg.Ring.Name,
		EnableEvents:     cfg.Ring.EnableEvents,
		MaxMessageSize:   cfg.Manager.MaxMessageSize,
		AutoCleanup:      cfg.Manager.AutoCleanup,
		HeartbeatInterval: cfg.Manager.HeartbeatInterval(),
	}, log)
	if err := shm.StartProducer(ringbuf.CreateOrOpen); err != nil {
		log.Fatal("bitrpcd: failed to start shared-memory producer", zap.Error(err))
	}
	if err := shmmsg.Default.Register(cfg.Ring.Name, shm); err != nil {
		log.Fatal("bitrpcd: failed to register shared-memory instance", zap.Error(err))
	}
	log.Info("bitrpcd: shared-memory channel ready",
		zap.String("name", cfg.Ring.Name),
		zap.Uint64("buffer_size", cfg.Ring.BufferSize))

	srv := rpcserver.New(registry, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("bitrpcd: shutting down")
		_ = srv.Stop()
		_ = shmmsg.Default.StopAll()
	}()

	log.Info("bitrpcd: listening", zap.String("addr", cfg.Server.ListenAddr))
	if err := srv.Serve(lis); err != nil {
		log.Error("bitrpcd: server exited", zap.Error(err))
		os.Exit(1)
	}
}
