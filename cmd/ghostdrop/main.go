// Command ghostdrop is a development harness that exercises the core's
// command surface directly from a terminal; it is not the UI.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ghostdrop/internal/config"
	"ghostdrop/internal/core"
	"ghostdrop/internal/ghost"
	"ghostdrop/internal/logging"
	"ghostdrop/internal/metrics"
)

func main() {
	cfg := config.Default()

	var (
		dev         bool
		storageURL  string
		controlAddr string
		metricsAddr string
		relay       bool
	)
	flag.StringVar(&storageURL, "storage-url", cfg.StorageBaseURL, "content-addressed storage backend base URL")
	flag.StringVar(&controlAddr, "control-addr", cfg.ControlAddr, "local control HTTP address (stored in the config; no control server is started)")
	flag.StringVar(&metricsAddr, "metrics-addr", cfg.MetricsAddr, "local metrics HTTP address")
	flag.BoolVar(&relay, "relay", cfg.EnableRelay, "record the relay preference in the config; circuit-relay/DCUtR NAT traversal is enabled only by building with -tags relay, whatever this flag says")
	flag.BoolVar(&dev, "dev", false, "use a development console logger instead of production JSON")
	flag.Parse()

	cfg.StorageBaseURL = storageURL
	cfg.ControlAddr = controlAddr
	cfg.MetricsAddr = metricsAddr
	cfg.EnableRelay = relay

	var log *zap.Logger
	if dev {
		log = logging.NewDevelopment("ghostdrop")
	} else {
		log = logging.New("ghostdrop")
	}
	defer log.Sync()

	paths, err := config.Resolve()
	if err != nil {
		log.Fatal("resolve config paths", zap.Error(err))
	}
	log.Info("using application data directory", zap.String("dir", paths.BaseDir))

	reg, promReg := metrics.New()
	c := core.New(paths, cfg, log, reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runREPL(ctx, c, log)

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// runREPL is a minimal line-oriented front-end exercising every command in
// the host command surface, standing in for the out-of-scope UI bridge.
func runREPL(ctx context.Context, c *core.Core, log *zap.Logger) {
	fmt.Println("ghostdrop dev harness. Commands:")
	fmt.Println("  init <password>")
	fmt.Println("  start")
	fmt.Println("  send <target_public_key> <message...>")
	fmt.Println("  drop <file_path> <threshold> <total_shards>")
	fmt.Println("  test_ipfs")
	fmt.Println("  quit")

	go func() {
		for {
			select {
			case ev, ok := <-eventsOrNil(c):
				if !ok {
					return
				}
				switch e := ev.(type) {
				case ghost.GhostMsg:
					fmt.Printf("[ghost_msg] from=%s id=%s content=%s\n", e.From, e.ID, e.Content)
				case ghost.MsgDelivered:
					fmt.Printf("[msg_delivered] id=%s\n", e.ID)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "init":
			if len(fields) < 2 {
				fmt.Println("usage: init <password>")
				continue
			}
			id, err := c.InitIdentity(fields[1])
			printResult("init_identity", id, err)

		case "start":
			err := c.StartGhostMode(ctx)
			printResult("start_ghost_mode", "ok", err)

		case "send":
			if len(fields) < 3 {
				fmt.Println("usage: send <target_public_key> <message...>")
				continue
			}
			id, err := c.SendGhostMessage(ctx, fields[1], strings.Join(fields[2:], " "))
			printResult("send_ghost_message", id, err)

		case "drop":
			if len(fields) != 4 {
				fmt.Println("usage: drop <file_path> <threshold> <total_shards>")
				continue
			}
			t, _ := strconv.Atoi(fields[2])
			n, _ := strconv.Atoi(fields[3])
			result, err := c.CreateDrop(ctx, fields[1], t, n)
			if err != nil {
				printResult("create_drop", "", err)
				continue
			}
			fmt.Printf("create_drop: cid=%s shards=%v\n", result.CID, result.Shards)

		case "test_ipfs":
			v, err := c.TestIPFS(ctx)
			printResult("test_ipfs", v, err)

		case "quit":
			os.Exit(0)

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func eventsOrNil(c *core.Core) <-chan ghost.Event {
	ev := c.Events()
	if ev == nil {
		return make(chan ghost.Event)
	}
	return ev
}

func printResult(cmd, value string, err error) {
	if err != nil {
		fmt.Printf("%s: error: %v\n", cmd, err)
		return
	}
	fmt.Printf("%s: %s\n", cmd, value)
}
