// Command indexer is the process entrypoint: it wires CLI flags, config,
// logging, the Redis and Postgres stores, the node pool, the orchestrator,
// and the HTTP API, then runs until SIGINT/SIGTERM.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/rony4d/geth-indexer/cmd/indexer/flags"
	"github.com/rony4d/geth-indexer/internal/analytics"
	"github.com/rony4d/geth-indexer/internal/config"
	"github.com/rony4d/geth-indexer/internal/httpapi"
	"github.com/rony4d/geth-indexer/internal/indexer/orchestrator"
	"github.com/rony4d/geth-indexer/internal/logging"
	"github.com/rony4d/geth-indexer/internal/nodeclient"
	"github.com/rony4d/geth-indexer/internal/provider"
	"github.com/rony4d/geth-indexer/internal/relstore"
)

var (
	gitCommit = ""
	gitDate   = ""
)

func main() {
	app := flags.NewApp(gitCommit, gitDate)
	app.Flags = flags.CommonFlags()
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	log, err := logging.New(c.String("sentry.dsn"), logging.ParseLevel(c.String("log.verbosity")))
	if err != nil {
		return err
	}
	entry := log.WithField("component", "indexer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisHostname,
		Password: cfg.RedisPassword,
	}
	if cfg.IsTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	analyticsStore := analytics.New(redisClient)

	pool, err := pgxpool.New(ctx, dsnWithPoolSize(cfg.DatabaseURL, cfg.MaxPoolSize))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	relStore := relstore.New(pool)

	prov := provider.New(analyticsStore, relStore, func() int64 { return time.Now().Unix() })

	registry := newNodeRegistry()
	active, inactive, startHeights := dialEndpoints(ctx, cfg, registry)

	orch := orchestrator.New(prov, entry.WithField("component", "orchestrator"), active, inactive, startHeights)
	orch.OnPromote = registry.put
	orch.Bootstrap(ctx)
	go orch.PollInactive(ctx)

	server := &httpapi.Server{
		Provider: prov,
		Nodes:    registry,
		Log:      entry.WithField("component", "httpapi"),
	}
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ListeningPort),
		Handler: httpapi.NewRouter(server),
	}

	go func() {
		entry.WithField("addr", httpServer.Addr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Fatal("http server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	entry.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// dsnWithPoolSize appends pgxpool's pool_max_conns parameter to a
// Postgres connection string, joined with "?" or "&" depending on
// whether the DSN already carries a query string.
func dsnWithPoolSize(dsn string, maxPoolSize int) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spool_max_conns=%d", dsn, sep, maxPoolSize)
}

// dialEndpoints dials every configured geth endpoint, sorting successful
// chain_id reads into the active map and failures into the inactive map
// for the orchestrator's background poller to retry, per §4.G/§6.
func dialEndpoints(ctx context.Context, cfg *config.Config, registry *nodeRegistry) (map[uint64]nodeclient.Client, map[string]nodeclient.Client, map[uint64]int64) {
	active := make(map[uint64]nodeclient.Client)
	inactive := make(map[string]nodeclient.Client)
	startHeights := make(map[uint64]int64)

	for i, endpoint := range cfg.GethEndpoints {
		node, err := nodeclient.Dial(ctx, endpoint)
		if err != nil {
			continue
		}
		id, err := node.ChainID(ctx)
		if err != nil || id == nil {
			inactive[endpoint] = node
			continue
		}
		chainID := id.Uint64()
		active[chainID] = node
		registry.put(chainID, node)
		if h := cfg.StartHeightFor(i); h != nil {
			startHeights[chainID] = *h
		} else {
			startHeights[chainID] = -1
		}
	}
	return active, inactive, startHeights
}

// nodeRegistry is a thread-safe chainID-to-node lookup backing
// httpapi.NodesByChain; it is filled as endpoints are dialed and
// promoted by the orchestrator's inactive-endpoint poller.
type nodeRegistry struct {
	mu    sync.Mutex
	byID  map[uint64]nodeclient.Client
	order []uint64
}

func newNodeRegistry() *nodeRegistry {
	return &nodeRegistry{byID: make(map[uint64]nodeclient.Client)}
}

func (n *nodeRegistry) put(chainID uint64, node nodeclient.Client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.byID[chainID]; !exists {
		n.order = append(n.order, chainID)
	}
	n.byID[chainID] = node
}

func (n *nodeRegistry) Node(chainID uint64) (nodeclient.Client, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	node, ok := n.byID[chainID]
	return node, ok
}

func (n *nodeRegistry) OrderedChainIDs() []uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]uint64, len(n.order))
	copy(out, n.order)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
