// Package httpapi implements the read-only HTTP surface (§6): plain
// health text, the metrics dispatcher, and transaction lookup.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/geth-indexer/internal/chainmodel"
	"github.com/rony4d/geth-indexer/internal/nodeclient"
	"github.com/rony4d/geth-indexer/internal/provider"
	"github.com/rony4d/geth-indexer/internal/relstore"
	"github.com/rony4d/geth-indexer/internal/xerrors"
)

// NodesByChain resolves a chain id to its external node handle, for the
// tx_hash-with-chain_id and chain-id-ordered scan dispatch paths.
type NodesByChain interface {
	Node(chainID uint64) (nodeclient.Client, bool)
	OrderedChainIDs() []uint64
}

// Server wires the provider façade to chi routes.
type Server struct {
	Provider *provider.Provider
	Nodes    NodesByChain
	Log      *logrus.Entry
}

func NewRouter(s *Server) chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleRoot)
	r.Get("/metrics/{metric}", s.handleMetrics)
	r.Get("/transactions", s.handleTransactions)
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Geth Indexer."))
}

func writeError(w http.ResponseWriter, err error) {
	xe, ok := xerrors.As(err)
	if !ok {
		xe = xerrors.New(xerrors.KindDeserialization, err.Error())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    xe.Code(),
		"message": xe.Message,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func parseTxType(s string) chainmodel.TxType {
	switch s {
	case "native":
		return chainmodel.TxTypeNative
	case "cross_chain":
		return chainmodel.TxTypeCrossChain
	default:
		return chainmodel.TxTypeAll
	}
}

func parseChainID(r *http.Request) *uint64 {
	s := r.URL.Query().Get("chain_id")
	if s == "" {
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func parseStride(r *http.Request) int {
	s := r.URL.Query().Get("stride")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// handleMetrics dispatches one of the five metric names; an unknown
// metric defaults to current_tps, per §6.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	metric := chi.URLParam(r, "metric")
	chainID := parseChainID(r)
	txType := parseTxType(r.URL.Query().Get("tx_type"))
	stride := parseStride(r)

	switch metric {
	case "live_tps":
		if chainID == nil {
			writeJSON(w, s.Provider.AllChainsLiveTPS(ctx, stride, txType))
			return
		}
		writeJSON(w, s.Provider.LiveTPS(ctx, *chainID, stride, txType))
	case "transaction_volume":
		writeJSON(w, s.Provider.TransactionVolume(ctx, chainID, txType, stride))
	case "total_transfers":
		writeJSON(w, map[string]uint64{"total_transfers": s.Provider.TotalXfersLastDay(ctx, chainID, txType)})
	case "successful_transfers":
		writeJSON(w, map[string]uint64{"successful_transfers": s.Provider.SuccessfulXfersLastDay(ctx, chainID, txType)})
	default: // current_tps, and any unrecognised metric name
		if chainID == nil {
			writeJSON(w, map[string]uint64{"current_tps": s.Provider.AllChainsLatestTPS(ctx, txType)})
			return
		}
		writeJSON(w, map[string]uint64{"current_tps": s.Provider.LatestTPS(ctx, *chainID, txType)})
	}
}

const maxLimit = 25

// handleTransactions implements §6's /transactions: limit validation,
// at-most-one-of tx_identifier/parts, and the tx_hash direct-dispatch
// and relational-store fallback paths.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := uint64(maxLimit)
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 || n > maxLimit {
			writeError(w, xerrors.New(xerrors.KindDeserialization, "limit must be in (0, 25]"))
			return
		}
		limit = n
	}

	txHash := optionalString(q, "tx_hash")
	latest := q.Get("latest") != ""
	all := q.Get("all") != ""
	summaryOnly := q.Get("summary_only") != ""
	if all && summaryOnly {
		writeError(w, xerrors.New(xerrors.KindDeserialization, "at most one of all/summary_only may be set"))
		return
	}

	var pageIdx *uint64
	if v := q.Get("page_idx"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, xerrors.New(xerrors.KindDeserialization, "invalid page_idx"))
			return
		}
		pageIdx = &n
	}

	identifierFieldCount := 0
	if txHash != nil {
		identifierFieldCount++
	}
	if latest {
		identifierFieldCount++
	}
	if pageIdx != nil {
		identifierFieldCount++
	}
	if identifierFieldCount > 1 {
		writeError(w, xerrors.New(xerrors.KindDeserialization, "at most one of tx_hash/latest/page_idx may be set"))
		return
	}

	chainID := parseChainID(r)
	txType := parseTxType(q.Get("tx_type"))

	if txHash != nil {
		s.resolveByHash(w, r, *txHash, chainID)
		return
	}

	// latest carries no semantics of its own beyond the exclusivity
	// check above: omitting page_idx already defaults to the first
	// (most recent) page, per §4.C.
	id := relstore.Identifier{PageIdx: pageIdx}
	filter := relstore.Filter{ChainID: chainID}
	parts := relstore.Parts{All: all}
	models, summaries, err := s.Provider.GetTxs(r.Context(), id, filter, parts, txType, relstore.Limit{Limit: &limit})
	if err != nil {
		writeError(w, err)
		return
	}
	if all {
		writeJSON(w, models)
		return
	}
	writeJSON(w, summaries)
}

func optionalString(q map[string][]string, key string) *string {
	v, ok := q[key]
	if !ok || len(v) == 0 || v[0] == "" {
		return nil
	}
	return &v[0]
}

// resolveByHash implements §6's direct-to-node dispatch: with chain_id,
// ask that chain's node directly; without it, scan nodes in chain-id
// order and return the first hit.
func (s *Server) resolveByHash(w http.ResponseWriter, r *http.Request, txHash string, chainID *uint64) {
	ctx := r.Context()
	hashBytes := common.HexToHash(txHash).Bytes()

	if chainID != nil {
		node, ok := s.Nodes.Node(*chainID)
		if !ok {
			writeError(w, xerrors.New(xerrors.KindProvider, "unknown chain_id"))
			return
		}
		receipt, err := node.TransactionReceipt(ctx, hashBytes)
		if err != nil {
			writeError(w, xerrors.Wrap(xerrors.KindProvider, err, "transaction lookup failed"))
			return
		}
		writeJSON(w, receipt)
		return
	}

	for _, id := range s.Nodes.OrderedChainIDs() {
		node, ok := s.Nodes.Node(id)
		if !ok {
			continue
		}
		receipt, err := node.TransactionReceipt(ctx, hashBytes)
		if err == nil && receipt != nil {
			writeJSON(w, receipt)
			return
		}
	}
	writeError(w, xerrors.New(xerrors.KindProvider, "transaction not found on any configured chain"))
}
