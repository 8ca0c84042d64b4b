// Package relstore implements the relational store adapter (§4.C):
// connection pooling, paginated/filtered transaction queries, and
// batched transaction upserts, backed by Postgres via pgx/v5.
package relstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rony4d/geth-indexer/internal/chainmodel"
	"github.com/rony4d/geth-indexer/internal/xerrors"
)

// batchSize is the chunk width for AddTxns' parallel upsert, per §4.C.
const batchSize = 250

// Store wraps a pgxpool.Pool bounded by the configured pool size. Pool
// acquisition happens per-query through pgx's own checkout, not behind
// a package-level mutex — unlike analytics.Store, there is no single
// shared handle here to serialize around.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Identifier selects a page of results, optionally pinned to one chain
// and/or one transaction hash.
type Identifier struct {
	ChainID *uint64
	TxHash  *string
	PageIdx *uint64
}

// Filter narrows the base query by chain id independently of
// Identifier — the "all transactions across one chain" query path
// supplies chain id this way rather than via Identifier.ChainID.
type Filter struct {
	ChainID *uint64
}

// Parts selects between the full transaction projection and the
// lightweight summary projection.
type Parts struct {
	All bool
}

type Limit struct {
	Limit *uint64
}

const defaultLimit = 10

const fullColumns = `chain_id, transaction_hash, nonce, block_hash, block_number, block_index,
		from_address, to_address, value, gas_price, gas, input, v, r, s,
		transaction_type, impersonated, gas_fee_cap, gas_tip_cap, tx_type`

// TxSummary is the row shape returned when Parts.All is false.
type TxSummary struct {
	Hash        string
	BlockHash   string
	To          string
	From        string
	Status      int
	Value       string
	BlockHeight int64
}

func buildWhere(id Identifier, filter Filter, txType chainmodel.TxType) (string, []interface{}) {
	where := "WHERE TRUE"
	var args []interface{}
	argN := 1

	addEq := func(col string, v interface{}) {
		where += fmt.Sprintf(" AND %s = $%d", col, argN)
		args = append(args, v)
		argN++
	}

	if filter.ChainID != nil {
		addEq("chain_id", *filter.ChainID)
	}
	if id.ChainID != nil {
		addEq("chain_id", *id.ChainID)
	}
	if id.TxHash != nil {
		addEq("transaction_hash", *id.TxHash)
	}
	switch txType {
	case chainmodel.TxTypeNative, chainmodel.TxTypeCrossChain:
		addEq("tx_type", string(txType))
	}
	return where, args
}

// GetTxs implements §4.C's get_txs: ordered by block_number DESC,
// AND-composed filters, LIMIT/OFFSET pagination, one of two row
// projections depending on parts.All.
func (s *Store) GetTxs(ctx context.Context, id Identifier, filter Filter, parts Parts, txType chainmodel.TxType, limit Limit) ([]chainmodel.TxModel, []TxSummary, error) {
	limitN := uint64(defaultLimit)
	if limit.Limit != nil {
		limitN = *limit.Limit
	}
	pageIdx := uint64(0)
	if id.PageIdx != nil {
		pageIdx = *id.PageIdx
	}
	offset := pageIdx * limitN

	where, args := buildWhere(id, filter, txType)
	limitArg, offsetArg := len(args)+1, len(args)+2
	args = append(args, limitN, offset)

	if parts.All {
		query := fmt.Sprintf(`
			SELECT %s
			FROM transactions
			%s
			ORDER BY block_number DESC
			LIMIT $%d OFFSET $%d
		`, fullColumns, where, limitArg, offsetArg)
		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, nil, xerrors.Wrap(xerrors.KindRelational, err, "get_txs query")
		}
		defer rows.Close()
		models, err := scanFullRows(rows)
		return models, nil, err
	}

	query := fmt.Sprintf(`
		SELECT transaction_hash, block_hash, to_address, from_address, value, block_number
		FROM transactions
		%s
		ORDER BY block_number DESC
		LIMIT $%d OFFSET $%d
	`, where, limitArg, offsetArg)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, xerrors.Wrap(xerrors.KindRelational, err, "get_txs query")
	}
	defer rows.Close()
	summaries, err := scanSummaryRows(rows)
	return nil, summaries, err
}

func scanFullRows(rows pgx.Rows) ([]chainmodel.TxModel, error) {
	var out []chainmodel.TxModel
	for rows.Next() {
		var row chainmodel.TxRow
		if err := rows.Scan(
			&row.ChainID, &row.TransactionHash, &row.Nonce, &row.BlockHash, &row.BlockNumber, &row.BlockIndex,
			&row.From, &row.To, &row.Value, &row.GasPrice, &row.Gas, &row.Input, &row.V, &row.R, &row.S,
			&row.TransactionType, &row.Impersonated, &row.GasFeeCap, &row.GasTipCap, &row.TxType,
		); err != nil {
			return nil, xerrors.Wrap(xerrors.KindRelational, err, "scan transaction row")
		}
		model, err := chainmodel.FromRow(row)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.KindDeserialization, err, "decode transaction row")
		}
		out = append(out, *model)
	}
	return out, rows.Err()
}

// Status is always reported as 1 (success): §4.C's summary projection
// carries no failure signal of its own, matching the original source's
// server/src/routes.rs response shape.
func scanSummaryRows(rows pgx.Rows) ([]TxSummary, error) {
	var out []TxSummary
	for rows.Next() {
		var s TxSummary
		var blockHeight *int64
		if err := rows.Scan(&s.Hash, &s.BlockHash, &s.To, &s.From, &s.Value, &blockHeight); err != nil {
			return nil, xerrors.Wrap(xerrors.KindRelational, err, "scan transaction summary row")
		}
		if blockHeight != nil {
			s.BlockHeight = *blockHeight
		}
		s.Status = 1
		out = append(out, s)
	}
	return out, rows.Err()
}

// AddTxns implements §4.C's add_txns: upsert the chain's latest_tps,
// then batch-upsert transactions in parallel chunks of 250 with
// ON CONFLICT DO NOTHING. A failed batch does not fail the call: AddTxns
// returns nil once every batch has finished, and batch errors are not
// logged.
func (s *Store) AddTxns(ctx context.Context, chainID uint64, txCount uint64, txs []chainmodel.TxModel, classificationMap map[string]chainmodel.TxType) error {
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO chains (chain_id, latest_tps)
		VALUES ($1, $2)
		ON CONFLICT (chain_id) DO UPDATE SET latest_tps = EXCLUDED.latest_tps
	`, chainID, txCount); err != nil {
		return xerrors.Wrap(xerrors.KindRelational, err, "upsert chain")
	}

	rows := make([]chainmodel.TxRow, 0, len(txs))
	for i := range txs {
		tx := txs[i]
		hash := tx.TransactionHash.Hex()
		if cls, ok := classificationMap[hash]; ok {
			tx.Classification = cls
		} else if tx.Classification == "" {
			// No classification-map entry: a receipt fetch succeeded but
			// carried no batch event, so the processor left this
			// transaction's classification undecided. Default to native.
			tx.Classification = chainmodel.TxTypeNative
		}
		rows = append(rows, tx.ToRow())
	}

	chunks := chunk(rows, batchSize)
	errs := make(chan error, len(chunks))
	for _, c := range chunks {
		go func(batch []chainmodel.TxRow) {
			errs <- s.upsertBatch(ctx, batch)
		}(c)
	}
	for range chunks {
		<-errs // per-batch failures are discarded: neither logged nor returned
	}
	return nil
}

func (s *Store) upsertBatch(ctx context.Context, batch []chainmodel.TxRow) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return xerrors.Wrap(xerrors.KindRelational, err, "begin batch")
	}
	defer tx.Rollback(ctx)

	for _, row := range batch {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (
				chain_id, transaction_hash, nonce, block_hash, block_number, block_index,
				from_address, to_address, value, gas_price, gas, input, v, r, s,
				transaction_type, impersonated, gas_fee_cap, gas_tip_cap, tx_type
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
			)
			ON CONFLICT (chain_id, transaction_hash) DO NOTHING
		`,
			row.ChainID, row.TransactionHash, row.Nonce, row.BlockHash, row.BlockNumber, row.BlockIndex,
			row.From, row.To, row.Value, row.GasPrice, row.Gas, row.Input, row.V, row.R, row.S,
			row.TransactionType, row.Impersonated, row.GasFeeCap, row.GasTipCap, row.TxType,
		)
		if err != nil {
			return xerrors.Wrap(xerrors.KindRelational, err, "upsert transaction "+row.TransactionHash)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return xerrors.Wrap(xerrors.KindRelational, err, "commit batch")
	}
	return nil
}

func chunk(rows []chainmodel.TxRow, size int) [][]chainmodel.TxRow {
	if len(rows) == 0 {
		return nil
	}
	var out [][]chainmodel.TxRow
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[i:end])
	}
	return out
}
