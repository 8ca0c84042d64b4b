package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleRootRespondsPlainText(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	s.handleRoot(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Geth Indexer.", w.Body.String())
}

func TestHandleTransactionsRejectsLimitOutOfRange(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/transactions?limit=0", nil)
	w := httptest.NewRecorder()

	s.handleTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code"`)
}

func TestHandleTransactionsRejectsLimitAbove25(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/transactions?limit=26", nil)
	w := httptest.NewRecorder()

	s.handleTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTransactionsRejectsAllAndSummaryOnlyTogether(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/transactions?all=1&summary_only=1", nil)
	w := httptest.NewRecorder()

	s.handleTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTransactionsRejectsMultipleIdentifierFields(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/transactions?tx_hash=0xabc&page_idx=1", nil)
	w := httptest.NewRecorder()

	s.handleTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code"`)
}

func TestHandleTransactionsRejectsLatestWithPageIdx(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/transactions?latest=1&page_idx=1", nil)
	w := httptest.NewRecorder()

	s.handleTransactions(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseTxTypeDefaultsToAll(t *testing.T) {
	assert.Equal(t, "all", string(parseTxType("")))
	assert.Equal(t, "all", string(parseTxType("bogus")))
	assert.Equal(t, "native", string(parseTxType("native")))
	assert.Equal(t, "cross_chain", string(parseTxType("cross_chain")))
}
