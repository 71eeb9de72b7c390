package calculator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ladder-calculator/internal/handlers"
	"ladder-calculator/internal/ladder"
	"ladder-calculator/internal/observability"
	"ladder-calculator/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *SessionStore) {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store := NewSessionStore(ladder.TextValidator{MaxSteps: 100}, 2)
	r := chi.NewRouter()
	r.Use(observability.RequestIDMiddleware)
	NewHandler(ladder.TextValidator{MaxSteps: 100}, store).RegisterRoutes(r)

	return r, store
}

func TestLadderPercentageMode(t *testing.T) {
	g := NewWithT(t)
	router, _ := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/ladder",
		map[string]string{"mode": "percentage", "amount": "1000", "steps": "3", "coefficient": "2"})
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp LadderResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	g.Expect(resp.Mode).To(Equal(ladder.Percentage))
	g.Expect(resp.Steps).To(HaveLen(3))
	g.Expect(resp.Steps[0].Amount).To(Equal(142.86))
	g.Expect(*resp.Steps[0].Percentage).To(Equal("14.29"))
	g.Expect(resp.Steps[2].Amount).To(Equal(571.43))
	g.Expect(*resp.Steps[2].Percentage).To(Equal("57.14"))
	g.Expect(resp.Steps[0].LotSize).To(BeNil())
	g.Expect(resp.Totals.Amount).To(Equal(1000.0))
	g.Expect(*resp.Totals.Percentage).To(Equal("100"))
	g.Expect(resp.RequestID).To(Equal(w.Result().Header.Get(observability.RequestIDHeader)))
}

func TestLadderLotAndAmountMode(t *testing.T) {
	g := NewWithT(t)
	router, _ := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/ladder",
		map[string]string{"mode": "crypto", "amount": "700", "lot_volume": "7", "steps": "3", "coefficient": "2"})
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp LadderResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	g.Expect(resp.Mode).To(Equal(ladder.LotAndAmount))
	lots := make([]float64, 0, len(resp.Steps))
	amounts := make([]float64, 0, len(resp.Steps))
	for _, s := range resp.Steps {
		g.Expect(s.Percentage).To(BeNil())
		lots = append(lots, *s.LotSize)
		amounts = append(amounts, s.Amount)
	}
	g.Expect(lots).To(Equal([]float64{1, 2, 4}))
	g.Expect(amounts).To(Equal([]float64{100, 200, 400}))
	g.Expect(*resp.Totals.LotSize).To(Equal(7.0))
	g.Expect(resp.Totals.Amount).To(Equal(700.0))
}

func TestLadderRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{name: "coefficient one", body: map[string]string{"amount": "1000", "steps": "3", "coefficient": "1"}, field: ladder.FieldCoefficient},
		{name: "zero steps", body: map[string]string{"amount": "1000", "steps": "0", "coefficient": "2"}, field: ladder.FieldSteps},
		{name: "too many steps", body: map[string]string{"amount": "1000", "steps": "101", "coefficient": "2"}, field: ladder.FieldSteps},
		{name: "amount too large", body: map[string]string{"amount": "1e307", "steps": "2", "coefficient": "2"}, field: ladder.FieldAmount},
		{name: "missing lot volume", body: map[string]string{"mode": "lot_and_amount", "amount": "700", "steps": "3", "coefficient": "2"}, field: ladder.FieldLotVolume},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewWithT(t)
			router, _ := newTestRouter(t)

			w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/ladder", tc.body), router)

			testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

			var body handlers.ErrorBody
			testutil.DecodeJSONBody(t, w.Body, &body)
			g.Expect(body.Field).To(Equal(tc.field))
		})
	}
}

func TestLadderRejectsMalformedBody(t *testing.T) {
	tests := map[string]string{
		"not json":      `{"amount":`,
		"unknown mode":  `{"mode":"futures","amount":"1"}`,
		"unknown field": `{"total":"1"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			router, _ := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/calculator/ladder", strings.NewReader(body))
			w := testutil.ExecuteRequest(req, router)

			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestTableRendersText(t *testing.T) {
	g := NewWithT(t)
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calculator/ladder/table?amount=1000&steps=3&coefficient=2", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	g.Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
	g.Expect(w.Body.String()).To(ContainSubstring("$285.71"))
	g.Expect(w.Body.String()).To(ContainSubstring("100%"))
}

func TestTableRejectsUnknownMode(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calculator/ladder/table?mode=futures&amount=1000&steps=3&coefficient=2", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestExportWritesWorkbook(t *testing.T) {
	g := NewWithT(t)
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calculator/ladder/export?mode=crypto&amount=700&lot_volume=7&steps=3&coefficient=2", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	g.Expect(w.Header().Get("Content-Type")).To(Equal(xlsxContentType))
	g.Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring("ladder.xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	g.Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	rows, err := f.GetRows("Ladder")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rows).To(HaveLen(5))
	g.Expect(rows[4][0]).To(Equal("Total"))
}

func TestExportRejectsInvalidInput(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/calculator/ladder/export?amount=1000&steps=3&coefficient=0.5", nil)
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)
}
