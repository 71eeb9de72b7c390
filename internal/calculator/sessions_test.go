package calculator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"ladder-calculator/internal/ladder"
	"ladder-calculator/internal/testutil"
)

func TestSessionStoreLifecycle(t *testing.T) {
	g := NewWithT(t)
	store := NewSessionStore(ladder.TextValidator{}, 0)

	id, res, err := store.Create(ladder.LotAndAmount)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Mode).To(Equal(ladder.LotAndAmount))
	g.Expect(res.Empty()).To(BeTrue())
	g.Expect(store.Len()).To(Equal(1))

	res, updated, err := store.Recompute(id, ladder.RawInput{Mode: ladder.LotAndAmount, Amount: "700", LotVolume: "7", Steps: "3", Coefficient: "2"})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(updated).To(BeTrue())
	g.Expect(res.Steps).To(HaveLen(3))

	got, err := store.Get(id)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got).To(Equal(res))

	g.Expect(store.Delete(id)).To(Succeed())
	g.Expect(store.Len()).To(BeZero())

	_, err = store.Get(id)
	g.Expect(errors.Is(err, ErrSessionNotFound)).To(BeTrue())
	g.Expect(store.Delete(id)).To(MatchError(ErrSessionNotFound))
}

func TestSessionStoreLimit(t *testing.T) {
	g := NewWithT(t)
	store := NewSessionStore(ladder.TextValidator{}, 1)

	_, _, err := store.Create(ladder.Percentage)
	g.Expect(err).NotTo(HaveOccurred())

	_, _, err = store.Create(ladder.Percentage)
	g.Expect(err).To(MatchError(ErrSessionLimit))
}

func TestSessionStoreRecomputeUnknownID(t *testing.T) {
	g := NewWithT(t)
	store := NewSessionStore(ladder.TextValidator{}, 0)

	_, _, err := store.Recompute("missing", ladder.RawInput{})
	g.Expect(err).To(MatchError(ErrSessionNotFound))
}

func TestSessionEndpointsKeepPreviousResultOnInvalidInput(t *testing.T) {
	g := NewWithT(t)
	router, _ := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &created)
	g.Expect(created.ID).NotTo(BeEmpty())
	g.Expect(created.Mode).To(Equal(ladder.Percentage))
	g.Expect(created.Steps).To(BeEmpty())
	g.Expect(created.Totals).To(BeNil())

	path := "/calculator/sessions/" + created.ID

	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPut, path,
		map[string]string{"amount": "1000", "steps": "3", "coefficient": "2"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var first SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &first)
	g.Expect(first.Updated).To(BeTrue())
	g.Expect(first.Steps).To(HaveLen(3))

	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPut, path,
		map[string]string{"amount": "1000", "steps": "3", "coefficient": "1"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var stale SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &stale)
	g.Expect(stale.Updated).To(BeFalse())
	g.Expect(stale.Steps).To(Equal(first.Steps))
	g.Expect(stale.Totals).To(Equal(first.Totals))

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, path, nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var fetched SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &fetched)
	g.Expect(fetched.Steps).To(Equal(first.Steps))
}

func TestSessionEndpointsModeChangeClearsResult(t *testing.T) {
	g := NewWithT(t)
	router, _ := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	var created SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &created)
	path := "/calculator/sessions/" + created.ID

	_ = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPut, path,
		map[string]string{"amount": "700", "steps": "3", "coefficient": "2"}), router)

	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPut, path,
		map[string]string{"mode": "lot_and_amount", "amount": "700", "steps": "3", "coefficient": "2"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var switched SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &switched)
	g.Expect(switched.Updated).To(BeFalse())
	g.Expect(switched.Mode).To(Equal(ladder.LotAndAmount))
	g.Expect(switched.Steps).To(BeEmpty())
}

func TestSessionEndpointsNotFoundAndDelete(t *testing.T) {
	router, _ := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/unknown", nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	w = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions",
		map[string]string{"mode": "crypto"}), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &created)
	if created.Mode != ladder.LotAndAmount {
		t.Fatalf("expected mode %v, got %v", ladder.LotAndAmount, created.Mode)
	}

	path := "/calculator/sessions/" + created.ID
	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, path, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, path, nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestSessionEndpointsLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 2; i++ {
		w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
		testutil.CheckResponseCode(t, http.StatusCreated, w.Code)
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusServiceUnavailable, w.Code)
}
