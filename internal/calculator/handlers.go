package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"ladder-calculator/internal/handlers"
	"ladder-calculator/internal/ladder"
	"ladder-calculator/internal/observability"
	"ladder-calculator/internal/presenter"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

const maxBodyBytes = 64 << 10

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the ladder endpoints.
type Handler struct {
	validator ladder.Validator
	sessions  *SessionStore
}

// NewHandler wires a handler around a validator and a session store.
func NewHandler(v ladder.Validator, sessions *SessionStore) *Handler {
	return &Handler{validator: v, sessions: sessions}
}

// ---------------------------------------------------------------------------
// Handlers: stateless ladders
// ---------------------------------------------------------------------------

// Ladder handles POST /calculator/ladder
func (h *Handler) Ladder(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "ladder")
	defer span.End()

	var req LadderRequest
	if err := decodeJSON(r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "ladder", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	res, err := h.calculate(ctx, logger, "ladder", req)
	if err != nil {
		recordInvalidInput(ctx, span, logger, "ladder", err, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newLadderResponse(res, observability.RequestIDFromContext(ctx)))
}

// Table handles GET /calculator/ladder/table and renders plain text.
func (h *Handler) Table(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "table")
	defer span.End()

	res, ok := h.calculateQuery(ctx, span, logger, "table", w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := presenter.WriteText(&buf, presenter.NewTable(res)); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "table", "rendering table failed", err, http.StatusInternalServerError, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Export handles GET /calculator/ladder/export and serves an .xlsx file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "export")
	defer span.End()

	res, ok := h.calculateQuery(ctx, span, logger, "export", w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := presenter.WriteXLSX(&buf, presenter.NewTable(res)); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "export", "building workbook failed", err, http.StatusInternalServerError, w)
		return
	}

	span.SetAttributes(attribute.Int("export.bytes", buf.Len()))
	span.SetStatus(codes.Ok, "")

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ladder.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ---------------------------------------------------------------------------
// Handlers: sessions (recompute on change)
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "session.create")
	defer span.End()

	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			observability.RecordError(ctx, span, logger, errorCounter, "session.create", "invalid request body", err, http.StatusBadRequest, w)
			return
		}
	}

	id, res, err := h.sessions.Create(req.Mode)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.create", err.Error(), err, http.StatusServiceUnavailable, w)
		return
	}

	span.SetAttributes(attribute.String("session.id", id), attribute.String("ladder.mode", req.Mode.String()))
	span.SetStatus(codes.Ok, "")

	logger.Info("session created",
		zap.String("session_id", id),
		zap.Stringer("mode", req.Mode),
		observability.RequestIDField(ctx),
	)

	handlers.WriteJSON(w, http.StatusCreated, newSessionResponse(id, res, false, observability.RequestIDFromContext(ctx)))
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "session.get")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	res, err := h.sessions.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.get", err.Error(), err, http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(id, res, false, observability.RequestIDFromContext(ctx)))
}

// UpdateSession handles PUT /calculator/sessions/{id}. A rejected snapshot is
// not an error: the previous result comes back with updated=false.
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "session.update")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	var req LadderRequest
	if err := decodeJSON(r, &req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.update", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	start := time.Now()
	res, updated, err := h.sessions.Recompute(id, req)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.update", err.Error(), err, http.StatusNotFound, w)
		return
	}

	if updated {
		recordComputed(ctx, "session.update", res, time.Since(start))
	} else {
		promCalculations.WithLabelValues(req.Mode.String(), outcomeRejected).Inc()
	}

	span.SetAttributes(
		attribute.String("ladder.mode", res.Mode.String()),
		attribute.Bool("session.updated", updated),
		attribute.Int("ladder.steps", len(res.Steps)),
	)
	span.SetStatus(codes.Ok, "")

	logger.Debug("session recomputed",
		zap.String("session_id", id),
		zap.Bool("updated", updated),
		zap.Int("steps", len(res.Steps)),
		observability.RequestIDField(ctx),
	)

	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(id, res, updated, observability.RequestIDFromContext(ctx)))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startOp(r, "session.delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("session.id", id))

	if err := h.sessions.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.delete", err.Error(), err, http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

// startOp opens the operation span and returns a trace-correlated logger.
func startOp(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)

	return ctx, span, observability.LoggerWithTrace(ctx)
}

// calculate validates raw and computes the ladder inside two child spans, one
// per stage, recording events for every step.
func (h *Handler) calculate(ctx context.Context, logger *zap.Logger, opName string, raw ladder.RawInput) (ladder.Result, error) {
	_, vspan := tracer.Start(ctx, "ladder.validate",
		trace.WithAttributes(attribute.String("ladder.mode", raw.Mode.String())),
	)
	in, err := h.validator.Validate(raw)
	if err != nil {
		vspan.RecordError(err)
		vspan.SetStatus(codes.Error, err.Error())
		vspan.End()
		promCalculations.WithLabelValues(raw.Mode.String(), outcomeRejected).Inc()
		return ladder.Result{}, err
	}
	vspan.SetStatus(codes.Ok, "")
	vspan.End()

	_, cspan := tracer.Start(ctx, "ladder.compute",
		trace.WithAttributes(
			attribute.String("ladder.mode", in.Mode.String()),
			attribute.Int("ladder.steps", in.StepCount),
			attribute.Float64("ladder.coefficient", in.Coefficient),
			attribute.Float64("ladder.total_amount", in.TotalAmount),
		),
	)
	defer cspan.End()

	start := time.Now()
	res := ladder.Compute(in)
	elapsed := time.Since(start)

	for _, s := range res.Steps {
		cspan.AddEvent("ladder.step", trace.WithAttributes(
			attribute.Int("step", s.Step),
			attribute.Float64("amount", s.Amount),
			attribute.Float64("lot_size", s.LotSize),
		))
	}
	cspan.SetAttributes(attribute.Float64("ladder.totals.amount", res.Totals.Amount))
	cspan.SetStatus(codes.Ok, "")

	recordComputed(ctx, opName, res, elapsed)

	logger.Info("ladder computed",
		zap.String("operation", opName),
		zap.Stringer("mode", in.Mode),
		zap.Int("steps", in.StepCount),
		zap.Float64("coefficient", in.Coefficient),
		zap.Float64("total_amount", in.TotalAmount),
		zap.Float64("total_lot_volume", in.TotalLotVolume),
		observability.RequestIDField(ctx),
		zap.Float64("duration_ms", durationMS(elapsed)),
	)

	return res, nil
}

// calculateQuery runs calculate on query-string input and writes the error
// response itself; ok is false when it did.
func (h *Handler) calculateQuery(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) (ladder.Result, bool) {
	raw, err := rawFromQuery(r)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
		return ladder.Result{}, false
	}

	res, err := h.calculate(ctx, logger, opName, raw)
	if err != nil {
		recordInvalidInput(ctx, span, logger, opName, err, w)
		return ladder.Result{}, false
	}

	return res, true
}

func recordComputed(ctx context.Context, opName string, res ladder.Result, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.String("mode", res.Mode.String()),
	)
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, durationMS(elapsed), attrs)
	stepCountGauge.Record(ctx, int64(len(res.Steps)), attrs)

	promCalculations.WithLabelValues(res.Mode.String(), outcomeComputed).Inc()
}

func recordInvalidInput(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, err error, w http.ResponseWriter) {
	body := handlers.ErrorBody{Error: err.Error()}

	var fe *ladder.FieldError
	if errors.As(err, &fe) {
		body.Field = fe.Field
	}

	observability.RecordErrorBody(ctx, span, logger, errorCounter, opName, body, err, http.StatusUnprocessableEntity, w)
}

func rawFromQuery(r *http.Request) (ladder.RawInput, error) {
	q := r.URL.Query()

	mode, err := ladder.ParseMode(q.Get("mode"))
	if err != nil {
		return ladder.RawInput{}, err
	}

	return ladder.RawInput{
		Mode:        mode,
		Amount:      q.Get("amount"),
		LotVolume:   q.Get("lot_volume"),
		Steps:       q.Get("steps"),
		Coefficient: q.Get("coefficient"),
	}, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func formatPercentage(v float64) string {
	return strconv.FormatFloat(v, 'f', ladder.PercentageDecimals, 64)
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
