package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/leadgate/internal/observability/metrics"
	"github.com/wolfman30/leadgate/pkg/logging"
)

var leadsTracer = otel.Tracer("leadgate.internal.leads")

const (
	maxBodyBytes = 64 << 10

	msgInvalidBody   = "Invalid request body"
	msgStoreFailed   = "Failed to save lead. Please try again."
	msgConfigFailure = "Server configuration error. Please contact support."
)

// Notifier is told about every stored lead. Errors are logged, never surfaced.
type Notifier interface {
	NotifyNewLead(ctx context.Context, lead *Lead) error
}

// IntakeOptions tune how store failures reach the caller.
type IntakeOptions struct {
	// SuppressStoreFailure keeps the 500 status but adds the discount code to
	// the body so the popup can still show the incentive.
	SuppressStoreFailure bool
	// ExposeStoreCause replaces the generic message with the store's cause.
	ExposeStoreCause bool
}

// IntakeHandler serves public lead submissions. It only ever holds a Writer.
type IntakeHandler struct {
	validator *Validator
	writer    Writer
	notifier  Notifier
	metrics   *metrics.LeadMetrics
	opts      IntakeOptions
	logger    *logging.Logger
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(validator *Validator, writer Writer, opts IntakeOptions, logger *logging.Logger) *IntakeHandler {
	if validator == nil {
		panic("leads: validator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IntakeHandler{
		validator: validator,
		writer:    writer,
		opts:      opts,
		logger:    logger,
	}
}

// WithNotifier attaches a new-lead notifier.
func (h *IntakeHandler) WithNotifier(n Notifier) *IntakeHandler {
	h.notifier = n
	return h
}

// WithMetrics attaches intake counters.
func (h *IntakeHandler) WithMetrics(m *metrics.LeadMetrics) *IntakeHandler {
	h.metrics = m
	return h
}

// CreateLead handles POST /leads-intake requests
func (h *IntakeHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx, span := leadsTracer.Start(r.Context(), "leads.intake")
	defer span.End()

	var req CreateLeadRequest
	if err := decodeSingleJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.logger.Warn("failed to decode lead request", "error", err)
		h.metrics.ObserveIntake("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": msgInvalidBody})
		return
	}

	candidate, err := h.validator.Validate(req)
	if err != nil {
		h.metrics.ObserveIntake("invalid")
		body := map[string]any{"error": err.Error()}
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			span.SetAttributes(attribute.String("leads.invalid_field", vErr.Field))
			body["field"] = vErr.Field
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}

	if h.writer == nil {
		h.failStore(ctx, w, ErrStoreNotConfigured, candidate)
		return
	}

	start := time.Now()
	lead, err := h.writer.Insert(ctx, candidate)
	h.metrics.ObserveStoreLatency("insert", time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		h.failStore(ctx, w, err, candidate)
		return
	}

	h.metrics.ObserveIntake("created")
	h.logger.Info("lead created", "id", lead.ID, "has_email", lead.Email != nil, "has_phone", lead.Phone != nil)

	if h.notifier != nil {
		if err := h.notifier.NotifyNewLead(ctx, lead); err != nil {
			h.logger.Warn("new lead notification failed", "id", lead.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": lead})
}

func (h *IntakeHandler) failStore(ctx context.Context, w http.ResponseWriter, err error, candidate *Candidate) {
	body := map[string]any{}
	if errors.Is(err, ErrStoreNotConfigured) {
		h.metrics.ObserveIntake("config_error")
		h.logger.ErrorContext(ctx, "lead store not configured", "error", err)
		body["error"] = msgConfigFailure
	} else {
		h.metrics.ObserveIntake("store_error")
		h.logger.ErrorContext(ctx, "failed to store lead", "error", err)
		body["error"] = msgStoreFailed
		var sErr *StoreError
		if h.opts.ExposeStoreCause && errors.As(err, &sErr) {
			body["error"] = "Database error: " + sErr.Cause()
		}
	}
	if h.opts.SuppressStoreFailure && candidate != nil {
		body["discount_code"] = candidate.DiscountCode
		body["show_incentive"] = true
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

// Rules handles GET /leads-intake/rules so the form can mirror server validation.
func (h *IntakeHandler) Rules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.validator.Rules())
}

// ListingHandler serves the admin dashboard. It only ever holds a Reader and
// must be mounted behind the admin session middleware.
type ListingHandler struct {
	reader  Reader
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(reader Reader, logger *logging.Logger) *ListingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ListingHandler{reader: reader, logger: logger}
}

// WithMetrics attaches listing counters.
func (h *ListingHandler) WithMetrics(m *metrics.LeadMetrics) *ListingHandler {
	h.metrics = m
	return h
}

// ListLeads handles GET /leads-listing requests
func (h *ListingHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx, span := leadsTracer.Start(r.Context(), "leads.listing")
	defer span.End()

	if h.reader == nil {
		h.metrics.ObserveListing("config_error")
		h.logger.Error("lead store not configured for listing")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": msgConfigFailure})
		return
	}

	start := time.Now()
	leads, err := h.reader.List(ctx)
	h.metrics.ObserveStoreLatency("list", time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		h.metrics.ObserveListing("store_error")
		h.logger.Error("failed to list leads", "error", err)
		cause := err.Error()
		var sErr *StoreError
		if errors.As(err, &sErr) {
			cause = sErr.Cause()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to fetch leads: " + cause})
		return
	}

	span.SetAttributes(attribute.Int("leads.count", len(leads)))
	h.metrics.ObserveListing("ok")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": leads})
}

// decodeSingleJSON decodes exactly one JSON value; anything after it is an error.
func decodeSingleJSON(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
