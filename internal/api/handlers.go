/**
 * @description
 * This file contains the HTTP handlers for the tracker-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the application service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http, strconv: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain: Service logic, models, and coded errors.
 * - pkg/currency: Locale-aware monetary display strings.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subtally/tracker-service/internal/app"
	"github.com/subtally/tracker-service/internal/domain"
	"github.com/subtally/tracker-service/pkg/currency"
)

// Transport-level error codes. Codes for validation, lookup, and transition
// failures come from the domain package; these cover failures that never
// reach the service layer.
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SubscriptionHandlers holds the application service that handlers will use.
type SubscriptionHandlers struct {
	service         *app.Service
	formatter       *currency.Formatter
	defaultCurrency string
	defaultLocale   string
}

// NewSubscriptionHandlers creates a new instance of SubscriptionHandlers.
func NewSubscriptionHandlers(service *app.Service, formatter *currency.Formatter, defaultCurrency, defaultLocale string) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		service:         service,
		formatter:       formatter,
		defaultCurrency: defaultCurrency,
		defaultLocale:   defaultLocale,
	}
}

// CreateSubscriptionHandler handles requests to register a new subscription.
func (h *SubscriptionHandlers) CreateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", CodeInvalidBody)
		return
	}

	created, err := h.service.CreateSubscription(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// ListSubscriptionsHandler handles requests for a filtered, paginated page of
// subscriptions.
func (h *SubscriptionHandlers) ListSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.SubscriptionFilter{
		Search: strings.TrimSpace(query.Get("search")),
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", raw), domain.CodeInvalidStatus)
			return
		}
		filter.Status = &status
	}

	if raw := strings.TrimSpace(query.Get("billing_cycle")); raw != "" {
		cycle, ok := domain.ParseBillingCycle(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown billing cycle %q", raw), domain.CodeInvalidBillingCycle)
			return
		}
		filter.BillingCycle = &cycle
	}

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		filter.Category = &raw
	}

	limit, err := parseOptionalInt(query.Get("limit"), 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "limit must be an integer", CodeInvalidBody)
		return
	}
	filter.Limit = limit

	offset, err := parseOptionalInt(query.Get("offset"), 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "offset must be an integer", CodeInvalidBody)
		return
	}
	filter.Offset = offset

	subs, err := h.service.ListSubscriptions(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, subs)
}

// GetSubscriptionHandler handles requests for a single subscription by id.
func (h *SubscriptionHandlers) GetSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "id must be a positive integer", domain.CodeInvalidID)
		return
	}

	sub, err := h.service.GetSubscription(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sub)
}

// UpdateSubscriptionHandler handles partial updates to a subscription. Fields
// absent from the body keep their stored values; a JSON null clears the
// nullable fields.
func (h *SubscriptionHandlers) UpdateSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "id must be a positive integer", domain.CodeInvalidID)
		return
	}

	var input domain.UpdateSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", CodeInvalidBody)
		return
	}

	updated, err := h.service.UpdateSubscription(r.Context(), id, input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteSubscriptionHandler handles subscription removal and echoes the
// deleted record so clients can offer undo flows.
func (h *SubscriptionHandlers) DeleteSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "id must be a positive integer", domain.CodeInvalidID)
		return
	}

	deleted, err := h.service.DeleteSubscription(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, deleted)
}

// SpendSummaryHandler handles requests for the aggregated spend view. The
// optional from/to parameters restrict the analysis to records whose next
// payment falls inside the window; currency and locale control the display
// strings and fall back to the configured defaults.
func (h *SubscriptionHandlers) SpendSummaryHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "from must be a YYYY-MM-DD date or RFC 3339 timestamp", CodeInvalidBody)
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "to must be a YYYY-MM-DD date or RFC 3339 timestamp", CodeInvalidBody)
		return
	}

	top, err := parseOptionalInt(query.Get("top"), 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "top must be an integer", CodeInvalidBody)
		return
	}

	summary, err := h.service.GetSpendSummary(r.Context(), from, to, top)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if h.formatter != nil {
		currencyCode := strings.TrimSpace(query.Get("currency"))
		if currencyCode == "" {
			currencyCode = h.defaultCurrency
		}
		localeCode := strings.TrimSpace(query.Get("locale"))
		if localeCode == "" {
			localeCode = h.defaultLocale
		}
		summary.MonthlyTotalDisplay = h.formatter.Format(summary.MonthlyTotal, currencyCode, localeCode)
		summary.YearlyTotalDisplay = h.formatter.Format(summary.YearlyTotal, currencyCode, localeCode)
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// RemindersHandler handles requests for the overdue and due-soon partitions
// of active subscriptions.
func (h *SubscriptionHandlers) RemindersHandler(w http.ResponseWriter, r *http.Request) {
	horizonDays, err := parseOptionalInt(r.URL.Query().Get("horizon_days"), 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "horizon_days must be an integer", CodeInvalidBody)
		return
	}

	reminders, err := h.service.GetReminders(r.Context(), time.Now().UTC(), horizonDays)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reminders)
}

// statusDescriptor describes one lifecycle status for API consumers.
type statusDescriptor struct {
	Status      domain.Status   `json:"status"`
	Label       string          `json:"label"`
	Chargeable  bool            `json:"chargeable"`
	AllowedNext []domain.Status `json:"allowed_next"`
}

// statusVocabularyResponse is the payload of the public statuses endpoint.
type statusVocabularyResponse struct {
	Statuses      []statusDescriptor    `json:"statuses"`
	BillingCycles []domain.BillingCycle `json:"billing_cycles"`
	DefaultStatus domain.Status         `json:"default_status"`
}

// StatusVocabularyHandler publishes the status set, display labels, and the
// permitted transitions so clients can build pickers without hardcoding the
// lifecycle rules.
func (h *SubscriptionHandlers) StatusVocabularyHandler(w http.ResponseWriter, r *http.Request) {
	statuses := domain.AllStatuses()
	descriptors := make([]statusDescriptor, 0, len(statuses))
	for _, status := range statuses {
		status := status
		descriptors = append(descriptors, statusDescriptor{
			Status:      status,
			Label:       status.Label(),
			Chargeable:  status.IsChargeable(),
			AllowedNext: domain.PermittedNextStatuses(&status),
		})
	}

	respondWithJSON(w, http.StatusOK, statusVocabularyResponse{
		Statuses:      descriptors,
		BillingCycles: domain.AllBillingCycles(),
		DefaultStatus: domain.StatusActive,
	})
}

// respondWithServiceError translates a coded service error into the matching
// HTTP status. Anything that is not a domain error is treated as internal.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		log.Printf("level=error component=api msg=\"unexpected service error\" err=%v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error", domain.CodeInternalError)
		return
	}
	respondWithError(w, statusForCode(domainErr.Code), domainErr.Message, domainErr.Code)
}

func statusForCode(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidStatusTransition:
		return http.StatusConflict
	case domain.CodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondWithJSON writes a JSON response with the given status code.
func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
		}
	}
}

// respondWithError writes the uniform error body with a machine code.
func respondWithError(w http.ResponseWriter, status int, message string, code string) {
	respondWithJSON(w, status, errorResponse{Error: message, Code: code})
}

func parseIDParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseOptionalInt(raw string, fallback int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	return strconv.Atoi(trimmed)
}

// queryDateFormats lists the accepted layouts for the from/to parameters.
var queryDateFormats = []string{"2006-01-02", time.RFC3339}

func parseDateParam(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range queryDateFormats {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", raw)
}
