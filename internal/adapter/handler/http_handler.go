package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-tracker/internal/adapter/csvio"
	"github.com/rl1809/inventory-tracker/internal/core/domain"
	"github.com/rl1809/inventory-tracker/internal/core/service"
	"github.com/rl1809/inventory-tracker/internal/port"
)

const maxImportBytes = 10 << 20

// NotificationSource exposes recently emitted notifications.
type NotificationSource interface {
	Recent() []domain.Notification
}

type HTTPHandler struct {
	stock         *service.StockService
	inventory     *service.InventoryService
	authenticator port.Authenticator
	tokens        SessionTokens
	notifications NotificationSource
}

func NewHTTPHandler(
	stock *service.StockService,
	inventory *service.InventoryService,
	authenticator port.Authenticator,
	tokens SessionTokens,
	notifications NotificationSource,
) *HTTPHandler {
	return &HTTPHandler{
		stock:         stock,
		inventory:     inventory,
		authenticator: authenticator,
		tokens:        tokens,
		notifications: notifications,
	}
}

// Router wires every endpoint. loginLimit wraps the login endpoint and may
// be nil.
func (h *HTTPHandler) Router(loginLimit func(http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	var login http.Handler = http.HandlerFunc(h.Login)
	if loginLimit != nil {
		login = loginLimit(login)
	}
	r.Handle("/api/login", login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(h.tokens))
	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items/empty", h.EmptyItems).Methods(http.MethodGet)
	api.HandleFunc("/items/barcode/{code}", h.FindByBarcode).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}/stock", h.ChangeStock).Methods(http.MethodPost)
	api.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/logs", h.ListLogs).Methods(http.MethodGet)
	api.HandleFunc("/import", h.Import).Methods(http.MethodPost)
	api.HandleFunc("/inventory", h.ClearAll).Methods(http.MethodDelete)
	api.HandleFunc("/export/items.csv", h.ExportItemsCSV).Methods(http.MethodGet)
	api.HandleFunc("/export/items.xlsx", h.ExportItemsXLSX).Methods(http.MethodGet)
	api.HandleFunc("/export/logs.csv", h.ExportLogsCSV).Methods(http.MethodGet)
	api.HandleFunc("/settings/logo", h.GetLogo).Methods(http.MethodGet)
	api.HandleFunc("/settings/logo", h.SetLogo).Methods(http.MethodPut)
	api.HandleFunc("/settings/logo", h.RemoveLogo).Methods(http.MethodDelete)
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)

	return logMiddleware(r)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	session, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(session)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "logged in",
		Data:    LoginResponse{Token: token, Username: session.Username, Role: string(session.Role)},
	})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: toItemDTOs(items)})
}

func (h *HTTPHandler) EmptyItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.EmptyItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: toItemDTOs(items)})
}

func (h *HTTPHandler) FindByBarcode(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventory.FindByBarcode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: toItemDTO(item)})
}

func (h *HTTPHandler) ChangeStock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	session := SessionFrom(r.Context())
	itemID := mux.Vars(r)["id"]

	var (
		m   *domain.Mutation
		err error
	)
	if req.RequestID != "" {
		m, err = h.stock.ApplyDeltaOnce(r.Context(), session, req.RequestID, itemID, req.resolveDelta(), req.Location)
	} else {
		m, err = h.stock.ApplyDelta(r.Context(), session, itemID, req.resolveDelta(), req.Location)
	}
	if err != nil {
		status, message := errorStatus(err)
		resp := APIResponse{Success: false, Message: message}
		if m != nil {
			resp.Data = toMutationDTO(m)
		}
		writeJSON(w, status, resp)
		return
	}

	message := "stock updated"
	if m.LogWarning != nil {
		message = "stock updated, log not saved"
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: message, Data: toMutationDTO(m)})
}

func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Refresh(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.ListItems(w, r)
}

func (h *HTTPHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.inventory.Logs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: toLogEntryDTOs(logs)})
}

func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	session := SessionFrom(r.Context())
	if err := session.RequireRole(domain.RoleAdmin); err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeBodyError(w, err, "could not read body")
		return
	}

	items, err := csvio.ParseItems(string(body))
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := h.inventory.Import(r.Context(), session, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "import successful", Data: map[string]int{"imported": n}})
}

func (h *HTTPHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.ClearAll(r.Context(), SessionFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "inventory cleared"})
}

func (h *HTTPHandler) ExportItemsCSV(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.Items(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := csvio.WriteItems(w, items); err != nil {
		log.WithError(err).Error("write csv export")
	}
}

func (h *HTTPHandler) ExportItemsXLSX(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.Items(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	if err := csvio.WriteItemsXLSX(w, items); err != nil {
		log.WithError(err).Error("write xlsx export")
	}
}

func (h *HTTPHandler) ExportLogsCSV(w http.ResponseWriter, r *http.Request) {
	logs, err := h.inventory.Logs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory-log.csv"`)
	if err := csvio.WriteLogs(w, logs); err != nil {
		log.WithError(err).Error("write log export")
	}
}

func (h *HTTPHandler) GetLogo(w http.ResponseWriter, r *http.Request) {
	logo, err := h.inventory.Logo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: LogoRequest{Logo: logo}})
}

func (h *HTTPHandler) SetLogo(w http.ResponseWriter, r *http.Request) {
	var req LogoRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&req); err != nil {
		writeBodyError(w, err, "invalid request body")
		return
	}

	if err := h.inventory.SetLogo(r.Context(), SessionFrom(r.Context()), req.Logo); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "logo updated"})
}

func (h *HTTPHandler) RemoveLogo(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.RemoveLogo(r.Context(), SessionFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "logo removed"})
}

func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	var notes []domain.Notification
	if h.notifications != nil {
		notes = h.notifications.Recent()
	}

	out := make([]NotificationDTO, 0, len(notes))
	for _, n := range notes {
		out = append(out, NotificationDTO{
			Severity:    string(n.Severity),
			Title:       n.Title,
			Description: n.Description,
			Time:        n.Time,
		})
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: out})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, domain.ErrLocationNotFound):
		return http.StatusNotFound, "location not found"
	case errors.Is(err, domain.ErrInvalidDelta):
		return http.StatusBadRequest, "invalid stock change"
	case errors.Is(err, domain.ErrImportFormat):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidSetting):
		return http.StatusBadRequest, "invalid setting"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden, "not authorized"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, "store timeout"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway, "store unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	writeJSON(w, status, APIResponse{Success: false, Message: message})
}

// writeBodyError reports a request body that could not be read. Bodies over
// maxImportBytes get 413 so nothing is imported from a truncated payload.
func writeBodyError(w http.ResponseWriter, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, APIResponse{Success: false, Message: "request body too large"})
		return
	}
	writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
