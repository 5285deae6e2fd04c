package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

var (
	admin      = domain.Authenticated("Admin", domain.RoleAdmin)
	production = domain.Authenticated("Production", domain.RoleProduction)
)

type apiResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResult) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var res apiResult
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec, res
}

func newRouter(t *testing.T) (*fixture, http.Handler) {
	f := newFixture(t)
	h := NewHTTPHandler(f.stock, f.inventory, f.authn, f.tokens, f.notifier)
	return f, h.Router(nil)
}

func TestHealthCheck(t *testing.T) {
	_, router := newRouter(t)

	rec, _ := do(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	f, router := newRouter(t)

	rec, res := do(t, router, http.MethodPost, "/api/login", "", LoginRequest{Username: "production", Password: "plast"})
	require.Equal(t, http.StatusOK, rec.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(res.Data, &login))
	assert.Equal(t, "Production", login.Username)
	assert.Equal(t, "production", login.Role)

	session, err := f.tokens.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, production, session)

	rec, res = do(t, router, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, res.Success)

	rec, _ = do(t, router, http.MethodPost, "/api/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RequiresToken(t *testing.T) {
	_, router := newRouter(t)

	rec, _ := do(t, router, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/items", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListItems_Search(t *testing.T) {
	f, router := newRouter(t)
	token := f.token(t, production)

	_, res := do(t, router, http.MethodGet, "/api/items?q=lager2", token, nil)
	var items []ItemDTO
	require.NoError(t, json.Unmarshal(res.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ID)

	_, res = do(t, router, http.MethodGet, "/api/items/empty", token, nil)
	require.NoError(t, json.Unmarshal(res.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "item-2", items[0].ID)
}

func TestFindByBarcode(t *testing.T) {
	f, router := newRouter(t)
	token := f.token(t, production)

	rec, res := do(t, router, http.MethodGet, "/api/items/barcode/7310000000001", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item ItemDTO
	require.NoError(t, json.Unmarshal(res.Data, &item))
	assert.Equal(t, "Art123", item.Article)

	rec, _ = do(t, router, http.MethodGet, "/api/items/barcode/000", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangeStock(t *testing.T) {
	f, router := newRouter(t)
	token := f.token(t, production)

	rec, res := do(t, router, http.MethodPost, "/api/items/item-1/stock", token, StockRequest{Location: "Lager2", Operation: "remove"})
	require.Equal(t, http.StatusOK, rec.Code)

	var m MutationDTO
	require.NoError(t, json.Unmarshal(res.Data, &m))
	assert.Equal(t, "committed", m.State)
	assert.Equal(t, "remove", m.Operation)
	assert.Equal(t, 1, m.Item.Stock2)
	require.NotNil(t, m.LogEntry)
	assert.Equal(t, "Production", m.LogEntry.User)
	assert.Equal(t, 2, m.LogEntry.PreviousStock)

	_, res = do(t, router, http.MethodGet, "/api/logs", token, nil)
	var logs []LogEntryDTO
	require.NoError(t, json.Unmarshal(res.Data, &logs))
	assert.Len(t, logs, 1)
}

func TestChangeStock_Errors(t *testing.T) {
	f, router := newRouter(t)
	token := f.token(t, production)

	rec, _ := do(t, router, http.MethodPost, "/api/items/item-1/stock", token, StockRequest{Location: "NoSuchLocation", Delta: -1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/items/missing/stock", token, StockRequest{Location: "Lager1", Delta: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/items/item-1/stock", token, StockRequest{Location: "Lager1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := StockRequest{Location: "Lager1", Delta: 1, RequestID: "r-1"}
	rec, _ = do(t, router, http.MethodPost, "/api/items/item-1/stock", token, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, router, http.MethodPost, "/api/items/item-1/stock", token, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestImport(t *testing.T) {
	f, router := newRouter(t)
	body := "Article,Location1,Stock1,Location2,Stock2,Barcode\nNew,L1,4,,,\n"

	rec, _ := do(t, router, http.MethodPost, "/api/import", f.token(t, production), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/import", f.token(t, admin), "Article,Location1\nX,\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, res := do(t, router, http.MethodPost, "/api/import", f.token(t, admin), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1}`, string(res.Data))

	items, _ := f.store.ListItems(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "New", items[0].Article)
}

func TestImport_RejectsOversizedBody(t *testing.T) {
	f, router := newRouter(t)
	row := "New,L1,4,,,\n"
	body := "Article,Location1,Stock1,Location2,Stock2,Barcode\n" +
		strings.Repeat(row, maxImportBytes/len(row)+1)

	rec, res := do(t, router, http.MethodPost, "/api/import", f.token(t, admin), body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, res.Success)
	assert.Equal(t, "request body too large", res.Message)

	items, _ := f.store.ListItems(context.Background())
	assert.Len(t, items, 2)
}

func TestExportItemsCSV(t *testing.T) {
	f, router := newRouter(t)

	rec, _ := do(t, router, http.MethodGet, "/api/export/items.csv", f.token(t, production), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Art123,Lager1,in-stock,3,Lager2,in-stock,2,7310000000001", lines[1])
}

func TestClearAll(t *testing.T) {
	f, router := newRouter(t)

	rec, _ := do(t, router, http.MethodDelete, "/api/inventory", f.token(t, production), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, router, http.MethodDelete, "/api/inventory", f.token(t, admin), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, res := do(t, router, http.MethodGet, "/api/items", f.token(t, admin), nil)
	assert.JSONEq(t, `[]`, string(res.Data))
}

func TestLogoEndpoints(t *testing.T) {
	f, router := newRouter(t)
	token := f.token(t, production)

	rec, _ := do(t, router, http.MethodPut, "/api/settings/logo", token, LogoRequest{Logo: "not-a-data-url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/api/settings/logo", token, LogoRequest{Logo: "data:image/png;base64,AA=="})
	require.Equal(t, http.StatusOK, rec.Code)

	_, res := do(t, router, http.MethodGet, "/api/settings/logo", token, nil)
	assert.JSONEq(t, `{"logo":"data:image/png;base64,AA=="}`, string(res.Data))

	rec, _ = do(t, router, http.MethodDelete, "/api/settings/logo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, res = do(t, router, http.MethodGet, "/api/settings/logo", token, nil)
	assert.JSONEq(t, `{"logo":""}`, string(res.Data))
}

func TestNotifications(t *testing.T) {
	f, router := newRouter(t)
	token := f.token(t, production)

	do(t, router, http.MethodPost, "/api/items/item-1/stock", token, StockRequest{Location: "Lager1", Operation: "add"})

	_, res := do(t, router, http.MethodGet, "/api/notifications", token, nil)
	var notes []NotificationDTO
	require.NoError(t, json.Unmarshal(res.Data, &notes))
	require.NotEmpty(t, notes)
	assert.Equal(t, "Stock added", notes[0].Title)
}

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		domain.ErrItemNotFound:       http.StatusNotFound,
		domain.ErrLocationNotFound:   http.StatusNotFound,
		domain.ErrInvalidDelta:       http.StatusBadRequest,
		domain.ErrInvalidCredentials: http.StatusUnauthorized,
		domain.ErrNotAuthorized:      http.StatusForbidden,
		domain.ErrDuplicateRequest:   http.StatusConflict,
		domain.ErrTimeout:            http.StatusGatewayTimeout,
		domain.ErrPersistence:        http.StatusBadGateway,
		domain.ErrLogWrite:           http.StatusInternalServerError,
	}
	for err, want := range cases {
		got, _ := errorStatus(err)
		assert.Equal(t, want, got, err.Error())
	}
}

func TestLoginLimiter(t *testing.T) {
	limit, err := NewLoginLimiter("1-M")
	require.NoError(t, err)

	f := newFixture(t)
	router := NewHTTPHandler(f.stock, f.inventory, f.authn, f.tokens, f.notifier).Router(limit)

	rec, _ := do(t, router, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "asdf123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "asdf123"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	_, err = NewLoginLimiter("bogus")
	assert.Error(t, err)
}
