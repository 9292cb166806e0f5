package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-stock-api/internal/application/inventory"
	"github.com/jhoicas/retail-stock-api/internal/application/sales"
	"github.com/jhoicas/retail-stock-api/internal/application/transfer"
	"github.com/jhoicas/retail-stock-api/internal/domain/entity"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/numbering"
	"github.com/jhoicas/retail-stock-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/retail-stock-api/internal/interfaces/http"
)

var camisa = entity.StockKey{LocationID: "L1", ItemID: "camisa", VariantID: "M"}

func buildAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddLocation(entity.Location{ID: "BOD", Code: "bod", Name: "Bodega Central", Kind: entity.LocationKindWarehouse})
	store.AddLocation(entity.Location{ID: "L1", Code: "cen", Name: "Tienda Centro", Kind: entity.LocationKindStore})
	store.AddLocation(entity.Location{ID: "L2", Code: "nor", Name: "Tienda Norte", Kind: entity.LocationKindStore})
	store.PutStock(camisa, 5)

	seq := numbering.NewSequence()
	applier := inventory.NewMovementApplier(inventory.NewStockLedger(nil, nil))
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Sales:         sales.NewSaleUseCase(store, applier, seq, nil, pdf.NewReceiptGenerator(), nil),
		Returns:       sales.NewReturnUseCase(store, applier, seq, nil, nil),
		Transfers:     transfer.NewTransferUseCase(store, applier, seq, nil, nil, "BOD"),
		StockQuery:    inventory.NewStockQueryUseCase(store),
		Replenishment: inventory.NewReplenishmentUseCase(store),
		JWTSecret:     testJWTSecret,
	})
	return app, store
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func TestAPI_VentaYDevolucion(t *testing.T) {
	app, store := buildAPI(t)
	auth := tokenForRole(t, "cashier")

	status, env := call(t, app, http.MethodPost, "/api/sales", auth, map[string]any{
		"lines":   []map[string]any{{"item_id": "camisa", "variant_id": "M", "quantity": 3, "unit_price": "45000"}},
		"payment": map[string]any{"cash": "150000"},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.True(t, env.Success)
	assert.Equal(t, int64(2), store.StockOf(camisa))

	var sale struct {
		ID     string `json:"id"`
		Number string `json:"number"`
		Change string `json:"change"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Equal(t, "V-CEN-000001", sale.Number)
	assert.Equal(t, "15000", sale.Change)

	status, _ = call(t, app, http.MethodGet, "/api/sales/"+sale.ID, auth, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodPost, "/api/returns", auth, map[string]any{
		"sale_id": sale.ID, "reason": "no le quedó", "type": "full",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, int64(5), store.StockOf(camisa))

	status, env = call(t, app, http.MethodPost, "/api/returns", auth, map[string]any{
		"sale_id": sale.ID, "reason": "otra vez", "type": "full",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestAPI_ComprobantePDF(t *testing.T) {
	app, _ := buildAPI(t)
	auth := tokenForRole(t, "cashier")

	_, env := call(t, app, http.MethodPost, "/api/sales", auth, map[string]any{
		"lines":   []map[string]any{{"item_id": "camisa", "variant_id": "M", "quantity": 1, "unit_price": "45000"}},
		"payment": map[string]any{"mobile": "45000"},
	})
	var sale struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sale))

	req := httptest.NewRequest(http.MethodGet, "/api/sales/"+sale.ID+"/receipt", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_ErroresDeValidacion(t *testing.T) {
	app, _ := buildAPI(t)
	auth := tokenForRole(t, "cashier")

	status, env := call(t, app, http.MethodPost, "/api/sales", auth, map[string]any{"lines": []any{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_CART", env.Code)
	assert.False(t, env.Success)

	status, env = call(t, app, http.MethodGet, "/api/sales/no-existe", auth, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestAPI_TrasladoYReversaPorRol(t *testing.T) {
	app, store := buildAPI(t)
	gerente := tokenForRole(t, "manager")

	status, env := call(t, app, http.MethodPost, "/api/transfers", gerente, map[string]any{
		"source_location_id": "L1", "destination_location_id": "L2",
		"lines": []map[string]any{{"item_id": "camisa", "variant_id": "M", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var shipment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &shipment))
	assert.Equal(t, "completed", shipment.Status)
	assert.Equal(t, int64(3), store.StockOf(camisa))

	status, _ = call(t, app, http.MethodPost, "/api/transfers/"+shipment.ID+"/reverse", tokenForRole(t, "cashier"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, app, http.MethodPost, "/api/transfers/"+shipment.ID+"/reverse", gerente, map[string]any{"reason": "error"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(5), store.StockOf(camisa))

	status, env = call(t, app, http.MethodPost, "/api/transfers/"+shipment.ID+"/reverse", gerente, map[string]any{"reason": "error"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "SHIPMENT_CANCELLED", env.Code)

	status, env = call(t, app, http.MethodPost, "/api/transfers", gerente, map[string]any{
		"source_location_id": "L1", "destination_location_id": "L2",
		"lines": []map[string]any{{"item_id": "camisa", "variant_id": "M", "quantity": 50}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)
}

func TestAPI_ConsultasDeStock(t *testing.T) {
	app, store := buildAPI(t)
	store.SetMinimum(camisa, 8)
	auth := tokenForRole(t, "warehouse")

	status, env := call(t, app, http.MethodGet, "/api/inventory/stock?item_id=camisa&variant_id=M", auth, nil)
	require.Equal(t, http.StatusOK, status)
	var line struct {
		CurrentStock int64 `json:"current_stock"`
		BelowMinimum bool  `json:"below_minimum"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &line))
	assert.Equal(t, int64(5), line.CurrentStock)
	assert.True(t, line.BelowMinimum)

	status, env = call(t, app, http.MethodGet, "/api/inventory/replenishment-list?location_id=L1", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"total":1`)

	status, env = call(t, app, http.MethodGet, "/api/inventory/stock", auth, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Code)
}
