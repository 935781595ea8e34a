package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"liblend/internal/adapters/http/handlers"
	"liblend/internal/adapters/persistence/memory"
	"liblend/internal/adapters/persistence/models"
	"liblend/internal/config"
	"liblend/internal/core/services"
	"liblend/internal/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func newLoanApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()

	store, err := memory.NewStore()
	require.NoError(t, err)

	cfg := &config.Config{Loan: config.LoanConfig{PeriodDays: 14, PenaltyDays: 7}}
	handler := handlers.NewLoanHandler(services.NewLoanService(store, cfg))

	app := fiber.New()
	app.Post("/loans/borrow", handler.Borrow)
	app.Post("/loans/return", handler.Return)
	app.Get("/loans", handler.List)
	app.Get("/loans/:refNo", handler.GetByRefNo)

	return app, store
}

func seedLending(t *testing.T, store *memory.Store) {
	t.Helper()
	require.NoError(t, store.Books().Create(ctx, &models.Book{Code: "B-0001", Title: "Test Book", Stock: 1}))
	require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-0001", Name: "Alice"}))
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestBorrowEndpoint(t *testing.T) {
	t.Run("returns 201 with the loan", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{
			"member_code": "M-0001",
			"book_code":   "B-0001",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Loan models.LoanResponse `json:"loan"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.NotEmpty(t, body.Data.Loan.RefNo)
		assert.Equal(t, models.LoanStatusBorrowed, body.Data.Loan.Status)
	})

	t.Run("unknown member is 404", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{
			"member_code": "M-9999",
			"book_code":   "B-0001",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("out of stock is 409", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)
		require.NoError(t, store.Members().Create(ctx, &models.Member{Code: "M-0002", Name: "Bob"}))

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{"member_code": "M-0001", "book_code": "B-0001"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, app, "/loans/borrow", fiber.Map{"member_code": "M-0002", "book_code": "B-0001"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("penalized member is 403", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)
		require.NoError(t, store.Members().SetPenalty(ctx, "M-0001", time.Now().Add(time.Hour)))

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{"member_code": "M-0001", "book_code": "B-0001"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("missing codes are 400 with a field message", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{"member_code": "M-0001"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Success)
		assert.Equal(t, "Book code is required", body.Error)

		resp = postJSON(t, app, "/loans/borrow", fiber.Map{"book_code": "B-0001"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Member code is required", body.Error)

		// Rejected input must not touch the shelf
		book, err := store.Books().GetByCode(ctx, "B-0001")
		require.NoError(t, err)
		assert.Equal(t, 1, book.Stock)
	})
}

func TestReturnEndpoint(t *testing.T) {
	t.Run("returns 200 and closes the loan", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{"member_code": "M-0001", "book_code": "B-0001"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = postJSON(t, app, "/loans/return", fiber.Map{"member_code": "M-0001", "book_code": "B-0001"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		book, err := store.Books().GetByCode(ctx, "B-0001")
		require.NoError(t, err)
		assert.Equal(t, 1, book.Stock)
	})

	t.Run("no open loan is 404", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)

		resp := postJSON(t, app, "/loans/return", fiber.Map{"member_code": "M-0001", "book_code": "B-0001"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLoanQueryEndpoints(t *testing.T) {
	t.Run("list and get by ref", func(t *testing.T) {
		app, store := newLoanApp(t)
		seedLending(t, store)

		resp := postJSON(t, app, "/loans/borrow", fiber.Map{"member_code": "M-0001", "book_code": "B-0001"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created struct {
			Data struct {
				Loan models.LoanResponse `json:"loan"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

		req := httptest.NewRequest(http.MethodGet, "/loans?member_code=M-0001&page=1&limit=5", nil)
		listResp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, listResp.StatusCode)

		var listed struct {
			Data struct {
				Data []models.LoanResponse `json:"data"`
				Meta pagination.Meta       `json:"meta"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listed))
		require.Len(t, listed.Data.Data, 1)
		assert.Equal(t, int64(1), listed.Data.Meta.Total)
		assert.Equal(t, 5, listed.Data.Meta.Limit)
		assert.Equal(t, 1, listed.Data.Meta.TotalPages)

		req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/loans/%s", created.Data.Loan.RefNo), nil)
		getResp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, getResp.StatusCode)

		req = httptest.NewRequest(http.MethodGet, "/loans/missing-ref", nil)
		missResp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, missResp.StatusCode)
	})
}
