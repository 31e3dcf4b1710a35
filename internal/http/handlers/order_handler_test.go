// README: Integration tests for order handler authorization and status routes.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"breeze/internal/auth"
	"breeze/internal/http/handlers"
	httpmiddleware "breeze/internal/http/middleware"
	"breeze/internal/modules/account"
	"breeze/internal/modules/order"
	"breeze/internal/types"
)

var testSession = auth.Config{Secret: "handler-test-secret", TTL: time.Hour}

// fakeOrderStore is an in-memory order.Store so handler tests run without a database.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[types.ID]*order.Order
	events []order.Event
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[types.ID]*order.Order{}}
}

func (s *fakeOrderStore) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) Get(_ context.Context, id types.ID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) ListAll(_ context.Context) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOrderStore) ListByUser(_ context.Context, userID types.ID) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListByRider(_ context.Context, riderID types.ID) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		if o.RiderID != nil && *o.RiderID == riderID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) AppendEvent(_ context.Context, e *order.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

// fakeRiders answers the rider check for a fixed set of account IDs.
type fakeRiders struct {
	ids map[types.ID]bool
}

func (f *fakeRiders) IsRider(_ context.Context, id types.ID) (bool, error) {
	return f.ids[id], nil
}

// buildTestRouter wires a minimal Gin engine with the session middleware and the
// order routes, mirroring the production route table.
func buildTestRouter(store order.Store, riders order.RiderDirectory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := order.NewService(store, riders)
	r := gin.New()
	authed := httpmiddleware.Auth(testSession)
	admin := httpmiddleware.RequireRole(string(account.RoleAdmin))
	riderOnly := httpmiddleware.RequireRole(string(account.RoleRider))

	h := handlers.NewOrderHandler(svc)
	orders := r.Group("/api/orders", authed)
	orders.POST("", h.Create)
	orders.GET("/myorders", h.ListMine)
	orders.GET("/:id", h.Get)
	orders.PUT("/:id/status", admin, h.UpdateStatus)

	rh := handlers.NewRiderHandler(svc, nil, "")
	r.GET("/api/riders/orders", authed, riderOnly, rh.ListAssigned)
	return r
}

func bearerFor(t *testing.T, id types.ID, role account.Role) string {
	t.Helper()
	token, err := auth.Generate(testSession, id, string(id)+"@example.com", string(role))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func orderBody() map[string]any {
	return map[string]any{
		"orderItems": []map[string]any{
			{"product": "p1", "name": "CoolBreeze 3000", "quantity": 1,
				"unitPrice": map[string]any{"amount": 19999, "currency": "USD"}},
		},
		"shippingAddress": map[string]any{
			"street": "1 Main St", "city": "Austin", "state": "TX",
			"zipCode": "78701", "country": "USA",
		},
		"paymentMethod": "PayPal",
		"totalPrice":    map[string]any{"amount": 19999, "currency": "USD"},
	}
}

// createVia posts an order as the given customer and returns the created order.
func createVia(t *testing.T, r *gin.Engine, userID types.ID) order.Order {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/orders", orderBody(), bearerFor(t, userID, account.RoleCustomer))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var o order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode created order: %v", err)
	}
	return o
}

func TestCreate_Unauthenticated(t *testing.T) {
	r := buildTestRouter(newFakeOrderStore(), &fakeRiders{})
	w := doRequest(r, http.MethodPost, "/api/orders", orderBody(), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreate_StartsPending(t *testing.T) {
	r := buildTestRouter(newFakeOrderStore(), &fakeRiders{})
	o := createVia(t, r, "cust1")
	if o.Status != order.StatusPending {
		t.Errorf("expected Pending, got %s", o.Status)
	}
	if o.UserID != "cust1" {
		t.Errorf("order attributed to %q, want cust1", o.UserID)
	}
}

func TestUpdateStatus_RequiresAdmin(t *testing.T) {
	r := buildTestRouter(newFakeOrderStore(), &fakeRiders{})
	o := createVia(t, r, "cust1")
	w := doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status",
		map[string]any{"status": "Paid"}, bearerFor(t, "cust1", account.RoleCustomer))
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestUpdateStatus_AdminTransitions(t *testing.T) {
	riders := &fakeRiders{ids: map[types.ID]bool{"rider1": true}}
	r := buildTestRouter(newFakeOrderStore(), riders)
	o := createVia(t, r, "cust1")
	adminAuth := bearerFor(t, "admin1", account.RoleAdmin)

	w := doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status",
		map[string]any{"status": "Paid"}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("to Paid: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Shipping without a rider must fail before one is supplied.
	w = doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status",
		map[string]any{"status": "Shipped"}, adminAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("ship without rider: expected 400, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status",
		map[string]any{"status": "Shipped", "riderId": "rider1"}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("ship with rider: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != order.StatusShipped {
		t.Errorf("expected Shipped, got %s", updated.Status)
	}
	if updated.RiderID == nil || *updated.RiderID != "rider1" {
		t.Errorf("rider not recorded: %+v", updated.RiderID)
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	r := buildTestRouter(newFakeOrderStore(), &fakeRiders{})
	o := createVia(t, r, "cust1")
	w := doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status",
		map[string]any{"status": "Delivered"}, bearerFor(t, "admin1", account.RoleAdmin))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Pending to Delivered: expected 400, got %d", w.Code)
	}
}

func TestGet_Visibility(t *testing.T) {
	riders := &fakeRiders{ids: map[types.ID]bool{"rider1": true}}
	r := buildTestRouter(newFakeOrderStore(), riders)
	o := createVia(t, r, "cust1")
	adminAuth := bearerFor(t, "admin1", account.RoleAdmin)
	path := "/api/orders/" + string(o.ID)

	if w := doRequest(r, http.MethodGet, path, nil, bearerFor(t, "cust1", account.RoleCustomer)); w.Code != http.StatusOK {
		t.Errorf("owner: expected 200, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, path, nil, bearerFor(t, "cust2", account.RoleCustomer)); w.Code != http.StatusForbidden {
		t.Errorf("stranger: expected 403, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, path, nil, adminAuth); w.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", w.Code)
	}

	// Assign the rider, then the rider may view.
	doRequest(r, http.MethodPut, path+"/status", map[string]any{"status": "Paid"}, adminAuth)
	doRequest(r, http.MethodPut, path+"/status", map[string]any{"status": "Shipped", "riderId": "rider1"}, adminAuth)
	if w := doRequest(r, http.MethodGet, path, nil, bearerFor(t, "rider1", account.RoleRider)); w.Code != http.StatusOK {
		t.Errorf("assigned rider: expected 200, got %d", w.Code)
	}
}

func TestGet_NotFound(t *testing.T) {
	r := buildTestRouter(newFakeOrderStore(), &fakeRiders{})
	w := doRequest(r, http.MethodGet, "/api/orders/nosuch", nil, bearerFor(t, "cust1", account.RoleCustomer))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRiderOrders_RoleAndScope(t *testing.T) {
	riders := &fakeRiders{ids: map[types.ID]bool{"rider1": true}}
	r := buildTestRouter(newFakeOrderStore(), riders)
	o := createVia(t, r, "cust1")
	adminAuth := bearerFor(t, "admin1", account.RoleAdmin)
	doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status", map[string]any{"status": "Paid"}, adminAuth)
	doRequest(r, http.MethodPut, "/api/orders/"+string(o.ID)+"/status", map[string]any{"status": "Shipped", "riderId": "rider1"}, adminAuth)

	if w := doRequest(r, http.MethodGet, "/api/riders/orders", nil, bearerFor(t, "cust1", account.RoleCustomer)); w.Code != http.StatusForbidden {
		t.Errorf("customer on rider route: expected 403, got %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/riders/orders", nil, bearerFor(t, "rider1", account.RoleRider))
	if w.Code != http.StatusOK {
		t.Fatalf("rider listing: expected 200, got %d", w.Code)
	}
	var assigned []order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &assigned); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != o.ID {
		t.Errorf("expected the one assigned order, got %+v", assigned)
	}
}
