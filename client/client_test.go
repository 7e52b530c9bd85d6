package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithToken("test-token"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func okResponse(w http.ResponseWriter, status int, data any) {
	jsonResponse(w, status, map[string]any{"success": true, "data": data})
}

func listResponse(w http.ResponseWriter, data any, hasMore bool) {
	jsonResponse(w, http.StatusOK, map[string]any{"success": true, "data": data, "has_more": hasMore})
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": message, "request_id": "req-1"},
	})
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0", ApprovalModel: "multi"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.ApprovalModel != "multi" {
		t.Errorf("got approval model %q, want multi", resp.ApprovalModel)
	}
}

func TestBearerToken(t *testing.T) {
	var got string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/approvals/pending": func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			listResponse(w, []PendingApproval{}, false)
		},
	})
	if _, _, err := c.Approvals.Pending(context.Background(), 0, 0); err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if got != "Bearer test-token" {
		t.Errorf("got Authorization %q", got)
	}
}

func TestApprovalsPending(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/approvals/pending": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "10" {
				t.Errorf("expected limit=10, got %q", r.URL.Query().Get("limit"))
			}
			step := "manager_review"
			listResponse(w, []PendingApproval{{Property: Property{ID: "p1", Title: "Flat"}, CurrentStep: &step}}, true)
		},
	})
	items, hasMore, err := c.Approvals.Pending(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("Pending() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "p1" || !hasMore {
		t.Errorf("unexpected result %+v hasMore=%v", items, hasMore)
	}
	if items[0].CurrentStep == nil || *items[0].CurrentStep != "manager_review" {
		t.Errorf("expected current step, got %v", items[0].CurrentStep)
	}
}

func TestApprovalsTransitions(t *testing.T) {
	var rejectBody map[string]string
	var approveBody map[string]any
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/properties/p1/approve": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&approveBody) //nolint:errcheck
			okResponse(w, 200, TransitionResult{PropertyID: "p1", NewStatus: "active", AuditLogID: 11})
		},
		"POST /api/v1/properties/p1/reject": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&rejectBody) //nolint:errcheck
			okResponse(w, 200, TransitionResult{PropertyID: "p1", NewStatus: "rejected", AuditLogID: 12})
		},
		"POST /api/v1/properties/p1/mark-sold": func(w http.ResponseWriter, _ *http.Request) {
			okResponse(w, 200, TransitionResult{PropertyID: "p1", NewStatus: "sold", AuditLogID: 13})
		},
	})
	ctx := context.Background()

	res, err := c.Approvals.Approve(ctx, "p1", "")
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if res.NewStatus != "active" || res.AuditLogID != 11 {
		t.Errorf("unexpected approve result %+v", res)
	}
	if _, ok := approveBody["comments"]; ok {
		t.Error("empty comments should be omitted")
	}

	res, err = c.Approvals.Reject(ctx, "p1", "missing title deed scan")
	if err != nil {
		t.Fatalf("Reject() error: %v", err)
	}
	if res.NewStatus != "rejected" || rejectBody["reason"] != "missing title deed scan" {
		t.Errorf("unexpected reject result %+v body %v", res, rejectBody)
	}

	res, err = c.Approvals.MarkSold(ctx, "p1", "deal closed")
	if err != nil {
		t.Fatalf("MarkSold() error: %v", err)
	}
	if res.NewStatus != "sold" {
		t.Errorf("unexpected mark-sold result %+v", res)
	}
}

func TestApprovalsDenied(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/properties/p1/approve": func(w http.ResponseWriter, _ *http.Request) {
			errorResponse(w, 403, "INSUFFICIENT_PERMISSIONS", "approve requires one of: admin, director, manager, vp")
		},
	})
	_, err := c.Approvals.Approve(context.Background(), "p1", "")
	if !IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if CodeOf(err) != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("got code %q", CodeOf(err))
	}
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.RequestID != "req-1" {
		t.Errorf("expected request id on error, got %+v", err)
	}
}

func TestPropertiesCreateAndUpdate(t *testing.T) {
	var created CreatePropertyRequest
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/properties": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&created) //nolint:errcheck
			okResponse(w, 201, Property{ID: "p9", Status: "pending", Title: created.Title, PriceAZN: created.PriceAZN})
		},
		"PATCH /api/v1/properties/p9": func(w http.ResponseWriter, r *http.Request) {
			var req UpdatePropertyRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			okResponse(w, 200, Property{ID: "p9", Status: "pending", Title: *req.Title})
		},
	})
	ctx := context.Background()

	p, err := c.Properties.Create(ctx, &CreatePropertyRequest{
		PropertyCategory: "residential",
		ListingType:      "agency_owned",
		Category:         "sale",
		Title:            "Villa",
		Address:          "Mardakan",
		PriceAZN:         decimal.RequireFromString("450000.50"),
		BuyPriceAZN:      decimal.NewNullDecimal(decimal.RequireFromString("390000")),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.Status != "pending" || !p.PriceAZN.Equal(decimal.RequireFromString("450000.50")) {
		t.Errorf("unexpected property %+v", p)
	}
	if !created.BuyPriceAZN.Valid {
		t.Error("expected buy_price_azn in request body")
	}

	title := "Villa with pool"
	p, err = c.Properties.Update(ctx, "p9", &UpdatePropertyRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if p.Title != title {
		t.Errorf("got title %q", p.Title)
	}
}

func TestPropertiesGetNotFound(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/properties/missing": func(w http.ResponseWriter, _ *http.Request) {
			errorResponse(w, 404, "PROPERTY_NOT_FOUND", "property not found")
		},
	})
	_, err := c.Properties.Get(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPropertiesListFilters(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/properties": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("status") != "active" || q.Get("listing_type") != "brokerage" || q.Get("offset") != "20" {
				t.Errorf("unexpected query %v", q)
			}
			listResponse(w, []Property{{ID: "p1"}}, false)
		},
	})
	props, _, err := c.Properties.List(context.Background(), &PropertyListOptions{Status: "active", ListingType: "brokerage", Offset: 20})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(props) != 1 {
		t.Errorf("got %d properties", len(props))
	}
}

func TestBookings(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/properties/p1/bookings": func(w http.ResponseWriter, r *http.Request) {
			var req CreateBookingRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			okResponse(w, 201, Booking{ID: "b1", PropertyID: "p1", CustomerID: req.CustomerID, Status: "ACTIVE"})
		},
		"POST /api/v1/bookings/b1/cancel": func(w http.ResponseWriter, _ *http.Request) {
			okResponse(w, 200, Booking{ID: "b1", Status: "CANCELLED"})
		},
		"POST /api/v1/bookings/b2/convert": func(w http.ResponseWriter, _ *http.Request) {
			errorResponse(w, 400, "INVALID_STATUS", "booking is no longer active")
		},
	})
	ctx := context.Background()

	b, err := c.Bookings.Create(ctx, "p1", &CreateBookingRequest{CustomerID: "crm-5"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if b.Status != "ACTIVE" || b.CustomerID != "crm-5" {
		t.Errorf("unexpected booking %+v", b)
	}

	b, err = c.Bookings.Cancel(ctx, "b1")
	if err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	if b.Status != "CANCELLED" {
		t.Errorf("got status %q", b.Status)
	}

	_, err = c.Bookings.Convert(ctx, "b2")
	if CodeOf(err) != "INVALID_STATUS" {
		t.Errorf("expected INVALID_STATUS, got %v", err)
	}
}

func TestBookingConflict(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/properties/p1/bookings": func(w http.ResponseWriter, _ *http.Request) {
			errorResponse(w, 409, "BOOKING_CONFLICT", "property already has an active booking")
		},
	})
	_, err := c.Bookings.Create(context.Background(), "p1", &CreateBookingRequest{CustomerID: "crm-5"})
	if !IsConflict(err) || CodeOf(err) != "BOOKING_CONFLICT" {
		t.Fatalf("expected booking conflict, got %v", err)
	}
}

func TestAuditQuery(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/audit": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("actor_id") != "mgr-1" || q.Get("since") != "2026-03-01T00:00:00Z" {
				t.Errorf("unexpected query %v", q)
			}
			listResponse(w, []AuditEntry{{ID: 3, Action: "APPROVE", ActorID: "mgr-1"}}, false)
		},
	})
	entries, _, err := c.Audit.Query(context.Background(), &AuditQueryOptions{ActorID: "mgr-1", Since: &since})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "APPROVE" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestRateLimited(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/bookings/b1": func(w http.ResponseWriter, _ *http.Request) {
			errorResponse(w, 429, "RATE_LIMITED", "too many requests")
		},
	})
	_, err := c.Bookings.Get(context.Background(), "b1")
	if !IsRateLimited(err) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func TestParseAPIError_RawBody(t *testing.T) {
	err := parseAPIError(502, []byte("bad gateway"))
	if err.Code != "unknown" || err.Message != "bad gateway" || err.StatusCode != 502 {
		t.Errorf("unexpected error %+v", err)
	}
}
