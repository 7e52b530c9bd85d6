package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estatedesk/backoffice/internal/api"
	"github.com/estatedesk/backoffice/internal/models"
)

func propertyRouter(svc *mockPropertyService, who models.Identity) *gin.Engine {
	h := api.NewPropertyHandler(svc, testLogger())
	r := newTestRouter(who)
	r.POST("/properties", h.Create)
	r.GET("/properties", h.List)
	r.GET("/properties/:id", h.Get)
	r.PATCH("/properties/:id", h.Update)

	return r
}

const brokerageBody = `{
	"property_category": "residential",
	"listing_type": "brokerage",
	"category": "sale",
	"title": "3-room flat, Yasamal",
	"address": "Yasamal district, Baku",
	"price_azn": "185000",
	"owner_first_name": "Leyla",
	"owner_last_name": "Mammadova",
	"owner_contact": "+994501234567",
	"brokerage_commission_percent": "2.5"
}`

func TestCreateProperty_Success(t *testing.T) {
	var gotActor models.Identity
	svc := &mockPropertyService{
		createFn: func(_ context.Context, actor models.Identity, req models.CreatePropertyRequest) (*models.Property, error) {
			gotActor = actor
			return &models.Property{ID: uuid.New(), Title: req.Title, Status: models.StatusPending, PriceAZN: req.PriceAZN}, nil
		},
	}

	w := doRequest(propertyRouter(svc, agent()), http.MethodPost, "/properties", brokerageBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var prop models.Property
	decodeData(t, w, &prop)
	if prop.Status != models.StatusPending {
		t.Errorf("expected pending, got %s", prop.Status)
	}
	if prop.PriceAZN.String() != "185000" {
		t.Errorf("expected exact decimal price, got %s", prop.PriceAZN)
	}
	if gotActor.UserID != "agent-1" {
		t.Errorf("expected actor agent-1, got %q", gotActor.UserID)
	}
}

func TestCreateProperty_MissingListingFields(t *testing.T) {
	body := `{"property_category":"residential","listing_type":"brokerage","category":"sale",
		"title":"Flat","address":"Baku","price_azn":"1000"}`

	w := doRequest(propertyRouter(&mockPropertyService{}, agent()), http.MethodPost, "/properties", body)
	expectError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestCreateProperty_MalformedJSON(t *testing.T) {
	w := doRequest(propertyRouter(&mockPropertyService{}, agent()), http.MethodPost, "/properties", `{"title":`)
	expectError(t, w, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestListProperties_Filters(t *testing.T) {
	var got models.PropertyListOpts
	svc := &mockPropertyService{
		listFn: func(_ context.Context, opts models.PropertyListOpts) ([]models.Property, bool, error) {
			got = opts
			return []models.Property{}, false, nil
		},
	}

	w := doRequest(propertyRouter(svc, agent()), http.MethodGet, "/properties?status=active&listing_type=brokerage&limit=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.Status != models.StatusActive || got.ListingType != models.ListingBrokerage || got.Limit != 20 {
		t.Errorf("unexpected opts %+v", got)
	}
}

func TestListProperties_UnknownStatus(t *testing.T) {
	w := doRequest(propertyRouter(&mockPropertyService{}, agent()), http.MethodGet, "/properties?status=approved", "")
	expectError(t, w, http.StatusBadRequest, "INVALID_REQUEST")
}

func TestGetProperty_NotFound(t *testing.T) {
	svc := &mockPropertyService{
		getFn: func(context.Context, uuid.UUID) (*models.Property, error) {
			return nil, models.ErrPropertyNotFound
		},
	}

	w := doRequest(propertyRouter(svc, agent()), http.MethodGet, "/properties/"+testPropertyID, "")
	expectError(t, w, http.StatusNotFound, "PROPERTY_NOT_FOUND")
}

func TestUpdateProperty_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not editable", models.ErrNotEditable, http.StatusBadRequest, "INVALID_STATUS"},
		{"not owner", &models.DeniedError{Code: models.DenyInsufficientPermissions, Reason: "not yours"}, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"validation", models.Invalid(models.ErrEmptyUpdate), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"duplicate code", models.ErrDuplicateKey, http.StatusConflict, "CONFLICT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockPropertyService{
				updateFn: func(context.Context, models.Identity, uuid.UUID, models.UpdatePropertyRequest) (*models.Property, error) {
					return nil, tc.err
				},
			}

			w := doRequest(propertyRouter(svc, agent()), http.MethodPatch, "/properties/"+testPropertyID, `{"title":"New title"}`)
			expectError(t, w, tc.status, tc.code)
		})
	}
}

func TestUpdateProperty_Success(t *testing.T) {
	var gotTitle string
	svc := &mockPropertyService{
		updateFn: func(_ context.Context, _ models.Identity, id uuid.UUID, req models.UpdatePropertyRequest) (*models.Property, error) {
			if req.Title != nil {
				gotTitle = *req.Title
			}
			return &models.Property{ID: id, Title: gotTitle, Status: models.StatusRejected}, nil
		},
	}

	w := doRequest(propertyRouter(svc, agent()), http.MethodPatch, "/properties/"+testPropertyID, `{"title":"New title"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotTitle != "New title" {
		t.Errorf("expected title to be passed through, got %q", gotTitle)
	}
}
