package models_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatedesk/backoffice/internal/models"
)

func ptr[T any](v T) *T { return &v }

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

func agencyRequest() models.CreatePropertyRequest {
	return models.CreatePropertyRequest{
		PropertyCategory: models.CategoryResidential,
		ListingType:      models.ListingAgencyOwned,
		Category:         models.DealSale,
		Title:            "3-room flat, Nasimi",
		Address:          "28 May st. 12",
		PriceAZN:         decimal.NewFromInt(150000),
		BuyPriceAZN:      decimal.NewNullDecimal(decimal.NewFromInt(100000)),
	}
}

func brokerageRequest() models.CreatePropertyRequest {
	return models.CreatePropertyRequest{
		PropertyCategory:           models.CategoryCommercial,
		ListingType:                models.ListingBrokerage,
		Category:                   models.DealRent,
		Title:                      "Office, Port Baku",
		Address:                    "Neftchilar ave. 153",
		PriceAZN:                   decimal.NewFromInt(4000),
		OwnerFirstName:             ptr("Leyla"),
		OwnerLastName:              ptr("Aliyeva"),
		OwnerContact:               ptr("+994501234567"),
		BrokerageCommissionPercent: decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
	}
}

func TestCreatePropertyRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.CreatePropertyRequest)
		base    func() models.CreatePropertyRequest
		wantErr string
	}{
		{name: "valid agency owned", base: agencyRequest},
		{name: "valid branch owned", base: agencyRequest, mutate: func(r *models.CreatePropertyRequest) { r.ListingType = models.ListingBranchOwned }},
		{name: "valid brokerage", base: brokerageRequest},
		{
			name: "agency owned without buy price", base: agencyRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.BuyPriceAZN = decimal.NullDecimal{} },
			wantErr: "buy_price_azn",
		},
		{
			name: "brokerage without owner contact", base: brokerageRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.OwnerContact = nil },
			wantErr: "owner_contact",
		},
		{
			name: "brokerage with blank owner name", base: brokerageRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.OwnerFirstName = ptr("  ") },
			wantErr: "owner_first_name",
		},
		{
			name: "brokerage without commission", base: brokerageRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.BrokerageCommissionPercent = decimal.NullDecimal{} },
			wantErr: "brokerage_commission_percent",
		},
		{
			name: "commission above 100", base: brokerageRequest,
			mutate: func(r *models.CreatePropertyRequest) {
				r.BrokerageCommissionPercent = decimal.NewNullDecimal(decimal.NewFromInt(101))
			},
			wantErr: "between 0 and 100",
		},
		{
			name: "unknown listing type", base: agencyRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.ListingType = "private" },
			wantErr: "listing_type must be one of",
		},
		{
			name: "missing title", base: agencyRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.Title = "" },
			wantErr: "title is required",
		},
		{
			name: "zero price", base: agencyRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.PriceAZN = decimal.Zero },
			wantErr: "price_azn",
		},
		{
			name: "bad category", base: agencyRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.Category = "lease" },
			wantErr: "category must be sale or rent",
		},
		{
			name: "title too long", base: agencyRequest,
			mutate:  func(r *models.CreatePropertyRequest) { r.Title = strings.Repeat("x", 256) },
			wantErr: "exceeds maximum length",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.base()
			if tc.mutate != nil {
				tc.mutate(&req)
			}

			err := req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestCreatePropertyRequest_ListingErrorIsSentinel(t *testing.T) {
	req := brokerageRequest()
	req.OwnerContact = nil

	if err := req.Validate(); !errors.Is(err, models.ErrListingFields) {
		t.Fatalf("expected ErrListingFields, got %v", err)
	}
}

func TestUpdatePropertyRequest_ValidateMerged(t *testing.T) {
	existing := &models.Property{
		ListingType: models.ListingAgencyOwned,
		BuyPriceAZN: decimal.NewNullDecimal(decimal.NewFromInt(90000)),
	}

	// Switching to brokerage without owner fields breaks the invariant.
	toBrokerage := models.ListingBrokerage
	req := models.UpdatePropertyRequest{ListingType: &toBrokerage}
	assertErrorContains(t, req.ValidateMerged(existing), "owner_first_name")

	req.OwnerFirstName = ptr("Elvin")
	req.OwnerLastName = ptr("Mammadov")
	req.OwnerContact = ptr("elvin@example.az")
	commission := decimal.NewFromInt(3)
	req.BrokerageCommissionPercent = &commission
	assertNoError(t, req.ValidateMerged(existing))

	title := "Renovated"
	assertNoError(t, (&models.UpdatePropertyRequest{Title: &title}).ValidateMerged(existing))
}

func TestUpdatePropertyRequest_Validate(t *testing.T) {
	var empty models.UpdatePropertyRequest
	if err := empty.Validate(); !errors.Is(err, models.ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}

	blank := ""
	assertErrorContains(t, (&models.UpdatePropertyRequest{Title: &blank}).Validate(), "title is required")

	bad := models.ListingType("auction")
	assertErrorContains(t, (&models.UpdatePropertyRequest{ListingType: &bad}).Validate(), "listing_type")

	neg := decimal.NewFromInt(-1)
	assertErrorContains(t, (&models.UpdatePropertyRequest{PriceAZN: &neg}).Validate(), "price_azn")
}

func TestRejectRequest_Validate(t *testing.T) {
	tests := []struct {
		reason  string
		wantErr bool
	}{
		{"too short", true},
		{"          ", true},
		{"  padded  ", true},
		{"not enough", false},
		{"Missing ownership documents", false},
		{"çox qısadı", false},
	}

	for _, tc := range tests {
		r := models.RejectRequest{Reason: tc.reason}
		err := r.Validate()
		if tc.wantErr && !errors.Is(err, models.ErrReasonTooShort) {
			t.Errorf("reason %q: expected ErrReasonTooShort, got %v", tc.reason, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("reason %q: unexpected error %v", tc.reason, err)
		}
	}
}

func TestCreateBookingRequest_Validate(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assertNoError(t, (&models.CreateBookingRequest{CustomerID: "c-1"}).Validate())
	assertNoError(t, (&models.CreateBookingRequest{CustomerID: "c-1", ExpiresAt: &future}).Validate())
	assertErrorContains(t, (&models.CreateBookingRequest{}).Validate(), "customer_id is required")
	assertErrorContains(t, (&models.CreateBookingRequest{CustomerID: "c-1", ExpiresAt: &past}).Validate(), "future")
}

func TestBookingStatus_Terminal(t *testing.T) {
	if models.BookingActive.Terminal() {
		t.Error("ACTIVE must not be terminal")
	}

	for _, s := range []models.BookingStatus{models.BookingExpired, models.BookingConverted, models.BookingCancelled} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}

func TestProperty_Stakeholders(t *testing.T) {
	p := models.Property{CreatedByID: "u1", AgentID: ptr("u2")}
	if got := p.Stakeholders(); len(got) != 2 || got[1] != "u2" {
		t.Errorf("expected [u1 u2], got %v", got)
	}

	p.AgentID = ptr("u1")
	if got := p.Stakeholders(); len(got) != 1 {
		t.Errorf("expected creator only, got %v", got)
	}
}

func TestProperty_Snapshot(t *testing.T) {
	p := models.Property{
		Status:      models.StatusPending,
		Code:        "P-000001",
		ListingType: models.ListingAgencyOwned,
		PriceAZN:    decimal.NewFromInt(150000),
		BuyPriceAZN: decimal.NewNullDecimal(decimal.NewFromInt(100000)),
	}

	snap := p.Snapshot()
	if snap["status"] != "pending" {
		t.Errorf("expected status pending, got %v", snap["status"])
	}
	if snap["buy_price_azn"] != "100000" {
		t.Errorf("expected buy_price_azn 100000, got %v", snap["buy_price_azn"])
	}
	if _, ok := snap["brokerage_commission_percent"]; ok {
		t.Error("commission must be omitted when null")
	}
}

func TestIsDenied(t *testing.T) {
	if _, ok := models.IsDenied(errors.New("boom")); ok {
		t.Error("plain error must not be a denial")
	}

	d, ok := models.IsDenied(&models.DeniedError{Code: models.DenyInvalidStatus, Reason: "x"})
	if !ok || d.Code != models.DenyInvalidStatus {
		t.Errorf("expected INVALID_STATUS denial, got %+v", d)
	}
}
