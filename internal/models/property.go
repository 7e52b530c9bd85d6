// Package models defines data types for the brokerage back-office.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus is the lifecycle field governed by the approval policy.
type PropertyStatus string

// Property statuses.
const (
	StatusPending  PropertyStatus = "pending"
	StatusActive   PropertyStatus = "active"
	StatusSold     PropertyStatus = "sold"
	StatusArchived PropertyStatus = "archived"
	StatusRejected PropertyStatus = "rejected"
)

// Valid reports whether s is one of the five persisted statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSold, StatusArchived, StatusRejected:
		return true
	}

	return false
}

// ListingType says who owns or represents the property.
type ListingType string

// Listing types.
const (
	ListingAgencyOwned ListingType = "agency_owned"
	ListingBranchOwned ListingType = "branch_owned"
	ListingBrokerage   ListingType = "brokerage"
)

// Valid reports whether t is a known listing type.
func (t ListingType) Valid() bool {
	return t == ListingAgencyOwned || t == ListingBranchOwned || t == ListingBrokerage
}

// PropertyCategory classifies the building use.
type PropertyCategory string

// Property categories.
const (
	CategoryResidential PropertyCategory = "residential"
	CategoryCommercial  PropertyCategory = "commercial"
)

// DealCategory is the kind of deal offered.
type DealCategory string

// Deal categories.
const (
	DealSale DealCategory = "sale"
	DealRent DealCategory = "rent"
)

// Field length limits.
const (
	maxTitleLen       = 255
	maxDescriptionLen = 10000
	maxAddressLen     = 500
	maxNameLen        = 100
	maxContactLen     = 255
)

// Property is a listing record.
type Property struct {
	ID                         uuid.UUID           `json:"id"`
	Code                       string              `json:"code"`
	PropertyCategory           PropertyCategory    `json:"property_category"`
	ListingType                ListingType         `json:"listing_type"`
	Category                   DealCategory        `json:"category"`
	Status                     PropertyStatus      `json:"status"`
	Title                      string              `json:"title"`
	Description                *string             `json:"description,omitempty"`
	Address                    string              `json:"address"`
	PriceAZN                   decimal.Decimal     `json:"price_azn"`
	AreaSqm                    decimal.NullDecimal `json:"area_sqm"`
	Rooms                      *int                `json:"rooms,omitempty"`
	OwnerFirstName             *string             `json:"owner_first_name,omitempty"`
	OwnerLastName              *string             `json:"owner_last_name,omitempty"`
	OwnerContact               *string             `json:"owner_contact,omitempty"`
	BrokerageCommissionPercent decimal.NullDecimal `json:"brokerage_commission_percent"`
	BuyPriceAZN                decimal.NullDecimal `json:"buy_price_azn"`
	ApprovalRound              int                 `json:"approval_round"`
	CreatedByID                string              `json:"created_by_id"`
	AgentID                    *string             `json:"agent_id,omitempty"`
	UpdatedBy                  *string             `json:"updated_by,omitempty"`
	CreatedAt                  time.Time           `json:"created_at"`
	UpdatedAt                  time.Time           `json:"updated_at"`
	ArchivedAt                 *time.Time          `json:"archived_at,omitempty"`
	SoldAt                     *time.Time          `json:"sold_at,omitempty"`
}

// Snapshot returns the status plus the fields an auditor needs to
// reconstruct what was approved.
func (p *Property) Snapshot() map[string]any {
	snap := map[string]any{
		"status":         string(p.Status),
		"code":           p.Code,
		"listing_type":   string(p.ListingType),
		"category":       string(p.Category),
		"price_azn":      p.PriceAZN.String(),
		"approval_round": p.ApprovalRound,
	}
	if p.BuyPriceAZN.Valid {
		snap["buy_price_azn"] = p.BuyPriceAZN.Decimal.String()
	}
	if p.BrokerageCommissionPercent.Valid {
		snap["brokerage_commission_percent"] = p.BrokerageCommissionPercent.Decimal.String()
	}
	if p.AgentID != nil {
		snap["agent_id"] = *p.AgentID
	}

	return snap
}

// Stakeholders returns the users who follow this listing (creator and agent).
func (p *Property) Stakeholders() []string {
	ids := []string{p.CreatedByID}
	if p.AgentID != nil && *p.AgentID != "" && *p.AgentID != p.CreatedByID {
		ids = append(ids, *p.AgentID)
	}

	return ids
}

// Editable reports whether draft fields may still be changed.
func (p *Property) Editable() bool {
	return p.Status == StatusPending || p.Status == StatusRejected
}

// listingFields is the subset of columns the listing-type invariant covers.
type listingFields struct {
	listingType    ListingType
	ownerFirstName *string
	ownerLastName  *string
	ownerContact   *string
	commission     decimal.NullDecimal
	buyPrice       decimal.NullDecimal
}

// validate mirrors the properties_listing_type_fields check constraint.
func (f listingFields) validate() error {
	var missing []string

	switch f.listingType {
	case ListingBrokerage:
		if blank(f.ownerFirstName) {
			missing = append(missing, "owner_first_name")
		}
		if blank(f.ownerLastName) {
			missing = append(missing, "owner_last_name")
		}
		if blank(f.ownerContact) {
			missing = append(missing, "owner_contact")
		}
		if !f.commission.Valid {
			missing = append(missing, "brokerage_commission_percent")
		}
	case ListingAgencyOwned, ListingBranchOwned:
		if !f.buyPrice.Valid {
			missing = append(missing, "buy_price_azn")
		}
	default:
		return fmt.Errorf("listing_type must be one of agency_owned, branch_owned, brokerage")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s listing requires %s", ErrListingFields, f.listingType, strings.Join(missing, ", "))
	}

	if f.commission.Valid && (f.commission.Decimal.IsNegative() || f.commission.Decimal.GreaterThan(decimal.NewFromInt(100))) {
		return fmt.Errorf("brokerage_commission_percent must be between 0 and 100")
	}

	if f.buyPrice.Valid && f.buyPrice.Decimal.IsNegative() {
		return fmt.Errorf("buy_price_azn must not be negative")
	}

	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// CreatePropertyRequest is the payload for creating a property in pending.
type CreatePropertyRequest struct {
	Code                       string              `json:"code,omitempty"`
	PropertyCategory           PropertyCategory    `json:"property_category"`
	ListingType                ListingType         `json:"listing_type"`
	Category                   DealCategory        `json:"category"`
	Title                      string              `json:"title"`
	Description                *string             `json:"description,omitempty"`
	Address                    string              `json:"address"`
	PriceAZN                   decimal.Decimal     `json:"price_azn"`
	AreaSqm                    decimal.NullDecimal `json:"area_sqm"`
	Rooms                      *int                `json:"rooms,omitempty"`
	OwnerFirstName             *string             `json:"owner_first_name,omitempty"`
	OwnerLastName              *string             `json:"owner_last_name,omitempty"`
	OwnerContact               *string             `json:"owner_contact,omitempty"`
	BrokerageCommissionPercent decimal.NullDecimal `json:"brokerage_commission_percent"`
	BuyPriceAZN                decimal.NullDecimal `json:"buy_price_azn"`
	AgentID                    *string             `json:"agent_id,omitempty"`
}

// Validate checks required fields, enums and the listing-type invariant.
func (r *CreatePropertyRequest) Validate() error {
	if r.PropertyCategory != CategoryResidential && r.PropertyCategory != CategoryCommercial {
		return fmt.Errorf("property_category must be residential or commercial")
	}

	if r.Category != DealSale && r.Category != DealRent {
		return fmt.Errorf("category must be sale or rent")
	}

	if len(r.Code) > 50 {
		return ErrFieldTooLong("code", 50)
	}

	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}

	if len(r.Title) > maxTitleLen {
		return ErrFieldTooLong("title", maxTitleLen)
	}

	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		return ErrFieldTooLong("description", maxDescriptionLen)
	}

	if strings.TrimSpace(r.Address) == "" {
		return ErrMissingAddress
	}

	if len(r.Address) > maxAddressLen {
		return ErrFieldTooLong("address", maxAddressLen)
	}

	if !r.PriceAZN.IsPositive() {
		return ErrMissingPrice
	}

	if r.Rooms != nil && *r.Rooms < 0 {
		return fmt.Errorf("rooms must not be negative")
	}

	if err := validateOwnerLengths(r.OwnerFirstName, r.OwnerLastName, r.OwnerContact); err != nil {
		return err
	}

	return listingFields{
		listingType:    r.ListingType,
		ownerFirstName: r.OwnerFirstName,
		ownerLastName:  r.OwnerLastName,
		ownerContact:   r.OwnerContact,
		commission:     r.BrokerageCommissionPercent,
		buyPrice:       r.BuyPriceAZN,
	}.validate()
}

func validateOwnerLengths(first, last, contact *string) error {
	if first != nil && len(*first) > maxNameLen {
		return ErrFieldTooLong("owner_first_name", maxNameLen)
	}

	if last != nil && len(*last) > maxNameLen {
		return ErrFieldTooLong("owner_last_name", maxNameLen)
	}

	if contact != nil && len(*contact) > maxContactLen {
		return ErrFieldTooLong("owner_contact", maxContactLen)
	}

	return nil
}

// UpdatePropertyRequest edits draft fields. Status is never part of an edit.
type UpdatePropertyRequest struct {
	ListingType                *ListingType     `json:"listing_type,omitempty"`
	Title                      *string          `json:"title,omitempty"`
	Description                *string          `json:"description,omitempty"`
	Address                    *string          `json:"address,omitempty"`
	PriceAZN                   *decimal.Decimal `json:"price_azn,omitempty"`
	AreaSqm                    *decimal.Decimal `json:"area_sqm,omitempty"`
	Rooms                      *int             `json:"rooms,omitempty"`
	OwnerFirstName             *string          `json:"owner_first_name,omitempty"`
	OwnerLastName              *string          `json:"owner_last_name,omitempty"`
	OwnerContact               *string          `json:"owner_contact,omitempty"`
	BrokerageCommissionPercent *decimal.Decimal `json:"brokerage_commission_percent,omitempty"`
	BuyPriceAZN                *decimal.Decimal `json:"buy_price_azn,omitempty"`
	AgentID                    *string          `json:"agent_id,omitempty"`
}

// Validate checks the individual fields of an update.
func (r *UpdatePropertyRequest) Validate() error {
	if r.isEmpty() {
		return ErrEmptyUpdate
	}

	if r.ListingType != nil && !r.ListingType.Valid() {
		return fmt.Errorf("listing_type must be one of agency_owned, branch_owned, brokerage")
	}

	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			return ErrMissingTitle
		}
		if len(*r.Title) > maxTitleLen {
			return ErrFieldTooLong("title", maxTitleLen)
		}
	}

	if r.Description != nil && len(*r.Description) > maxDescriptionLen {
		return ErrFieldTooLong("description", maxDescriptionLen)
	}

	if r.Address != nil {
		if strings.TrimSpace(*r.Address) == "" {
			return ErrMissingAddress
		}
		if len(*r.Address) > maxAddressLen {
			return ErrFieldTooLong("address", maxAddressLen)
		}
	}

	if r.PriceAZN != nil && !r.PriceAZN.IsPositive() {
		return ErrMissingPrice
	}

	if r.Rooms != nil && *r.Rooms < 0 {
		return fmt.Errorf("rooms must not be negative")
	}

	return validateOwnerLengths(r.OwnerFirstName, r.OwnerLastName, r.OwnerContact)
}

func (r *UpdatePropertyRequest) isEmpty() bool {
	return r.ListingType == nil && r.Title == nil && r.Description == nil && r.Address == nil &&
		r.PriceAZN == nil && r.AreaSqm == nil && r.Rooms == nil && r.OwnerFirstName == nil &&
		r.OwnerLastName == nil && r.OwnerContact == nil && r.BrokerageCommissionPercent == nil &&
		r.BuyPriceAZN == nil && r.AgentID == nil
}

// ValidateMerged checks the listing-type invariant on the record that would
// result from applying r to p.
func (r *UpdatePropertyRequest) ValidateMerged(p *Property) error {
	f := listingFields{
		listingType:    p.ListingType,
		ownerFirstName: p.OwnerFirstName,
		ownerLastName:  p.OwnerLastName,
		ownerContact:   p.OwnerContact,
		commission:     p.BrokerageCommissionPercent,
		buyPrice:       p.BuyPriceAZN,
	}

	if r.ListingType != nil {
		f.listingType = *r.ListingType
	}
	if r.OwnerFirstName != nil {
		f.ownerFirstName = r.OwnerFirstName
	}
	if r.OwnerLastName != nil {
		f.ownerLastName = r.OwnerLastName
	}
	if r.OwnerContact != nil {
		f.ownerContact = r.OwnerContact
	}
	if r.BrokerageCommissionPercent != nil {
		f.commission = decimal.NewNullDecimal(*r.BrokerageCommissionPercent)
	}
	if r.BuyPriceAZN != nil {
		f.buyPrice = decimal.NewNullDecimal(*r.BuyPriceAZN)
	}

	return f.validate()
}

// PropertyListOpts holds filters for listing properties.
type PropertyListOpts struct {
	Status      PropertyStatus
	ListingType ListingType
	Limit       int
	Offset      int
}

// PendingApproval is a pending property together with the step awaiting action.
type PendingApproval struct {
	Property
	CurrentStep *string `json:"current_step,omitempty"`
	StepRole    *string `json:"step_role,omitempty"`
}
