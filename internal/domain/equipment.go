// Package domain contains core business types and interfaces.
//
// This file defines tracked equipment and the certificates (documents)
// that expire against it.
package domain

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Equipment Category
// =============================================================================

// EquipmentCategory selects the checklist template used for an asset.
type EquipmentCategory string

const (
	EquipmentCategoryHeavyMachinery   EquipmentCategory = "heavy-machinery"
	EquipmentCategoryVehicle          EquipmentCategory = "vehicle"
	EquipmentCategoryPowerTool        EquipmentCategory = "power-tool"
	EquipmentCategoryLiftingAccessory EquipmentCategory = "lifting-accessory"
)

// String returns the string representation of the category.
func (c EquipmentCategory) String() string {
	return string(c)
}

// IsValid returns true if the category is a recognized value.
func (c EquipmentCategory) IsValid() bool {
	switch c {
	case EquipmentCategoryHeavyMachinery, EquipmentCategoryVehicle,
		EquipmentCategoryPowerTool, EquipmentCategoryLiftingAccessory:
		return true
	}
	return false
}

// Equipment is a tracked physical asset. Every inspection, work order,
// defect and certificate belongs to exactly one piece of equipment.
type Equipment struct {
	ID           uuid.UUID
	Name         string
	Category     EquipmentCategory
	SerialNumber string
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Certificate is a dated document (thorough examination, calibration,
// registration) that must be renewed before it expires.
type Certificate struct {
	ID          uuid.UUID
	EquipmentID uuid.UUID
	Name        string
	IssuedDate  time.Time
	ExpiryDate  time.Time
	CreatedAt   time.Time
}

// IsExpired returns true when the certificate's expiry is today or earlier.
func (c *Certificate) IsExpired(now time.Time) bool {
	return ClassifyDate(c.ExpiryDate, now) == UrgencyExpired
}

// Obligation returns the certificate as a dated obligation.
func (c *Certificate) Obligation() Obligation {
	return Obligation{Kind: ObligationCertificate, Label: c.Name, DueDate: c.ExpiryDate}
}

// CurrentCertificates keeps the certificate with the latest expiry for each
// name, so a renewal replaces the document it renews. Names are compared
// case-insensitively after trimming. Ties on expiry go to the later issue
// date. The result keeps the input order of the kept certificates.
func CurrentCertificates(certs []Certificate) []Certificate {
	latest := make(map[string]int, len(certs))
	for i := range certs {
		key := strings.ToLower(strings.TrimSpace(certs[i].Name))
		j, seen := latest[key]
		if !seen || supersedes(&certs[i], &certs[j]) {
			latest[key] = i
		}
	}

	current := make([]Certificate, 0, len(latest))
	for i := range certs {
		if latest[strings.ToLower(strings.TrimSpace(certs[i].Name))] == i {
			current = append(current, certs[i])
		}
	}
	return current
}

func supersedes(a, b *Certificate) bool {
	if !a.ExpiryDate.Equal(b.ExpiryDate) {
		return a.ExpiryDate.After(b.ExpiryDate)
	}
	return a.IssuedDate.After(b.IssuedDate)
}

// =============================================================================
// Equipment Service Parameters
// =============================================================================

// CreateEquipmentParams contains validated parameters for registering equipment.
type CreateEquipmentParams struct {
	Name         string
	Category     EquipmentCategory
	SerialNumber string
	Location     string
}

// AddCertificateParams contains validated parameters for adding a certificate.
type AddCertificateParams struct {
	EquipmentID uuid.UUID
	Name        string
	IssuedDate  time.Time
	ExpiryDate  time.Time
}

// ListParams contains pagination parameters.
type ListParams struct {
	Limit  int32
	Offset int32
}

// ListEquipmentResult contains a page of equipment.
type ListEquipmentResult struct {
	Equipment []Equipment
	Total     int64
	Limit     int32
	Offset    int32
}

// =============================================================================
// Null Helpers
// =============================================================================

// NullStringValue returns the string value or empty string if null.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// ToNullString converts a string to sql.NullString (empty string = null).
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ToNullUUID converts a *uuid.UUID to uuid.NullUUID.
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// NullUUIDPtr converts a uuid.NullUUID to a *uuid.UUID.
func NullUUIDPtr(nu uuid.NullUUID) *uuid.UUID {
	if !nu.Valid {
		return nil
	}
	id := nu.UUID
	return &id
}

// ToNullTime converts a *time.Time to sql.NullTime.
func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// NullTimePtr converts a sql.NullTime to a *time.Time.
func NullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
