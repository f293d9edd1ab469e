// Package entity holds the directory record types. Each type reports its own
// problems and the JSON fields a PUT may change.
package entity

import "strings"

type Shelter struct {
	ID               string   `json:"id"`
	ShelterName      string   `json:"shelterName"`
	ShelterInfo      string   `json:"shelterInfo"`
	ShelterBedAmount int      `json:"shelterBedAmount"`
	UserLoggedIn     []string `json:"userLoggedIn"`
}

func (s *Shelter) Problems() []string {
	var p []string
	if blank(s.ShelterName) {
		p = append(p, "shelterName is required")
	}
	if blank(s.ShelterInfo) {
		p = append(p, "shelterInfo is required")
	}
	if s.ShelterBedAmount < 0 {
		p = append(p, "shelterBedAmount must be >= 0")
	}
	return p
}

func (*Shelter) MutableFields() []string {
	return []string{"shelterName", "shelterInfo", "shelterBedAmount", "userLoggedIn"}
}

type Service struct {
	ID                 string `json:"id"`
	ServiceName        string `json:"serviceName"`
	ServiceDescription string `json:"serviceDescription"`
}

func (s *Service) Problems() []string {
	var p []string
	if blank(s.ServiceName) {
		p = append(p, "serviceName is required")
	}
	if blank(s.ServiceDescription) {
		p = append(p, "serviceDescription is required")
	}
	return p
}

func (*Service) MutableFields() []string {
	return []string{"serviceName", "serviceDescription"}
}

// BedAmount records a change to a shelter's bed count and who made it.
// The counts are pointers so a missing value can be told apart from zero.
type BedAmount struct {
	ID                string `json:"id"`
	BedListingAmount  *int   `json:"bedListingAmount"`
	UpdatedBedAmount  *int   `json:"updatedBedAmount"`
	UpdatingUserID    string `json:"updatingUserId"`
	UpdatingShelterID string `json:"updatingShelterId"`
	UpdatingServiceID string `json:"updatingServiceId"`
}

func (b *BedAmount) Problems() []string {
	var p []string
	switch {
	case b.BedListingAmount == nil:
		p = append(p, "bedListingAmount is required")
	case *b.BedListingAmount < 0:
		p = append(p, "bedListingAmount must be >= 0")
	}
	switch {
	case b.UpdatedBedAmount == nil:
		p = append(p, "updatedBedAmount is required")
	case *b.UpdatedBedAmount < 0:
		p = append(p, "updatedBedAmount must be >= 0")
	}
	if blank(b.UpdatingUserID) {
		p = append(p, "updatingUserId is required")
	}
	if blank(b.UpdatingShelterID) {
		p = append(p, "updatingShelterId is required")
	}
	if blank(b.UpdatingServiceID) {
		p = append(p, "updatingServiceId is required")
	}
	return p
}

func (*BedAmount) MutableFields() []string {
	return []string{"bedListingAmount", "updatedBedAmount", "updatingUserId", "updatingShelterId", "updatingServiceId"}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
