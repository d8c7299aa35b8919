// Package addresses manages the user's saved delivery addresses.
//
// Addresses are identified purely by list position. Deleting shifts every
// later entry down by one, so callers holding indices must re-resolve them
// after any deletion.
package addresses

import (
	"regexp"
	"strings"

	"github.com/lunaredge/storefront/internal/app/domain/profile"
	"github.com/lunaredge/storefront/internal/app/state"
	"github.com/lunaredge/storefront/pkg/logger"
)

// Well-known address types. Any other non-empty value is a custom label.
const (
	TypeHome = "Home"
	TypeWork = "Work"
)

var pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Service provides CRUD over the active user's address list.
type Service struct {
	state state.ProfileState
	log   *logger.Logger
}

// New constructs an address book service.
func New(st state.ProfileState, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("addresses")
	}
	return &Service{state: st, log: log}
}

// List returns the ordered address sequence.
func (s *Service) List() []profile.Address {
	return s.state.Addresses()
}

// Add validates and appends an address, returning its index.
func (s *Service) Add(addr profile.Address) (int, error) {
	cleaned, err := validate(addr)
	if err != nil {
		return 0, err
	}

	addrs := s.state.Addresses()
	addrs = append(addrs, cleaned)
	s.state.ReplaceAddresses(addrs)

	index := len(addrs) - 1
	s.log.WithField("index", index).WithField("type", cleaned.Type).Info("address added")
	return index, nil
}

// Update validates and replaces the address at index in place.
func (s *Service) Update(index int, addr profile.Address) error {
	cleaned, err := validate(addr)
	if err != nil {
		return err
	}

	addrs := s.state.Addresses()
	if index < 0 || index >= len(addrs) {
		return &profile.IndexOutOfRangeError{Index: index, Size: len(addrs)}
	}
	addrs[index] = cleaned
	s.state.ReplaceAddresses(addrs)

	s.log.WithField("index", index).Info("address updated")
	return nil
}

// Delete removes the address at index. Later entries shift down by one.
func (s *Service) Delete(index int) error {
	addrs := s.state.Addresses()
	if index < 0 || index >= len(addrs) {
		return &profile.IndexOutOfRangeError{Index: index, Size: len(addrs)}
	}
	addrs = append(addrs[:index], addrs[index+1:]...)
	s.state.ReplaceAddresses(addrs)

	s.log.WithField("index", index).Info("address deleted")
	return nil
}

// Get resolves the address at index.
func (s *Service) Get(index int) (profile.Address, error) {
	addrs := s.state.Addresses()
	if index < 0 || index >= len(addrs) {
		return profile.Address{}, &profile.IndexOutOfRangeError{Index: index, Size: len(addrs)}
	}
	return addrs[index], nil
}

// validate trims the address and checks required fields: line1, city, state
// and a six-digit numeric pincode. The type must be Home, Work or a custom
// label; the bare "Other" placeholder is rejected because it means the user
// never supplied the label.
func validate(addr profile.Address) (profile.Address, error) {
	addr.Type = strings.TrimSpace(addr.Type)
	addr.Line1 = strings.TrimSpace(addr.Line1)
	addr.Line2 = strings.TrimSpace(addr.Line2)
	addr.Landmark = strings.TrimSpace(addr.Landmark)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.TrimSpace(addr.State)
	addr.County = strings.TrimSpace(addr.County)
	addr.Pincode = strings.TrimSpace(addr.Pincode)

	var fields []string
	if addr.Type == "" || strings.EqualFold(addr.Type, "Other") {
		fields = append(fields, "type")
	}
	if addr.Line1 == "" {
		fields = append(fields, "line1")
	}
	if addr.City == "" {
		fields = append(fields, "city")
	}
	if addr.State == "" {
		fields = append(fields, "state")
	}
	if !pincodePattern.MatchString(addr.Pincode) {
		fields = append(fields, "pincode")
	}
	if len(fields) > 0 {
		return profile.Address{}, &profile.ValidationError{Fields: fields}
	}
	return addr, nil
}
