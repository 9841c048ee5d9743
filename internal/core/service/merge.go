package service

import (
	"fmt"

	"github.com/cardigital/user-service/internal/core/domain"
)

// MergeProfile applies patch onto a copy of existing. A field is written only
// when the patch carries it and it differs from the stored value. The input
// record is never modified.
func MergeProfile(existing *domain.User, patch domain.UserPatch) (*domain.User, bool) {
	merged := *existing
	changed := false

	if patch.FirstName != nil && *patch.FirstName != merged.FirstName {
		merged.FirstName = *patch.FirstName
		changed = true
	}
	if patch.LastName != nil && *patch.LastName != merged.LastName {
		merged.LastName = *patch.LastName
		changed = true
	}
	if patch.BirthDate != nil && !patch.BirthDate.Equal(merged.BirthDate) {
		merged.BirthDate = *patch.BirthDate
		changed = true
	}
	if patch.PhoneNumber != nil && *patch.PhoneNumber != merged.PhoneNumber {
		merged.PhoneNumber = *patch.PhoneNumber
		changed = true
	}
	if patch.Email != nil && *patch.Email != merged.Email {
		merged.Email = *patch.Email
		changed = true
	}

	return &merged, changed
}

// checkPatch rejects explicit empty values. Every mergeable column is
// non-nullable, so "" cannot mean "clear".
func checkPatch(patch domain.UserPatch) error {
	fields := []struct {
		name  string
		value *string
	}{
		{"firstName", patch.FirstName},
		{"lastName", patch.LastName},
		{"phoneNumber", patch.PhoneNumber},
		{"email", patch.Email},
	}
	for _, f := range fields {
		if f.value != nil && *f.value == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidRequest, f.name)
		}
	}
	if patch.BirthDate != nil && patch.BirthDate.IsZero() {
		return fmt.Errorf("%w: birthDate must not be empty", domain.ErrInvalidRequest)
	}
	return nil
}
