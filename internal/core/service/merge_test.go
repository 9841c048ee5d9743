package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/cardigital/user-service/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func sampleUser() *domain.User {
	return &domain.User{
		ID:          1,
		Username:    "alice",
		FirstName:   "Alice",
		LastName:    "Lee",
		PhoneNumber: "555-1",
		Email:       "a@x.com",
		BirthDate:   time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Enabled:     true,
		Role:        domain.RoleUser,
	}
}

func TestMergeProfile_EmptyPatchIsNoop(t *testing.T) {
	existing := sampleUser()

	merged, changed := MergeProfile(existing, domain.UserPatch{})
	if changed {
		t.Fatal("empty patch reported a change")
	}
	if !reflect.DeepEqual(merged, existing) {
		t.Fatalf("record changed:\n got %+v\nwant %+v", merged, existing)
	}
}

func TestMergeProfile_AppliesPresentFieldsOnly(t *testing.T) {
	existing := sampleUser()
	birth := time.Date(1991, 2, 3, 0, 0, 0, 0, time.UTC)

	merged, changed := MergeProfile(existing, domain.UserPatch{
		LastName:  strPtr("Park"),
		BirthDate: &birth,
	})
	if !changed {
		t.Fatal("expected change")
	}
	if merged.LastName != "Park" || !merged.BirthDate.Equal(birth) {
		t.Fatalf("patch not applied: %+v", merged)
	}
	if merged.FirstName != "Alice" || merged.Email != "a@x.com" || merged.PhoneNumber != "555-1" {
		t.Fatalf("absent fields were touched: %+v", merged)
	}
	if existing.LastName != "Lee" {
		t.Fatal("input record was mutated")
	}
}

func TestMergeProfile_SameValuesAreNoop(t *testing.T) {
	existing := sampleUser()
	birth := existing.BirthDate

	_, changed := MergeProfile(existing, domain.UserPatch{
		FirstName:   strPtr("Alice"),
		LastName:    strPtr("Lee"),
		BirthDate:   &birth,
		PhoneNumber: strPtr("555-1"),
		Email:       strPtr("a@x.com"),
	})
	if changed {
		t.Fatal("re-submitting current values reported a change")
	}
}

func TestCheckPatch_RejectsEmptyStrings(t *testing.T) {
	if err := checkPatch(domain.UserPatch{Email: strPtr("")}); err == nil {
		t.Fatal("expected error for empty email")
	}
	zero := time.Time{}
	if err := checkPatch(domain.UserPatch{BirthDate: &zero}); err == nil {
		t.Fatal("expected error for zero birth date")
	}
	if err := checkPatch(domain.UserPatch{FirstName: strPtr("Al")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
