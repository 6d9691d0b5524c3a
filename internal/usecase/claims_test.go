package usecase

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
)

func TestClaimsAugmenter_AddsMissingWithoutDuplicates(t *testing.T) {
	d := newStorefrontRBAC()
	augmenter := NewClaimsAugmenter(identityFake{d}, permissionRepoFake{d})

	claims, err := augmenter.Augment(context.Background(), "u-admin", []string{domain.PermissionChat, "Custom", "Custom"})
	if err != nil {
		t.Fatalf("Augment returned error: %v", err)
	}

	got := append([]string(nil), claims...)
	sort.Strings(got)
	want := []string{domain.PermissionAddProduct, domain.PermissionChat, "Custom"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestClaimsAugmenter_IsIdempotent(t *testing.T) {
	d := newStorefrontRBAC()
	augmenter := NewClaimsAugmenter(identityFake{d}, permissionRepoFake{d})
	ctx := context.Background()

	first, err := augmenter.Augment(ctx, "u-admin", nil)
	if err != nil {
		t.Fatalf("Augment returned error: %v", err)
	}
	second, err := augmenter.Augment(ctx, "u-admin", first)
	if err != nil {
		t.Fatalf("Augment returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical claim sets, got %v and %v", first, second)
	}
}

func TestClaimsAugmenter_ZeroRolesYieldsNoClaims(t *testing.T) {
	d := newStorefrontRBAC()
	augmenter := NewClaimsAugmenter(identityFake{d}, permissionRepoFake{d})

	claims, err := augmenter.Augment(context.Background(), "u-none", []string{domain.PermissionChat})
	if err != nil {
		t.Fatalf("Augment returned error: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected no claims for a role-less user, got %v", claims)
	}
}
