package catalog

import "testing"

func TestWeightFallbacks(t *testing.T) {
	if got := Weight(CategoryDev, RoleCS); got != 1.2 {
		t.Fatalf("Weight(DEV, CS): want 1.2, got %v", got)
	}
	// Unknown role falls back to the GENERAL column.
	if got := Weight(CategoryDev, "ASTRONAUT"); got != 0.8 {
		t.Fatalf("Weight(DEV, unknown role): want 0.8, got %v", got)
	}
	// Unknown category weighs zero for every role.
	if got := Weight("NOPE", RoleCS); got != 0 {
		t.Fatalf("Weight(unknown category): want 0, got %v", got)
	}
}

func TestPositiveCategoriesPersonaRelative(t *testing.T) {
	has := func(cats []string, c string) bool {
		for _, x := range cats {
			if x == c {
				return true
			}
		}
		return false
	}

	cs := PositiveCategories(RoleCS)
	if !has(cs, CategoryCP) {
		t.Fatalf("CP should be positive for CS, got %v", cs)
	}
	if has(cs, CategorySoc) || has(cs, CategoryUncat) {
		t.Fatalf("SOC/UNCAT should not be positive for CS, got %v", cs)
	}

	// CP is negative for DESIGN but positive for CS.
	design := PositiveCategories(RoleDesign)
	if has(design, CategoryCP) {
		t.Fatalf("CP should not be positive for DESIGN, got %v", design)
	}
}

func TestParseRole(t *testing.T) {
	if got := ParseRole("BUSINESS"); got != RoleBusiness {
		t.Fatalf("ParseRole(BUSINESS): got %q", got)
	}
	if got := ParseRole(""); got != RoleGeneral {
		t.Fatalf("ParseRole empty: want GENERAL, got %q", got)
	}
	if got := ParseRole("nope"); got != RoleGeneral {
		t.Fatalf("ParseRole unknown: want GENERAL, got %q", got)
	}
}

func TestQuickCategory(t *testing.T) {
	if got := QuickCategory("github.com"); got != CategoryDev {
		t.Fatalf("QuickCategory(github.com): got %q", got)
	}
	if got := QuickCategory("example.invalid"); got != CategoryUnknown {
		t.Fatalf("QuickCategory(unknown): want UNKNOWN, got %q", got)
	}
}
