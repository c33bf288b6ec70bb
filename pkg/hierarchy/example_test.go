package hierarchy_test

import (
	"fmt"

	"github.com/matzehuels/capmap/pkg/hierarchy"
)

func ExampleBuilder() {
	b := hierarchy.NewBuilder()
	_ = b.Add("Customer Travel Experience", "Check-In", "Boarding")
	_ = b.Add("Check-In", "Luggage Acceptance")
	_ = b.Add("Boarding")
	_ = b.Add("Luggage Acceptance")

	h, err := b.Build()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	root, _ := h.Root()
	fmt.Println("root:", root)
	for _, id := range h.Keys() {
		level, _ := h.LevelOf(id)
		rank, _ := h.RankOf(id)
		fmt.Printf("%-28s level=%d rank=%d\n", id, level, rank)
	}
	// Output:
	// root: Customer Travel Experience
	// Customer Travel Experience   level=0 rank=0
	// Check-In                     level=1 rank=0
	// Boarding                     level=1 rank=1
	// Luggage Acceptance           level=2 rank=0
}

func ExampleHierarchy_Validate() {
	h, _ := hierarchy.FromEntries([]hierarchy.Entry{
		{ID: "a"},
		{ID: "b"},
	})
	fmt.Println(h.Validate())
	// Output:
	// MALFORMED_HIERARCHY: 2 roots ("a", "b", ...): exactly one is required
}
