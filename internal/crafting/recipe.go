package crafting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResultType says whether a recipe produces an item instance or a
// stack of material.
type ResultType string

const (
	ResultItem     ResultType = "item"
	ResultMaterial ResultType = "material"
)

// Recipe is a crafting recipe definition.
type Recipe struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	ResultID      string         `json:"result"`
	ResultType    ResultType     `json:"resultType"`
	Materials     map[string]int `json:"materials"`
	RequiredLevel int            `json:"requiredLevel"`
}

// RecipeRegistry manages all crafting recipes
type RecipeRegistry struct {
	recipes map[string]*Recipe
}

// NewRecipeRegistry creates an empty recipe registry
func NewRecipeRegistry() *RecipeRegistry {
	return &RecipeRegistry{recipes: make(map[string]*Recipe)}
}

// Add inserts a recipe.
func (r *RecipeRegistry) Add(recipe *Recipe) {
	r.recipes[recipe.ID] = recipe
}

// GetRecipe returns a recipe by ID
func (r *RecipeRegistry) GetRecipe(id string) (*Recipe, bool) {
	recipe, ok := r.recipes[id]
	return recipe, ok
}

// Count returns the number of loaded recipes.
func (r *RecipeRegistry) Count() int {
	return len(r.recipes)
}

// All returns every recipe sorted by required level then name.
func (r *RecipeRegistry) All() []*Recipe {
	recipes := make([]*Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		recipes = append(recipes, recipe)
	}
	sort.Slice(recipes, func(i, j int) bool {
		if recipes[i].RequiredLevel != recipes[j].RequiredLevel {
			return recipes[i].RequiredLevel < recipes[j].RequiredLevel
		}
		return recipes[i].Name < recipes[j].Name
	})
	return recipes
}

// LoadRecipesFromDir loads every recipe file in a directory.
func LoadRecipesFromDir(dir string) (*RecipeRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes directory: %w", err)
	}

	registry := NewRecipeRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read recipe file %s: %w", path, err)
		}

		var recipe Recipe
		if err := json.Unmarshal(data, &recipe); err != nil {
			return nil, fmt.Errorf("failed to parse recipe file %s: %w", path, err)
		}

		stem := strings.TrimSuffix(entry.Name(), ".json")
		if recipe.ID != stem {
			return nil, fmt.Errorf("recipe file %s declares id %q, want %q", path, recipe.ID, stem)
		}
		if recipe.ResultType != ResultItem && recipe.ResultType != ResultMaterial {
			return nil, fmt.Errorf("recipe %q has invalid resultType %q", recipe.ID, recipe.ResultType)
		}
		if len(recipe.Materials) == 0 {
			return nil, fmt.Errorf("recipe %q has no materials", recipe.ID)
		}
		registry.Add(&recipe)
	}

	return registry, nil
}
