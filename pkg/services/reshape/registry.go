package reshape

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrUnknownRecipe = errors.New("recipe not registered")

// Registry maps source template names to their recipes.
type Registry interface {
	// Register adds a recipe under its name
	Register(recipe Recipe) error
	// Get returns the recipe registered under name
	Get(name string) (Recipe, error)
	// List returns the registered recipe names, sorted
	List() []string
}

type registry struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
}

// NewRegistry creates an empty recipe registry
func NewRegistry() Registry {
	return &registry{
		recipes: make(map[string]Recipe),
	}
}

func (r *registry) Register(recipe Recipe) error {
	if recipe.Name == "" {
		return fmt.Errorf("recipe name cannot be empty")
	}
	if recipe.Load == nil {
		return fmt.Errorf("recipe %q has no sheet loader", recipe.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recipes[recipe.Name]; exists {
		return fmt.Errorf("recipe %q is already registered", recipe.Name)
	}

	r.recipes[recipe.Name] = recipe
	return nil
}

func (r *registry) Get(name string) (Recipe, error) {
	r.mu.RLock()
	recipe, exists := r.recipes[name]
	r.mu.RUnlock()

	if !exists {
		return Recipe{}, fmt.Errorf("%w: %q", ErrUnknownRecipe, name)
	}
	return recipe, nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.recipes))
	for name := range r.recipes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
