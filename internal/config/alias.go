package config

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/tabsync/tabsync/internal/config/data"
	"github.com/tabsync/tabsync/internal/dao"
	"github.com/tabsync/tabsync/internal/model1"
)

// Aliases maps short table names to table references in the form source/id.
type Aliases struct {
	Alias map[string]string `yaml:"aliases"`
	mx    sync.RWMutex      `yaml:"-"`
}

// NewAliases creates an empty Aliases.
func NewAliases() *Aliases {
	return &Aliases{
		Alias: make(map[string]string),
	}
}

// Load loads aliases from the default config file.
func (a *Aliases) Load() error {
	return a.LoadFrom(AppAliasesFile)
}

// LoadFrom loads aliases from a specific file path.
// Loaded aliases take precedence over existing ones.
func (a *Aliases) LoadFrom(path string) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	loaded := NewAliases()
	err := data.ReadYAML(path, loaded)
	if errors.Is(err, data.ErrNoFile) {
		return nil
	}
	if err != nil {
		return err
	}
	for k, v := range loaded.Alias {
		if _, err := dao.ParseTableRef(v); err != nil {
			return fmt.Errorf("alias %q: %w", k, err)
		}
		a.Alias[k] = v
	}

	return nil
}

// Save saves aliases to the default config file.
func (a *Aliases) Save() error {
	return a.SaveTo(AppAliasesFile)
}

// SaveTo saves aliases to a specific file path.
func (a *Aliases) SaveTo(path string) error {
	a.mx.RLock()
	defer a.mx.RUnlock()

	return data.WriteYAML(path, a)
}

// Get returns the table reference for an alias, or the original if not found.
func (a *Aliases) Get(alias string) string {
	a.mx.RLock()
	defer a.mx.RUnlock()

	if ref, ok := a.Alias[alias]; ok {
		return ref
	}
	return alias
}

// Resolve turns an alias or a literal source/id into a table reference.
func (a *Aliases) Resolve(name string) (dao.TableRef, error) {
	return dao.ParseTableRef(a.Get(name))
}

// Set sets an alias after checking it names a table.
func (a *Aliases) Set(alias, ref string) error {
	if _, err := dao.ParseTableRef(ref); err != nil {
		return err
	}

	a.mx.Lock()
	defer a.mx.Unlock()

	a.Alias[alias] = ref
	return nil
}

// Delete removes an alias.
func (a *Aliases) Delete(alias string) {
	a.mx.Lock()
	defer a.mx.Unlock()

	delete(a.Alias, alias)
}

// Names returns the alias names in natural order.
func (a *Aliases) Names() []string {
	a.mx.RLock()
	defer a.mx.RUnlock()

	nn := make([]string, 0, len(a.Alias))
	for k := range a.Alias {
		nn = append(nn, k)
	}
	model1.SortNatural(nn)

	return nn
}

// All returns a copy of all aliases.
func (a *Aliases) All() map[string]string {
	a.mx.RLock()
	defer a.mx.RUnlock()

	return maps.Clone(a.Alias)
}
