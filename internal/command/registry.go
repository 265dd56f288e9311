package command

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrInvalidDescriptor = errors.New("invalid command descriptor")

// Registry maps aliases to descriptors. It is built once and read-only after.
type Registry struct {
	ordered []*Descriptor
	byKey   map[string]*Descriptor
	byAlias map[string]*Descriptor
}

// NewRegistry merges overrides into defaults and indexes every alias.
//
// Defaults register in slice order, then overrides that introduce new keys in
// key order. When two commands claim the same alias the later one keeps it.
func NewRegistry(defaults []Descriptor, overrides map[string]Override) (*Registry, error) {
	r := &Registry{
		byKey:   make(map[string]*Descriptor),
		byAlias: make(map[string]*Descriptor),
	}

	for _, d := range defaults {
		d := d
		d.Aliases = slices.Clone(d.Aliases)
		if ov, ok := overrides[d.Key]; ok {
			d = merge(d, ov)
		}
		if err := r.add(&d); err != nil {
			return nil, err
		}
	}

	extra := lo.Filter(lo.Keys(overrides), func(k string, _ int) bool {
		_, exists := r.byKey[k]
		return !exists
	})
	sort.Strings(extra)
	for _, key := range extra {
		d := merge(Descriptor{Key: key, Name: key, Usage: key, Permission: key}, overrides[key])
		if err := r.add(&d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func merge(d Descriptor, ov Override) Descriptor {
	if ov.ReplaceAliases {
		d.Aliases = slices.Clone(ov.Aliases)
	} else {
		d.Aliases = append(d.Aliases, ov.Aliases...)
	}
	if ov.Name != "" {
		d.Name = ov.Name
	}
	if ov.Usage != "" {
		d.Usage = ov.Usage
	}
	if ov.Description != "" {
		d.Description = ov.Description
	}
	if ov.Permission != "" {
		d.Permission = ov.Permission
	}
	return d
}

func (r *Registry) add(d *Descriptor) error {
	if d.Key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidDescriptor)
	}
	if d.Permission == "" {
		d.Permission = d.Key
	}
	d.Aliases = lo.Uniq(lo.FilterMap(d.Aliases, func(a string, _ int) (string, bool) {
		a = strings.ToLower(strings.TrimSpace(a))
		return a, a != ""
	}))
	if len(d.Aliases) == 0 {
		return fmt.Errorf("%w: %q has no aliases", ErrInvalidDescriptor, d.Key)
	}

	for _, alias := range d.Aliases {
		if prev, taken := r.byAlias[alias]; taken && prev.Key != d.Key {
			log.Warn().Str("alias", alias).Str("previous", prev.Key).Str("command", d.Key).
				Msg("command: alias claimed twice, later command wins")
		}
		r.byAlias[alias] = d
	}
	r.byKey[d.Key] = d
	r.ordered = append(r.ordered, d)
	return nil
}

// Resolve finds the command for token, ignoring case.
func (r *Registry) Resolve(token string) (*Descriptor, bool) {
	d, ok := r.byAlias[strings.ToLower(token)]
	return d, ok
}

// Get returns the descriptor registered under key.
func (r *Registry) Get(key string) (*Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// All returns descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	return slices.Clone(r.ordered)
}

// Aliases returns the aliases that still resolve to d. A command that lost an
// alias to a later one no longer lists it.
func (r *Registry) Aliases(d *Descriptor) []string {
	return lo.Filter(d.Aliases, func(a string, _ int) bool {
		return r.byAlias[a] == d
	})
}
