// Package permissions decides whether a user may run a command.
//
// Resolution order: the user's group table, then the global table. A group
// only lists what it overrides; everything else falls through to global, and
// a key missing from both is denied.
package permissions

import (
	"errors"
	"fmt"
	"maps"

	"github.com/rs/zerolog/log"
)

// GlobalScope is reported as the group when the global table decided.
const GlobalScope = "global"

var ErrInvalidTable = errors.New("invalid permission table")

// Table is the full permission configuration.
type Table struct {
	Global map[string]bool            `json:"global"`
	Groups map[string]map[string]bool `json:"groups"`
	Users  map[string]string          `json:"users"`
}

// Defaults is the built-in table: everyone may use the music commands,
// only the admin group may change the bot profile.
func Defaults() Table {
	return Table{
		Global: map[string]bool{
			"summon":      true,
			"disconnect":  true,
			"play":        true,
			"pause":       true,
			"resume":      true,
			"stop":        true,
			"skip":        true,
			"clear":       true,
			"nowplaying":  true,
			"playlist":    true,
			"help":        true,
			"setavatar":   false,
			"setusername": false,
		},
		Groups: map[string]map[string]bool{
			"admin": {
				"setavatar":   true,
				"setusername": true,
			},
		},
		Users: map[string]string{},
	}
}

// Merge overlays override on base and returns a new table. Global keys and
// user assignments are replaced one by one; a group present in both is merged
// key by key so an override never erases keys it does not mention.
func Merge(base, override Table) Table {
	out := Table{
		Global: maps.Clone(base.Global),
		Groups: make(map[string]map[string]bool, len(base.Groups)+len(override.Groups)),
		Users:  maps.Clone(base.Users),
	}
	if out.Global == nil {
		out.Global = map[string]bool{}
	}
	if out.Users == nil {
		out.Users = map[string]string{}
	}
	maps.Copy(out.Global, override.Global)
	maps.Copy(out.Users, override.Users)

	for id, perms := range base.Groups {
		out.Groups[id] = maps.Clone(perms)
	}
	for id, perms := range override.Groups {
		g, ok := out.Groups[id]
		if !ok || g == nil {
			g = map[string]bool{}
			out.Groups[id] = g
		}
		maps.Copy(g, perms)
	}
	return out
}

// Validate rejects tables with empty identifiers.
func (t Table) Validate() error {
	for k := range t.Global {
		if k == "" {
			return fmt.Errorf("%w: empty command key in global", ErrInvalidTable)
		}
	}
	for id, perms := range t.Groups {
		if id == "" {
			return fmt.Errorf("%w: empty group id", ErrInvalidTable)
		}
		for k := range perms {
			if k == "" {
				return fmt.Errorf("%w: empty command key in group %q", ErrInvalidTable, id)
			}
		}
	}
	for user, group := range t.Users {
		if user == "" || group == "" {
			return fmt.Errorf("%w: user %q assigned to group %q", ErrInvalidTable, user, group)
		}
	}
	return nil
}

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	// Group is the group whose table was consulted, or GlobalScope.
	Group string
}

// Resolver answers permission checks against a fixed table. It is safe for
// concurrent use because the table is never mutated after construction.
type Resolver struct {
	table Table
}

func NewResolver(t Table) (*Resolver, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Resolver{table: Merge(Table{}, t)}, nil
}

func (r *Resolver) HasPermission(userID, commandKey string) bool {
	return r.Check(userID, commandKey).Allowed
}

// Check resolves commandKey for userID.
func (r *Resolver) Check(userID, commandKey string) Decision {
	groupID, assigned := r.table.Users[userID]
	if !assigned {
		log.Debug().Str("user", userID).Str("command", commandKey).
			Msg("permissions: no group assigned, using global table")
		return Decision{Allowed: r.table.Global[commandKey], Group: GlobalScope}
	}

	group, known := r.table.Groups[groupID]
	if !known {
		log.Warn().Str("user", userID).Str("group", groupID).Str("command", commandKey).
			Msg("permissions: user assigned to unknown group, using global table")
		return Decision{Allowed: r.table.Global[commandKey], Group: GlobalScope}
	}

	if allowed, ok := group[commandKey]; ok {
		return Decision{Allowed: allowed, Group: groupID}
	}
	return Decision{Allowed: r.table.Global[commandKey], Group: groupID}
}

// Group returns the group assigned to userID, if any.
func (r *Resolver) Group(userID string) (string, bool) {
	g, ok := r.table.Users[userID]
	return g, ok
}
