// Package access resolves an authenticated username into an authorization
// scope: either unrestricted (admin) or a finite set of permitted UO codes.
package access

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wildcard marks an unrestricted (admin) entry in a mapping.
const Wildcard = "*"

// ErrNoUnits rejects users that authenticated but have no authorized UO.
// There is no default-allow: such a user is blocked entirely.
var ErrNoUnits = errors.New("user has no authorized UO")

// ErrUnknownUser rejects usernames absent from every mapping source.
var ErrUnknownUser = errors.New("user not present in any access mapping")

// Scope is the resolved visibility of one user. AllowedUnits is nil when
// Admin is set, meaning unrestricted.
type Scope struct {
	Username     string
	Admin        bool
	AllowedUnits []int
}

// Allows reports whether the scope permits the given UO code.
func (s Scope) Allows(unit int) bool {
	if s.Admin {
		return true
	}
	for _, u := range s.AllowedUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// PinWorkingUnit validates the unit a multi-UO user picked for writes. The
// choice must be re-validated here on every write path; client input is not
// trusted to stay inside the permitted set.
func (s Scope) PinWorkingUnit(unit int) error {
	if s.Admin {
		return nil
	}
	if !s.Allows(unit) {
		return fmt.Errorf("UO %d is not in the authorized set for user %s", unit, s.Username)
	}
	return nil
}

// SingleUnit returns the only permitted unit, when there is exactly one. Such
// users get their working unit pinned automatically.
func (s Scope) SingleUnit() (int, bool) {
	if s.Admin || len(s.AllowedUnits) != 1 {
		return 0, false
	}
	return s.AllowedUnits[0], true
}

// Resolver maps usernames to scopes. The inline mapping (from secrets) takes
// priority; the external YAML file is consulted only when the inline mapping
// yields nothing for that user.
type Resolver struct {
	inline   map[string][]string
	filePath string
}

func NewResolver(inline map[string][]string, filePath string) *Resolver {
	return &Resolver{inline: inline, filePath: filePath}
}

// ParseInlineMapping parses the secrets-supplied mapping, formatted as
// "alice:*;bob:1251,1301". Unit lists are raw tokens; validation happens at
// resolve time so one malformed entry does not block other users.
func ParseInlineMapping(raw string) map[string][]string {
	out := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		user, list, found := strings.Cut(entry, ":")
		if !found {
			continue
		}
		var units []string
		for _, tok := range strings.Split(list, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				units = append(units, tok)
			}
		}
		out[strings.TrimSpace(user)] = units
	}
	return out
}

// accessFile mirrors the external declarative mapping:
//
//	users:
//	  fulano:
//	    allowed_uos: [1251, 1301]
type accessFile struct {
	Users map[string]struct {
		AllowedUOs []string `yaml:"allowed_uos"`
	} `yaml:"users"`
}

func (r *Resolver) fromFile(username string) ([]string, error) {
	if r.filePath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading access file %s: %w", r.filePath, err)
	}
	var f accessFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing access file %s: %w", r.filePath, err)
	}
	if u, ok := f.Users[username]; ok {
		return u.AllowedUOs, nil
	}
	return nil, nil
}

// Resolve looks the user up in the inline mapping first, then in the external
// file. A single-element wildcard list means admin. Zero permitted units is a
// fatal authorization error.
func (r *Resolver) Resolve(username string) (Scope, error) {
	tokens, found := r.inline[username]
	if !found || len(tokens) == 0 {
		fileTokens, err := r.fromFile(username)
		if err != nil {
			return Scope{}, err
		}
		if fileTokens != nil {
			tokens, found = fileTokens, true
		}
	}
	if !found {
		return Scope{}, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}

	if len(tokens) == 1 && tokens[0] == Wildcard {
		return Scope{Username: username, Admin: true}, nil
	}

	units := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		u, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return Scope{}, fmt.Errorf("invalid UO code %q for user %s", tok, username)
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		return Scope{}, fmt.Errorf("%w: %s", ErrNoUnits, username)
	}
	sort.Ints(units)
	return Scope{Username: username, AllowedUnits: units}, nil
}
