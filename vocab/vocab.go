// Package vocab holds the controlled vocabularies (locations, intensities,
// roles) shared by request validation on the server and pickers on the client.
package vocab

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var raw []byte

type document struct {
	Locations   []string `yaml:"locations"`
	Intensities []string `yaml:"intensities"`
	Roles       []string `yaml:"roles"`
}

// Set is an ordered vocabulary with O(1) membership checks.
type Set struct {
	values []string
	index  map[string]struct{}
}

func newSet(values []string) Set {
	s := Set{values: append([]string(nil), values...), index: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.index[v] = struct{}{}
	}
	return s
}

// Contains reports whether v is a member of the set. Matching is exact.
func (s Set) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns a copy of the members in declaration order.
func (s Set) Values() []string {
	return append([]string(nil), s.values...)
}

// Len returns the number of members.
func (s Set) Len() int { return len(s.values) }

var (
	locations   Set
	intensities Set
	roles       Set
)

func init() {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("vocab: invalid embedded vocabulary: %v", err))
	}
	locations = newSet(doc.Locations)
	intensities = newSet(doc.Intensities)
	roles = newSet(doc.Roles)
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Locations is the enumerated location set.
func Locations() Set { return locations }

// Intensities is the activity intensity set (High, Medium, Low).
func Intensities() Set { return intensities }

// Roles is the set of user roles.
func Roles() Set { return roles }
