package authz

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// policyDocument is the YAML form of a Policy:
//
//	default: authenticated
//	rules:
//	  - pattern: /api/auth/signin
//	    methods: [POST]
//	    access: public
//	  - pattern: /api/admin/**
//	    access: roles
//	    roles: [ADMIN]
type policyDocument struct {
	Default string     `yaml:"default"`
	Rules   []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	Pattern string   `yaml:"pattern"`
	Methods []string `yaml:"methods"`
	Access  string   `yaml:"access"`
	Roles   []string `yaml:"roles"`
}

// LoadYAML reads a policy document. An omitted default means authenticated.
func LoadYAML(r io.Reader) (*Policy, error) {
	var doc policyDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("authz: decode policy: %w", err)
	}

	def, err := parseAccess(doc.Default, nil)
	if err != nil {
		return nil, fmt.Errorf("authz: default: %w", err)
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, yr := range doc.Rules {
		access, err := parseAccess(yr.Access, yr.Roles)
		if err != nil {
			return nil, fmt.Errorf("authz: rule %d (%s): %w", i, yr.Pattern, err)
		}
		rules = append(rules, Rule{Pattern: yr.Pattern, Methods: yr.Methods, Access: access})
	}
	return NewPolicy(def, rules...)
}

func parseAccess(kind string, roles []string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "authenticated":
		if len(roles) > 0 {
			return Roles(roles...), nil
		}
		return Authenticated(), nil
	case "public", "permitall":
		return Public(), nil
	case "roles", "role":
		a := Roles(roles...)
		if len(a.roles) == 0 {
			return Access{}, ErrMissingRoles
		}
		return a, nil
	default:
		return Access{}, fmt.Errorf("%w: %q", ErrUnknownAccess, kind)
	}
}
