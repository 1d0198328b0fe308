// Package catalog holds the entry-point metadata the generators work from: the
// core API entry points, and the extension groups that tag a subset of them as
// platform-exclusive, windowing-system-exclusive, or generic.
//
// A Catalog is decoded once at startup and treated as read-only afterwards.
// Every derived view it exposes returns a fresh slice whose order depends only
// on the order of the source data, which keeps generated output
// byte-for-byte reproducible.
package catalog

import (
	"strings"
)

// Role classifies an ExtensionGroup.
type Role string

const (
	// RoleGeneric marks an extension available on every platform.
	RoleGeneric Role = "generic"
	// RolePlatform marks an extension that only exists on one operating
	// system and is unrelated to windowing.
	RolePlatform Role = "platform"
	// RoleWSI marks a window-system-integration extension.
	RoleWSI Role = "wsi"
)

// Platform names the operating system an ExtensionGroup is restricted to. The
// empty Platform means no restriction; for a RoleWSI group it means the guard
// is derived from the entry point's own name.
type Platform string

const (
	AnyPlatform Platform = ""
	Windows     Platform = "windows"
	Android     Platform = "android"
)

// Param is a single entry-point parameter. Only its C type is recorded.
type Param struct {
	Type string
}

// UnmarshalText lets a parameter be written as a bare type string in catalog
// files.
func (p *Param) UnmarshalText(text []byte) error {
	p.Type = strings.TrimSpace(string(text))
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (p Param) MarshalText() ([]byte, error) {
	return []byte(p.Type), nil
}

// EntryPoint is one API function. Name does not carry the API prefix.
type EntryPoint struct {
	Name   string  `yaml:"name" toml:"name"`
	Params []Param `yaml:"params" toml:"params"`
}

// FirstParamType returns the type of the dispatchable handle the entry point
// is called on, or "" if it takes no parameters.
func (ep EntryPoint) FirstParamType() string {
	if len(ep.Params) == 0 {
		return ""
	}
	return ep.Params[0].Type
}

// ExtensionGroup is a named extension and the entry points it introduces.
type ExtensionGroup struct {
	Name        string       `yaml:"name" toml:"name"`
	Role        Role         `yaml:"role" toml:"role"`
	Platform    Platform     `yaml:"platform,omitempty" toml:"platform,omitempty"`
	EntryPoints []EntryPoint `yaml:"entry_points" toml:"entry_points"`
}

// Contains reports whether the group introduces an entry point called name.
func (g ExtensionGroup) Contains(name string) bool {
	for _, ep := range g.EntryPoints {
		if ep.Name == name {
			return true
		}
	}
	return false
}

// Catalog is the full set of entry-point metadata.
type Catalog struct {
	// Prefix is prepended to entry-point names to form C symbols, e.g. "vk".
	Prefix string `yaml:"prefix" toml:"prefix"`

	// InstanceHandles lists the first-parameter types that make an entry
	// point instance-level rather than device-level.
	InstanceHandles []string `yaml:"instance_handles" toml:"instance_handles"`

	// Core entry points, in API order.
	Core []EntryPoint `yaml:"core" toml:"core"`

	// Extensions, in API order.
	Extensions []ExtensionGroup `yaml:"extensions" toml:"extensions"`
}

// Symbol returns the prefixed C symbol for an entry-point name.
func (c Catalog) Symbol(name string) string {
	return c.Prefix + name
}

// DispatchEntryPoints returns every entry point the catalog knows about: the
// core list followed by each extension's entry points. An entry point
// introduced by more than one extension is listed once, at its first
// occurrence.
func (c Catalog) DispatchEntryPoints() []EntryPoint {
	return c.collect(func(ExtensionGroup) bool { return true })
}

// ExportEntryPoints returns the entry points a loader library exports on every
// platform: the core list followed by the entry points of generic extensions.
func (c Catalog) ExportEntryPoints() []EntryPoint {
	return c.collect(func(ext ExtensionGroup) bool { return ext.Role == RoleGeneric })
}

func (c Catalog) collect(include func(ExtensionGroup) bool) []EntryPoint {
	seen := make(map[string]bool, len(c.Core))
	eps := make([]EntryPoint, 0, len(c.Core))
	add := func(list []EntryPoint) {
		for _, ep := range list {
			if seen[ep.Name] {
				continue
			}
			seen[ep.Name] = true
			eps = append(eps, ep)
		}
	}
	add(c.Core)
	for _, ext := range c.Extensions {
		if include(ext) {
			add(ext.EntryPoints)
		}
	}
	return eps
}

// Groups returns the extension groups with the given role and platform.
func (c Catalog) Groups(role Role, platform Platform) []ExtensionGroup {
	var groups []ExtensionGroup
	for _, ext := range c.Extensions {
		if ext.Role == role && ext.Platform == platform {
			groups = append(groups, ext)
		}
	}
	return groups
}

// IsInstanceLevel reports whether ep is dispatched on an instance-level handle.
func (c Catalog) IsInstanceLevel(ep EntryPoint) bool {
	first := ep.FirstParamType()
	for _, h := range c.InstanceHandles {
		if first == h {
			return true
		}
	}
	return false
}
