package catalog

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the structural assumptions the generators make about a
// catalog. Generation itself never calls it.
//
// It reports every problem found rather than stopping at the first:
//   - an empty prefix or empty InstanceHandles
//   - an entry point declared twice in core or twice in one group
//   - entry points with no parameters
//   - groups with an unknown role or platform, generic groups restricted to a
//     platform, and platform groups restricted to none
//   - an entry point that belongs to more than one group of the same role,
//     which would make guard selection depend on priority order alone
func (c Catalog) Validate() error {
	var result *multierror.Error

	if c.Prefix == "" {
		result = multierror.Append(result, fmt.Errorf("catalog prefix is empty"))
	}
	if len(c.InstanceHandles) == 0 {
		result = multierror.Append(result, fmt.Errorf("catalog lists no instance handle types"))
	}

	dupes := func(where string, eps []EntryPoint) {
		seen := make(map[string]bool, len(eps))
		for _, ep := range eps {
			if seen[ep.Name] {
				result = multierror.Append(result, fmt.Errorf("entry point %s is declared more than once in %s", ep.Name, where))
			}
			seen[ep.Name] = true
			if len(ep.Params) == 0 {
				result = multierror.Append(result, fmt.Errorf("entry point %s in %s has no parameters", ep.Name, where))
			}
		}
	}
	dupes("core", c.Core)
	for _, ext := range c.Extensions {
		dupes(ext.Name, ext.EntryPoints)
	}

	owner := make(map[Role]map[string]string)
	for _, ext := range c.Extensions {
		switch ext.Role {
		case RoleGeneric:
			if ext.Platform != AnyPlatform {
				result = multierror.Append(result, fmt.Errorf("generic extension %s must not name platform %q", ext.Name, ext.Platform))
			}
		case RolePlatform:
			if ext.Platform == AnyPlatform {
				result = multierror.Append(result, fmt.Errorf("platform extension %s names no platform", ext.Name))
			}
		case RoleWSI:
		default:
			result = multierror.Append(result, fmt.Errorf("extension %s has unknown role %q", ext.Name, ext.Role))
			continue
		}
		switch ext.Platform {
		case AnyPlatform, Windows, Android:
		default:
			result = multierror.Append(result, fmt.Errorf("extension %s has unknown platform %q", ext.Name, ext.Platform))
		}

		if owner[ext.Role] == nil {
			owner[ext.Role] = make(map[string]string)
		}
		for _, ep := range ext.EntryPoints {
			if prev, has := owner[ext.Role][ep.Name]; has && prev != ext.Name {
				result = multierror.Append(result, fmt.Errorf("entry point %s belongs to %s groups %s and %s", ep.Name, ext.Role, prev, ext.Name))
				continue
			}
			owner[ext.Role][ep.Name] = ext.Name
		}
	}

	return result.ErrorOrNil()
}
