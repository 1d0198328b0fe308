// Package dispatch generates the C functions that fill a layer's instance and
// device dispatch tables.
//
// Each generated function resolves every entry point of its table through the
// proc-address function passed in, and wraps entry points that only exist on
// one platform in that platform's #ifdef.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdboyer/loadergen/catalog"
)

// TableKind selects which dispatch table to generate.
type TableKind int

const (
	Device TableKind = iota
	Instance
)

func (k TableKind) String() string {
	switch k {
	case Device:
		return "device"
	case Instance:
		return "instance"
	default:
		return fmt.Sprintf("TableKind(%d)", int(k))
	}
}

// guardRule is one step of a guard priority chain: an entry point found in the
// groups with this role and platform gets the platform's guard, or a guard
// derived from its name when derive is set.
type guardRule struct {
	role     catalog.Role
	platform catalog.Platform
	derive   bool
}

var deviceGuards = []guardRule{
	{role: catalog.RolePlatform, platform: catalog.Windows},
	{role: catalog.RolePlatform, platform: catalog.Android},
}

var instanceGuards = []guardRule{
	{role: catalog.RolePlatform, platform: catalog.Windows},
	{role: catalog.RoleWSI, platform: catalog.Windows},
	{role: catalog.RoleWSI, platform: catalog.AnyPlatform, derive: true},
	{role: catalog.RoleWSI, platform: catalog.Android},
	{role: catalog.RolePlatform, platform: catalog.Android},
}

// table describes the fixed parts of one generated function.
type table struct {
	handleType string
	handle     string
	structType string
	gpa        string
	comment    string
	guards     []guardRule
	skip       map[string]bool
}

var tables = map[TableKind]table{
	Device: {
		handleType: "VkDevice",
		handle:     "device",
		structType: "VkLayerDispatchTable",
		gpa:        "GetDeviceProcAddr",
		comment:    "// Core device function pointers",
		guards:     deviceGuards,
		skip: map[string]bool{
			"CreateInstance":                       true,
			"EnumerateInstanceExtensionProperties": true,
			"EnumerateInstanceLayerProperties":     true,
			"GetDeviceProcAddr":                    true,
		},
	},
	Instance: {
		handleType: "VkInstance",
		handle:     "instance",
		structType: "VkLayerInstanceDispatchTable",
		gpa:        "GetInstanceProcAddr",
		comment:    "// Core instance function pointers",
		guards:     instanceGuards,
		skip: map[string]bool{
			"CreateDevice":        true,
			"GetInstanceProcAddr": true,
		},
	},
}

// Emitter generates dispatch table initialization functions from a catalog.
type Emitter struct {
	cat    catalog.Catalog
	prefix string
}

// NewEmitter returns an Emitter whose generated functions are named
// <prefix>_init_device_dispatch_table and <prefix>_init_instance_dispatch_table.
func NewEmitter(c catalog.Catalog, prefix string) *Emitter {
	return &Emitter{cat: c, prefix: prefix}
}

// Body returns the device table function followed by the instance table
// function.
func (e *Emitter) Body() (string, error) {
	device, err := e.Init(Device)
	if err != nil {
		return "", err
	}
	instance, err := e.Init(Instance)
	if err != nil {
		return "", err
	}
	return device + "\n\n" + instance, nil
}

// Init returns the complete C function that initializes the table of the given
// kind.
func (e *Emitter) Init(kind TableKind) (string, error) {
	t, ok := tables[kind]
	if !ok {
		return "", errors.AssertionFailedf("unknown dispatch table kind %s", kind)
	}

	stmts := []string{
		"    memset(table, 0, sizeof(*table));",
		"    " + t.comment,
		e.assign(t, t.gpa),
	}
	for _, ep := range e.cat.DispatchEntryPoints() {
		if !e.includes(kind, t, ep) {
			continue
		}
		guard, err := e.Guard(kind, ep.Name)
		if err != nil {
			return "", errors.Wrapf(err, "%s dispatch table", kind)
		}
		if guard != "" {
			stmts = append(stmts, "#ifdef "+guard)
		}
		stmts = append(stmts, e.assign(t, ep.Name))
		if guard != "" {
			stmts = append(stmts, "#endif // "+guard)
		}
	}

	lines := e.signature(kind, t)
	lines = append(lines, "{", strings.Join(stmts, "\n"), "}")
	return strings.Join(lines, "\n"), nil
}

// Guard returns the #ifdef token an entry point's assignment must be wrapped
// in for the given table, or "" when it needs none. Rules are tried in order
// and the first group containing the entry point decides.
func (e *Emitter) Guard(kind TableKind, name string) (string, error) {
	for _, r := range tables[kind].guards {
		if !InGroups(name, e.cat.Groups(r.role, r.platform)) {
			continue
		}
		if r.derive {
			return DeriveWSIGuard(name)
		}
		return PlatformGuard(r.platform), nil
	}
	return "", nil
}

func (e *Emitter) includes(kind TableKind, t table, ep catalog.EntryPoint) bool {
	if t.skip[ep.Name] {
		return false
	}
	return e.cat.IsInstanceLevel(ep) == (kind == Instance)
}

func (e *Emitter) assign(t table, name string) string {
	sym := e.cat.Symbol(name)
	return fmt.Sprintf("    table->%s = (PFN_%s) gpa(%s, \"%s\");", name, sym, t.handle, sym)
}

func (e *Emitter) signature(kind TableKind, t table) []string {
	pfn := "PFN_" + e.cat.Symbol(t.gpa) + " gpa)"
	if kind == Device {
		open := fmt.Sprintf("static inline void %s_init_device_dispatch_table(", e.prefix)
		pad := strings.Repeat(" ", len(open))
		return []string{
			open + t.handleType + " " + t.handle + ",",
			pad + t.structType + " *table,",
			pad + pfn,
		}
	}
	pad := strings.Repeat(" ", len(e.prefix)+8)
	return []string{
		fmt.Sprintf("static inline void %s_init_%s_dispatch_table(", e.prefix, kind),
		pad + t.handleType + " " + t.handle + ",",
		pad + t.structType + " *table,",
		pad + pfn,
	}
}
