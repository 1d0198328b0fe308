// Package exports builds the EXPORTS section of the Windows module-definition
// files for the loader, ICDs and layers.
package exports

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/sdboyer/loadergen/catalog"
)

// Variant is the role of the library a .def file is generated for.
type Variant string

const (
	// All exports every entry point of the catalog.
	All        Variant = "all"
	ICD        Variant = "icd"
	Layer      Variant = "layer"
	LayerMulti Variant = "layer_multi"
)

// Library names with special handling.
const (
	// MultiLayerLibrary always gets the LayerMulti symbol list.
	MultiLayerLibrary = "VkLayer_multi"
	// SwapchainLibrary does not export the instance enumeration functions.
	SwapchainLibrary = "VkLayerSwapchain"
)

// ErrUnknownVariant is returned by ParseVariant for an unrecognized variant.
var ErrUnknownVariant = errors.New("unknown library variant")

var variants = []Variant{All, ICD, Layer, LayerMulti}

var presets = map[Variant][]string{
	ICD: {
		"vk_icdGetInstanceProcAddr",
	},
	Layer: {
		"vkGetInstanceProcAddr",
		"vkGetDeviceProcAddr",
		"vkEnumerateInstanceLayerProperties",
		"vkEnumerateInstanceExtensionProperties",
	},
	LayerMulti: {
		"multi2GetInstanceProcAddr",
		"multi1GetDeviceProcAddr",
	},
}

var swapchainSuppressed = map[string]bool{
	"vkEnumerateInstanceExtensionProperties": true,
	"vkEnumerateInstanceLayerProperties":     true,
}

// Variants returns the recognized variants in usage order.
func Variants() []Variant {
	return append([]Variant(nil), variants...)
}

// ParseVariant validates a variant name.
func ParseVariant(s string) (Variant, error) {
	for _, v := range variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownVariant, "%q", s)
}

// Resolve applies library-name overrides to a requested variant.
// MultiLayerLibrary always uses the LayerMulti preset; All is never
// overridden.
func Resolve(library string, v Variant) Variant {
	if library == MultiLayerLibrary && v != All {
		return LayerMulti
	}
	return v
}

// Symbols returns the exported symbol lines for a library, in output order.
//
// For a preset variant these are the preset's symbols. For All they are the
// catalog's export entry points, indented, optionally restricted to the names
// in allow. Names in allow may be given with or without the catalog prefix.
func Symbols(library string, v Variant, c catalog.Catalog, allow []string) []string {
	v = Resolve(library, v)
	if v != All {
		var syms []string
		for _, sym := range presets[v] {
			if library == SwapchainLibrary && swapchainSuppressed[sym] {
				continue
			}
			syms = append(syms, sym)
		}
		return syms
	}

	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[strings.TrimPrefix(name, c.Prefix)] = true
	}
	var syms []string
	for _, ep := range c.ExportEntryPoints() {
		if len(allowed) > 0 && !allowed[ep.Name] {
			continue
		}
		syms = append(syms, "   "+c.Symbol(ep.Name))
	}
	return syms
}

// Body returns the LIBRARY and EXPORTS statements of a module-definition file.
func Body(library string, v Variant, c catalog.Catalog, allow []string) string {
	lines := []string{"LIBRARY " + library, "EXPORTS"}
	lines = append(lines, Symbols(library, v, c, allow)...)
	return strings.Join(lines, "\n")
}
