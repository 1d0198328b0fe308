package dispatch

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"

	"github.com/sdboyer/loadergen/catalog"
)

// ErrUnknownWSITag is returned when an entry point of a generic WSI extension
// names no windowing system this package knows a guard for. It means the
// catalog gained a WSI extension the tag table was never taught about.
var ErrUnknownWSITag = errors.New("entry point names no known windowing system")

// wsiTags maps the windowing-system tag embedded in an entry-point name to its
// guard. The first tag contained in the name wins.
var wsiTags = []struct {
	tag   string
	guard string
}{
	{"Xcb", "VK_USE_PLATFORM_XCB_KHR"},
	{"Xlib", "VK_USE_PLATFORM_XLIB_KHR"},
	{"Wayland", "VK_USE_PLATFORM_WAYLAND_KHR"},
	{"Mir", "VK_USE_PLATFORM_MIR_KHR"},
}

var platformGuards = map[catalog.Platform]string{
	catalog.Windows: "VK_USE_PLATFORM_WIN32_KHR",
	catalog.Android: "VK_USE_PLATFORM_ANDROID_KHR",
}

// InGroups reports whether any of groups contains an entry point called name.
func InGroups(name string, groups []catalog.ExtensionGroup) bool {
	for _, g := range groups {
		if g.Contains(name) {
			return true
		}
	}
	return false
}

// DeriveWSIGuard returns the preprocessor guard for an entry point of a
// generic WSI extension, from the windowing-system tag in its name.
func DeriveWSIGuard(name string) (string, error) {
	for _, t := range wsiTags {
		if strings.Contains(name, t.tag) {
			return t.guard, nil
		}
	}
	return "", errors.WithHintf(errors.Wrapf(ErrUnknownWSITag, "%s", name),
		"add the windowing-system tag in %q to the WSI tag table", name)
}

// PlatformGuard returns the guard for an operating system, or "" if there is
// none.
func PlatformGuard(p catalog.Platform) string {
	return platformGuards[p]
}

// Validate runs the catalog's structural checks and additionally confirms
// that every entry point in a generic WSI extension resolves to a guard.
func Validate(c catalog.Catalog) error {
	var result *multierror.Error
	if err := c.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	for _, g := range c.Groups(catalog.RoleWSI, catalog.AnyPlatform) {
		for _, ep := range g.EntryPoints {
			if _, err := DeriveWSIGuard(ep.Name); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "extension %s", g.Name))
			}
		}
	}
	return result.ErrorOrNil()
}
