package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/matryer/is"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"platform only", []string{"Win32"}},
		{"unknown platform", []string{"BeOS", "dispatch-table-ops", "loader"}},
		{"unknown subcommand", []string{"Xcb", "icd-manifest", "loader"}},
		{"flag before subcommand", []string{"Xcb", "--verbose", "dispatch-table-ops", "loader"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			stdout, _, err := run(t, tt.args...)
			is.True(errors.Is(err, ErrUsage))
			is.True(strings.HasPrefix(stdout, "Usage: vk-generate <wsi> <subcommand> <option>"))
			is.True(strings.Contains(stdout, "Available wsi are: Win32 Android Xcb Xlib Wayland Mir Display AllPlatforms"))
		})
	}
}

func TestSubcommandUsageErrorsDoNotFail(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing prefix", []string{"Win32", "dispatch-table-ops"}, "dispatch-table-ops: <prefix> unspecified\n"},
		{"too many args", []string{"Win32", "dispatch-table-ops", "a", "b", "c"}, "dispatch-table-ops: <prefix> [outfile]\n"},
		{"missing variant", []string{"Win32", "win-def-file", "vulkan-1"}, "win-def-file: <library-name> {all|icd|layer|layer_multi} [outfile]\n"},
		{"unknown variant", []string{"Win32", "win-def-file", "vulkan-1", "driver"}, "win-def-file: <library-name> {all|icd|layer|layer_multi} [outfile]\n"},
		{"too many def args", []string{"Win32", "win-def-file", "a", "icd", "b", "c"}, "win-def-file: <library-name> {all|icd|layer|layer_multi} [outfile]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			stdout, _, err := run(t, tt.args...)
			is.NoErr(err)
			is.Equal(stdout, tt.want)
		})
	}
}

func TestDispatchTableOpsStdout(t *testing.T) {
	is := is.New(t)

	first, _, err := run(t, "AllPlatforms", "dispatch-table-ops", "loader")
	is.NoErr(err)
	is.True(strings.Contains(first, "static inline void loader_init_device_dispatch_table(VkDevice device,"))
	is.True(strings.Contains(first, "#ifdef VK_USE_PLATFORM_XCB_KHR\n    table->CreateXcbSurfaceKHR"))
	is.True(strings.HasSuffix(first, "}\n"))

	// The platform selector does not change the output.
	second, _, err := run(t, "Win32", "dispatch-table-ops", "loader")
	is.NoErr(err)
	is.Equal(first, second)
}

func TestWriteAndVerify(t *testing.T) {
	is := is.New(t)
	out := filepath.Join(t.TempDir(), "gen", "vk_dispatch_table_helper.h")

	stdout, _, err := run(t, "Xlib", "dispatch-table-ops", "layer", out)
	is.NoErr(err)
	is.Equal(stdout, "")

	b, err := os.ReadFile(out)
	is.NoErr(err)
	is.True(strings.HasSuffix(string(b), "}")) // files carry no trailing newline

	_, _, err = run(t, "Xlib", "dispatch-table-ops", "layer", out, "--verify")
	is.NoErr(err)

	_, _, err = run(t, "Xlib", "dispatch-table-ops", "other", out, "--verify")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "would have changed"))

	_, _, err = run(t, "Xlib", "dispatch-table-ops", "layer", "--verify")
	is.True(err != nil)

	missing := filepath.Join(t.TempDir(), "nope.h")
	_, _, err = run(t, "Xlib", "dispatch-table-ops", "layer", missing, "--verify")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "should exist"))
}

func TestWinDefFile(t *testing.T) {
	is := is.New(t)

	stdout, _, err := run(t, "Win32", "win-def-file", "VkLayer_multi", "layer")
	is.NoErr(err)
	is.True(strings.HasSuffix(stdout, "LIBRARY VkLayer_multi\nEXPORTS\nmulti2GetInstanceProcAddr\nmulti1GetDeviceProcAddr\n"))

	stdout, _, err = run(t, "Win32", "win-def-file", "VkLayerSwapchain", "layer")
	is.NoErr(err)
	is.True(strings.HasSuffix(stdout, "EXPORTS\nvkGetInstanceProcAddr\nvkGetDeviceProcAddr\n"))

	stdout, _, err = run(t, "Win32", "win-def-file", "vulkan-1", "all", "--only", "vkCreateInstance,DestroyInstance")
	is.NoErr(err)
	is.True(strings.HasSuffix(stdout, "LIBRARY vulkan-1\nEXPORTS\n   vkCreateInstance\n   vkDestroyInstance\n"))

	out := filepath.Join(t.TempDir(), "VkICD_mock.def")
	_, _, err = run(t, "Win32", "win-def-file", "VkICD_mock", "icd", out)
	is.NoErr(err)
	b, err := os.ReadFile(out)
	is.NoErr(err)
	is.True(strings.HasSuffix(string(b), "EXPORTS\nvk_icdGetInstanceProcAddr"))
}

func TestCatalogFlags(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	is.NoErr(os.WriteFile(good, []byte(`prefix: vk
instance_handles: [VkInstance, VkPhysicalDevice]
core:
  - {name: CreateInstance, params: [const VkInstanceCreateInfo*]}
  - {name: CreateDevice, params: [VkPhysicalDevice]}
  - {name: GetDeviceProcAddr, params: [VkDevice, const char*]}
  - {name: GetInstanceProcAddr, params: [VkInstance, const char*]}
  - {name: DestroyDevice, params: [VkDevice]}
`), 0644))

	stdout, stderr, err := run(t, "Android", "dispatch-table-ops", "t", "--catalog", good, "--strict", "-v")
	is.NoErr(err)
	is.Equal(strings.Count(stdout, "table->"), 3) // two resolvers plus DestroyDevice
	is.True(strings.Contains(stderr, "catalog loaded"))

	bad := filepath.Join(dir, "bad.yaml")
	is.NoErr(os.WriteFile(bad, []byte(`prefix: vk
instance_handles: [VkInstance]
extensions:
  - name: VK_FOO_surface
    role: wsi
    entry_points:
      - {name: CreateFooSurfaceKHR, params: [VkInstance]}
`), 0644))

	_, _, err = run(t, "Android", "dispatch-table-ops", "t", "--catalog", bad)
	is.True(err != nil) // unknown WSI tag is fatal even without --strict

	_, _, err = run(t, "Android", "win-def-file", "x", "icd", "--catalog", bad, "--strict")
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "is invalid"))

	_, _, err = run(t, "Android", "win-def-file", "x", "icd", "--catalog", bad)
	is.NoErr(err)

	_, _, err = run(t, "Android", "win-def-file", "x", "icd", "--catalog", filepath.Join(dir, "missing.toml"))
	is.True(err != nil)
}

func TestLogJSON(t *testing.T) {
	is := is.New(t)
	_, stderr, err := run(t, "Display", "win-def-file", "x", "icd", "-v", "--log-json")
	is.NoErr(err)
	is.True(strings.Contains(stderr, `"msg":"catalog loaded"`))
	is.True(strings.Contains(stderr, `"platform":"Display"`))
}

func TestSplitOutput(t *testing.T) {
	is := is.New(t)

	dir, rel := splitOutput("out/./helper.h")
	is.Equal(dir, "")
	is.Equal(rel, filepath.Join("out", "helper.h"))

	abs := filepath.Join(t.TempDir(), "helper.h")
	dir, rel = splitOutput(abs)
	is.Equal(filepath.Join(dir, rel), abs)
}
