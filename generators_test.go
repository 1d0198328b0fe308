package loadergen

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/matryer/is"

	"github.com/sdboyer/loadergen/catalog"
	"github.com/sdboyer/loadergen/dispatch"
	"github.com/sdboyer/loadergen/exports"
)

func defaultCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDispatchTableOps(t *testing.T) {
	is := is.New(t)
	c := defaultCatalog(t)

	g := DispatchTableOps{Prefix: "layer"}
	f, err := g.Generate(c)
	is.NoErr(err)
	is.Equal(f.RelativePath, "layer_dispatch_table_helper.h")
	is.Equal(jennystack(f.From), "DispatchTableOps")

	out := string(f.Data)
	is.True(strings.HasPrefix(out, "/* THIS FILE IS GENERATED.  DO NOT EDIT. */\n"))
	is.True(strings.Contains(out, " */\n\n#include <vulkan/vulkan.h>\n#include <vulkan/vk_layer.h>\n#include <string.h>\n\nstatic inline void layer_init_device_dispatch_table(VkDevice device,\n"))
	is.True(strings.Contains(out, "}\n\nstatic inline void layer_init_instance_dispatch_table(\n"))
	is.True(strings.HasSuffix(out, "}"))

	again, err := g.Generate(c)
	is.NoErr(err)
	is.Equal(f.Data, again.Data)
}

func TestDispatchTableOpsDataError(t *testing.T) {
	is := is.New(t)

	c := catalog.Catalog{
		Prefix:          "vk",
		InstanceHandles: []string{"VkInstance"},
		Extensions: []catalog.ExtensionGroup{{
			Name: "VK_FOO_surface",
			Role: catalog.RoleWSI,
			EntryPoints: []catalog.EntryPoint{
				{Name: "CreateFooSurfaceKHR", Params: []catalog.Param{{Type: "VkInstance"}}},
			},
		}},
	}
	f, err := DispatchTableOps{Prefix: "x"}.Generate(c)
	is.True(f == nil)
	is.True(errors.Is(err, dispatch.ErrUnknownWSITag))
}

func TestWinDefFile(t *testing.T) {
	is := is.New(t)
	c := defaultCatalog(t)

	f, err := WinDefFile{Library: "VkLayer_multi", Variant: exports.Layer}.Generate(c)
	is.NoErr(err)
	is.Equal(f.RelativePath, "VkLayer_multi.def")
	out := string(f.Data)
	is.True(strings.HasPrefix(out, "; THIS FILE IS GENERATED.  DO NOT EDIT.\n"))
	is.True(strings.HasSuffix(out, "End Copyright Notice ;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;\n\n"+
		"; The following is required on Windows, for exporting symbols from the DLL\n\n"+
		"LIBRARY VkLayer_multi\nEXPORTS\nmulti2GetInstanceProcAddr\nmulti1GetDeviceProcAddr"))

	f, err = WinDefFile{Library: "VkLayerSwapchain", Variant: exports.Layer}.Generate(c)
	is.NoErr(err)
	is.True(!strings.Contains(string(f.Data), "vkEnumerateInstance"))

	f, err = WinDefFile{Library: "VkLayer_threading", Variant: exports.Layer}.Generate(c)
	is.NoErr(err)
	is.True(strings.Contains(string(f.Data), "\nvkEnumerateInstanceLayerProperties\nvkEnumerateInstanceExtensionProperties"))

	f, err = WinDefFile{Library: "vulkan-1", Variant: exports.All}.Generate(c)
	is.NoErr(err)
	out = string(f.Data)
	is.True(strings.Contains(out, "EXPORTS\n   vkCreateInstance\n   vkDestroyInstance\n"))
	is.True(strings.Contains(out, "\n   vkCreateSwapchainKHR\n"))
	is.True(!strings.Contains(out, "Win32"))

	f, err = WinDefFile{Library: "vulkan-1", Variant: exports.All, Allow: []string{"vkCreateDevice", "CreateInstance"}}.Generate(c)
	is.NoErr(err)
	is.True(strings.HasSuffix(string(f.Data), "EXPORTS\n   vkCreateInstance\n   vkCreateDevice"))
}
