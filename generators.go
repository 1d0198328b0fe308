// Package loadergen generates C sources and Windows module-definition files for
// a Vulkan loader and its layers from an entry-point catalog.
//
// Each kind of output is produced by a [Generator], a jenny that splits its
// output into the sections of a [Document] and assembles them into a [File].
package loadergen

import (
	"github.com/cockroachdb/errors"

	"github.com/sdboyer/loadergen/catalog"
	"github.com/sdboyer/loadergen/dispatch"
	"github.com/sdboyer/loadergen/exports"
)

// Generator is implemented by the generators in this package only.
type Generator interface {
	OneToOne[catalog.Catalog]

	// Document returns the unassembled sections of the generated file.
	Document(catalog.Catalog) (Document, error)

	generator()
}

var (
	_ Generator = DispatchTableOps{}
	_ Generator = WinDefFile{}
)

const cCopyright = `/* THIS FILE IS GENERATED.  DO NOT EDIT. */

/*
 * Copyright (c) 2015-2016 The Khronos Group Inc.
 * Copyright (c) 2015-2016 Valve Corporation
 * Copyright (c) 2015-2016 LunarG, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */`

const defCopyright = `; THIS FILE IS GENERATED.  DO NOT EDIT.

;;;; Begin Copyright Notice ;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;
; Vulkan
;
; Copyright (c) 2015-2016 The Khronos Group Inc.
; Copyright (c) 2015-2016 Valve Corporation
; Copyright (c) 2015-2016 LunarG, Inc.
;
; Licensed under the Apache License, Version 2.0 (the "License");
; you may not use this file except in compliance with the License.
; You may obtain a copy of the License at
;
;     http://www.apache.org/licenses/LICENSE-2.0
;
; Unless required by applicable law or agreed to in writing, software
; distributed under the License is distributed on an "AS IS" BASIS,
; WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
; See the License for the specific language governing permissions and
; limitations under the License.
;;;;  End Copyright Notice ;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;;`

const defHeader = "; The following is required on Windows, for exporting symbols from the DLL"

// DispatchTableOps generates a C header of inline functions that fill the
// device and instance dispatch tables.
type DispatchTableOps struct {
	// Prefix names the generated functions, so that several generated
	// headers can be linked into one binary.
	Prefix string
}

func (DispatchTableOps) generator() {}

func (DispatchTableOps) JennyName() string {
	return "DispatchTableOps"
}

func (g DispatchTableOps) Document(c catalog.Catalog) (Document, error) {
	body, err := dispatch.NewEmitter(c, g.Prefix).Body()
	if err != nil {
		return Document{}, err
	}
	return Document{
		Copyright: cCopyright,
		Header:    IncludeHeader("vulkan/vulkan.h", "vulkan/vk_layer.h", "string.h"),
		Body:      body,
	}, nil
}

func (g DispatchTableOps) Generate(c catalog.Catalog) (*File, error) {
	return generate(g, c, g.Prefix+"_dispatch_table_helper.h")
}

// WinDefFile generates a Windows module-definition file listing the symbols a
// library DLL exports.
type WinDefFile struct {
	Library string
	Variant exports.Variant

	// Allow restricts the All variant to these entry points. Empty means no
	// restriction.
	Allow []string
}

func (WinDefFile) generator() {}

func (WinDefFile) JennyName() string {
	return "WinDefFile"
}

func (g WinDefFile) Document(c catalog.Catalog) (Document, error) {
	return Document{
		Copyright: defCopyright,
		Header:    defHeader,
		Body:      exports.Body(g.Library, g.Variant, c, g.Allow),
	}, nil
}

func (g WinDefFile) Generate(c catalog.Catalog) (*File, error) {
	return generate(g, c, g.Library+".def")
}

func generate(g Generator, c catalog.Catalog, path string) (*File, error) {
	doc, err := g.Document(c)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", g.JennyName())
	}
	return &File{
		RelativePath: path,
		Data:         []byte(doc.Assemble()),
		From:         []NamedJenny{g},
	}, nil
}
