package loadergen

import "strings"

// A Jenny is a loadergen code generator.
//
// Each Jenny works with exactly one type of input to its code generation, as
// indicated by its type parameter. loadergen follows the convention of naming
// these type parameters "Input" as an indicator for humans that a particular
// type parameter is used in this way.
type Jenny[Input any] interface {
	NamedJenny
}

// NamedJenny is the part of the Jenny contract that does not depend on Input.
type NamedJenny interface {
	// JennyName returns the name of the generator.
	JennyName() string
}

// OneToOne is a Jenny that takes one Input and produces one [File].
type OneToOne[Input any] interface {
	Jenny[Input]

	// Generate takes an Input and generates one [File]. A nil, nil return
	// indicates the jenny had nothing to do for the provided Input.
	Generate(Input) (*File, error)
}

// jennystack renders the chain of jennies that produced a File, outermost
// first.
func jennystack(s []NamedJenny) string {
	names := make([]string, 0, len(s))
	for _, j := range s {
		names = append(names, j.JennyName())
	}
	return strings.Join(names, ":")
}
