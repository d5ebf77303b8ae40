// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package crash defines the closed set of categories a debug session
// can be classified into.
package crash

import "slices"

type Category string

const (
	UnknownCategory = Category("")
	// keep-sorted start
	Abort              = Category("ABORT")
	BadSyscall         = Category("BAD_SYSCALL")
	BusError           = Category("BUS_ERROR")
	CleanExit          = Category("CLEAN_EXIT")
	FloatingPoint      = Category("FLOATING_POINT")
	IllegalInstruction = Category("ILLEGAL_INSTRUCTION")
	Segfault           = Category("SEGFAULT")
	Trap               = Category("TRAP")
	UnknownSignal      = Category("UNKNOWN_SIGNAL")
	// keep-sorted end
)

// All lists every category a report can carry, in display order.
var All = []Category{
	Segfault,
	Abort,
	FloatingPoint,
	IllegalInstruction,
	BusError,
	Trap,
	BadSyscall,
	UnknownSignal,
	CleanExit,
}

func (c Category) String() string {
	if c == UnknownCategory {
		return "UNKNOWN"
	}
	return string(c)
}

// IsCrash reports whether the category describes an abnormal termination.
func (c Category) IsCrash() bool {
	return c != CleanExit && c != UnknownCategory
}

// IsMemoryFault reports whether the category points at a bad memory access.
func (c Category) IsMemoryFault() bool {
	return slices.Contains([]Category{Segfault, BusError}, c)
}

// FromString maps the serialized form back to a Category.
func FromString(s string) (Category, bool) {
	c := Category(s)
	return c, slices.Contains(All, c)
}
