// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

// Algorithm registry: short names accepted by the cdsbench and cdsrun
// binaries (and usable by any caller that selects an implementation at
// run time), mapped to constructors and display labels.
//
// Stack algorithms: sgl, treiber, elim, fc.
// Queue algorithms: sgl, ms, fc.
//
// Example:
//
//	s, ok := cds.BuildStack[int]("treiber")
//	if !ok {
//	    // unknown algorithm name
//	}

// StackAlgos returns the registered stack algorithm names, in registry
// order.
func StackAlgos() []string {
	return []string{"sgl", "treiber", "elim", "fc"}
}

// QueueAlgos returns the registered queue algorithm names, in registry
// order.
func QueueAlgos() []string {
	return []string{"sgl", "ms", "fc"}
}

// BuildStack constructs the stack implementation registered under name.
// Returns (nil, false) for an unknown name.
func BuildStack[T any](name string) (Stack[T], bool) {
	switch name {
	case "sgl":
		return NewSGLStack[T](), true
	case "treiber":
		return NewTreiberStack[T](), true
	case "elim":
		return NewEliminationStack[T](), true
	case "fc":
		return NewFCStack[T](), true
	}
	return nil, false
}

// BuildQueue constructs the queue implementation registered under name.
// Returns (nil, false) for an unknown name.
func BuildQueue[T any](name string) (Queue[T], bool) {
	switch name {
	case "sgl":
		return NewSGLQueue[T](), true
	case "ms":
		return NewMSQueue[T](), true
	case "fc":
		return NewFCQueue[T](), true
	}
	return nil, false
}

// StackLabel returns the display label for a stack algorithm name, or ""
// for an unknown name.
func StackLabel(name string) string {
	switch name {
	case "sgl":
		return "SGLStack"
	case "treiber":
		return "TreiberStack"
	case "elim":
		return "EliminationStack"
	case "fc":
		return "FlatCombiningStack"
	}
	return ""
}

// QueueLabel returns the display label for a queue algorithm name, or ""
// for an unknown name.
func QueueLabel(name string) string {
	switch name {
	case "sgl":
		return "SGLQueue"
	case "ms":
		return "MSQueue"
	case "fc":
		return "FlatCombiningQueue"
	}
	return ""
}
