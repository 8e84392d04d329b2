package fuzztests

import "testing"

// Inputs longer than this are truncated before interpretation.
const maxFuzzInput = 4 << 10

// Operation byte layout: low two bits select push, pop, add, or pick.
const (
	opPush byte = iota
	opPop
	opAdd
	opPick
)

func addOpSeeds(f *testing.F) {
	f.Add(uint64(0), []byte{})
	f.Add(uint64(1), []byte{opPush, opAdd, opPick, opPop})
	// Shadow an outer name, then pick non-locally from inside.
	f.Add(uint64(2), []byte{opAdd, opPush, opAdd, opPick | 0x80, opPick | 0x80, opPop})
	f.Add(uint64(3), []byte{opPush, opPush, opPush, opPick | 0x80, opPop, opPop, opPop, opPop})
	f.Add(uint64(42), []byte("scope stack fuzz seed"))
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return input[:maxFuzzInput]
	}
	return input
}
