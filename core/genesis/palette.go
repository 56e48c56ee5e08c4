package genesis

import (
	"bytes"
	"math"
	"math/big"
	"sort"

	"palettecore/core/state"
	"palettecore/core/types"
	"palettecore/native/bank"
	"palettecore/native/registry"
)

// Color pairs a palette token with its human name. The identifier is the
// 24-bit RGB value of the color.
type Color struct {
	Name string
	ID   types.TokenID
}

// InitialVersion is the counter value recorded when the palette is created.
const InitialVersion uint64 = 1

// DefaultPalette returns the seven genesis colors in mint order. Order is
// part of the protocol: it fixes the initial grid layout.
func DefaultPalette() []Color {
	return []Color{
		{Name: "white", ID: 0xFFFFFF},
		{Name: "black", ID: 0x000000},
		{Name: "red", ID: 0xFF0000},
		{Name: "green", ID: 0x00FF00},
		{Name: "blue", ID: 0x0000FF},
		{Name: "yellow", ID: 0xFFFF00},
		{Name: "cyan", ID: 0x00FFFF},
	}
}

// PositionFor computes the deterministic starting coordinate for the token
// minted at the given index. Tokens fill columns top to bottom, with the
// column height chosen so the initial layout is roughly square.
func PositionFor(index, total int) types.Position {
	if index < 0 {
		index = 0
	}
	height := 1
	if total > 1 {
		height = int(math.Ceil(math.Sqrt(float64(total))))
	}
	return types.Position{
		X: uint32(index / height),
		Y: uint32(index % height),
	}
}

// Apply mints the genesis palette to the platform account, lays the tokens
// out on the grid, seeds configured cash balances and records the initial
// version. It must run exactly once on an empty state.
func Apply(m *state.Manager, reg *registry.Registry, platform [20]byte, allocs map[[20]byte]*big.Int) error {
	colors := DefaultPalette()
	for i, color := range colors {
		if err := reg.Mint(platform, color.ID); err != nil {
			return err
		}
		if err := m.PositionPut(color.ID, PositionFor(i, len(colors))); err != nil {
			return err
		}
	}

	addrs := make([][20]byte, 0, len(allocs))
	for addr := range allocs {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
	for _, addr := range addrs {
		if err := bank.Credit(m, addr, allocs[addr]); err != nil {
			return err
		}
	}

	return m.VersionPut(InitialVersion)
}
