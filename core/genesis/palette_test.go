package genesis

import (
	"math/big"
	"testing"

	"palettecore/core/state"
	"palettecore/core/types"
	"palettecore/native/bank"
	"palettecore/native/registry"
	"palettecore/storage"
)

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func TestDefaultPaletteOrder(t *testing.T) {
	colors := DefaultPalette()
	if len(colors) != 7 {
		t.Fatalf("palette size = %d, want 7", len(colors))
	}
	if colors[0].Name != "white" || colors[0].ID != 0xFFFFFF {
		t.Fatalf("first color = %+v, want white", colors[0])
	}
	if colors[1].Name != "black" || colors[1].ID != 0x000000 {
		t.Fatalf("second color = %+v, want black", colors[1])
	}
}

func TestPositionForLayout(t *testing.T) {
	// Seven tokens fill columns of height three.
	cases := []struct {
		index int
		want  types.Position
	}{
		{0, types.Position{X: 0, Y: 0}},
		{1, types.Position{X: 0, Y: 1}},
		{2, types.Position{X: 0, Y: 2}},
		{3, types.Position{X: 1, Y: 0}},
		{4, types.Position{X: 1, Y: 1}},
		{5, types.Position{X: 1, Y: 2}},
		{6, types.Position{X: 2, Y: 0}},
	}
	for _, tc := range cases {
		if got := PositionFor(tc.index, 7); got != tc.want {
			t.Fatalf("PositionFor(%d, 7) = %+v, want %+v", tc.index, got, tc.want)
		}
	}
}

func TestPositionForDistinct(t *testing.T) {
	total := len(DefaultPalette())
	seen := make(map[types.Position]bool)
	for i := 0; i < total; i++ {
		pos := PositionFor(i, total)
		if seen[pos] {
			t.Fatalf("duplicate starting position %+v", pos)
		}
		seen[pos] = true
	}
}

func TestApplySeedsPalette(t *testing.T) {
	m := state.NewManager(storage.NewMemDB())
	reg := registry.NewRegistry()
	reg.SetState(m)
	platform := addr(0xFE)
	funded := addr(1)

	allocs := map[[20]byte]*big.Int{funded: big.NewInt(1000)}
	if err := Apply(m, reg, platform, allocs); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	count, err := reg.BalanceOf(platform)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if count != 7 {
		t.Fatalf("platform holdings = %d, want 7", count)
	}

	// White sits at the origin, black directly below it.
	posWhite, ok, err := m.PositionGet(0xFFFFFF)
	if err != nil || !ok {
		t.Fatalf("white position: ok=%v err=%v", ok, err)
	}
	if posWhite != (types.Position{X: 0, Y: 0}) {
		t.Fatalf("white position = %+v, want (0,0)", posWhite)
	}
	posBlack, ok, err := m.PositionGet(0x000000)
	if err != nil || !ok {
		t.Fatalf("black position: ok=%v err=%v", ok, err)
	}
	if posBlack != (types.Position{X: 0, Y: 1}) {
		t.Fatalf("black position = %+v, want (0,1)", posBlack)
	}

	version, ok, err := m.VersionGet()
	if err != nil || !ok {
		t.Fatalf("VersionGet: ok=%v err=%v", ok, err)
	}
	if version != InitialVersion {
		t.Fatalf("version = %d, want %d", version, InitialVersion)
	}

	balance, err := bank.BalanceOf(m, funded)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if balance.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("funded balance = %s, want 1000", balance)
	}
}
