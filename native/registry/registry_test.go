package registry

import (
	"errors"
	"testing"

	"palettecore/core/types"
)

type memState struct {
	owners    map[types.TokenID][20]byte
	holdings  map[[20]byte]uint64
	approvals map[types.TokenID][20]byte
}

func newMemState() *memState {
	return &memState{
		owners:    make(map[types.TokenID][20]byte),
		holdings:  make(map[[20]byte]uint64),
		approvals: make(map[types.TokenID][20]byte),
	}
}

func (m *memState) OwnerPut(id types.TokenID, owner [20]byte) error {
	m.owners[id] = owner
	return nil
}

func (m *memState) OwnerGet(id types.TokenID) ([20]byte, bool, error) {
	owner, ok := m.owners[id]
	return owner, ok, nil
}

func (m *memState) HoldingsGet(addr [20]byte) (uint64, error) {
	return m.holdings[addr], nil
}

func (m *memState) HoldingsPut(addr [20]byte, count uint64) error {
	if count == 0 {
		delete(m.holdings, addr)
		return nil
	}
	m.holdings[addr] = count
	return nil
}

func (m *memState) TransferApprovalPut(id types.TokenID, approved [20]byte) error {
	m.approvals[id] = approved
	return nil
}

func (m *memState) TransferApprovalGet(id types.TokenID) ([20]byte, bool, error) {
	approved, ok := m.approvals[id]
	return approved, ok, nil
}

func (m *memState) TransferApprovalClear(id types.TokenID) error {
	delete(m.approvals, id)
	return nil
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[19] = b
	return out
}

func newTestRegistry() (*Registry, *memState) {
	reg := NewRegistry()
	st := newMemState()
	reg.SetState(st)
	reg.SetBaseURI("http://localhost:3000/")
	return reg, st
}

func TestMintAndOwnership(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)

	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	got, err := reg.OwnerOf(0xFFFFFF)
	if err != nil {
		t.Fatalf("OwnerOf: %v", err)
	}
	if got != owner {
		t.Fatalf("owner = %x, want %x", got, owner)
	}
	count, err := reg.BalanceOf(owner)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if count != 1 {
		t.Fatalf("balance = %d, want 1", count)
	}
}

func TestMintRejectsDuplicatesAndZeroAddress(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)

	if err := reg.Mint(owner, 0xFF0000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.Mint(owner, 0xFF0000); !errors.Is(err, ErrAlreadyMinted) {
		t.Fatalf("err = %v, want ErrAlreadyMinted", err)
	}
	if err := reg.Mint([20]byte{}, 0x00FF00); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("err = %v, want ErrZeroAddress", err)
	}
}

func TestMintRejectsOutOfRangeID(t *testing.T) {
	reg, _ := newTestRegistry()
	if err := reg.Mint(addr(1), types.TokenID(0x1000000)); err == nil {
		t.Fatal("token id above 0xFFFFFF accepted")
	}
}

func TestOwnerOfUnknownToken(t *testing.T) {
	reg, _ := newTestRegistry()
	if _, err := reg.OwnerOf(0x123456); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	exists, err := reg.Exists(0x123456)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("unknown token reported as minted")
	}
}

func TestTransferFromAuthorization(t *testing.T) {
	owner := addr(1)
	approved := addr(2)
	operator := addr(3)
	stranger := addr(4)
	recipient := addr(5)

	cases := []struct {
		name    string
		caller  [20]byte
		prepare func(*Registry)
		wantErr error
	}{
		{name: "owner", caller: owner, prepare: func(*Registry) {}},
		{name: "approved", caller: approved, prepare: func(r *Registry) {
			if err := r.Approve(owner, approved, 0xFFFFFF); err != nil {
				t.Fatalf("Approve: %v", err)
			}
		}},
		{name: "operator", caller: operator, prepare: func(r *Registry) {
			proxies := NewProxyRegistry()
			proxies.SetProxy(owner, operator, true)
			r.SetOperators(proxies)
		}},
		{name: "stranger", caller: stranger, prepare: func(*Registry) {}, wantErr: ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, _ := newTestRegistry()
			if err := reg.Mint(owner, 0xFFFFFF); err != nil {
				t.Fatalf("Mint: %v", err)
			}
			tc.prepare(reg)

			err := reg.TransferFrom(tc.caller, owner, recipient, 0xFFFFFF)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransferFrom: %v", err)
			}
			got, err := reg.OwnerOf(0xFFFFFF)
			if err != nil {
				t.Fatalf("OwnerOf: %v", err)
			}
			if got != recipient {
				t.Fatalf("owner after transfer = %x, want %x", got, recipient)
			}
		})
	}
}

func TestTransferFromRejectsStaleFrom(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.TransferFrom(owner, addr(9), addr(5), 0xFFFFFF); !errors.Is(err, ErrWrongOwner) {
		t.Fatalf("err = %v, want ErrWrongOwner", err)
	}
}

func TestTransferFromRejectsZeroRecipient(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.TransferFrom(owner, owner, [20]byte{}, 0xFFFFFF); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("err = %v, want ErrZeroAddress", err)
	}
}

func TestTransferConsumesApproval(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	approved := addr(2)
	recipient := addr(3)

	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.Approve(owner, approved, 0xFFFFFF); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := reg.TransferFrom(approved, owner, recipient, 0xFFFFFF); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	if _, ok, _ := reg.Approved(0xFFFFFF); ok {
		t.Fatal("transfer approval survived the transfer")
	}
}

func TestTransferUpdatesHoldings(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	recipient := addr(2)

	for _, id := range []types.TokenID{0xFFFFFF, 0x000000, 0xFF0000} {
		if err := reg.Mint(owner, id); err != nil {
			t.Fatalf("Mint %d: %v", id, err)
		}
	}
	if err := reg.TransferFrom(owner, owner, recipient, 0x000000); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	fromCount, _ := reg.BalanceOf(owner)
	toCount, _ := reg.BalanceOf(recipient)
	if fromCount != 2 || toCount != 1 {
		t.Fatalf("holdings = %d/%d, want 2/1", fromCount, toCount)
	}
}

func TestTransferHooksFire(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	recipient := addr(2)
	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	var fired []types.TokenID
	reg.RegisterTransferHook(func(id types.TokenID, from, to [20]byte) error {
		if from != owner || to != recipient {
			t.Fatalf("hook saw %x -> %x", from, to)
		}
		fired = append(fired, id)
		return nil
	})

	if err := reg.TransferFrom(owner, owner, recipient, 0xFFFFFF); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	if len(fired) != 1 || fired[0] != 0xFFFFFF {
		t.Fatalf("hook fired %v", fired)
	}
}

func TestApproveRequiresOwnerOrOperator(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	stranger := addr(2)
	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := reg.Approve(stranger, stranger, 0xFFFFFF); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestTokenURI(t *testing.T) {
	reg, _ := newTestRegistry()
	owner := addr(1)
	if err := reg.Mint(owner, 0xFFFFFF); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	uri, err := reg.TokenURI(0xFFFFFF)
	if err != nil {
		t.Fatalf("TokenURI: %v", err)
	}
	if uri != "http://localhost:3000/16777215" {
		t.Fatalf("uri = %q", uri)
	}
	if _, err := reg.TokenURI(0x123456); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestContractURI(t *testing.T) {
	reg, _ := newTestRegistry()
	if uri := reg.ContractURI(); uri != "http://localhost:3000/webcolorspalette" {
		t.Fatalf("uri = %q", uri)
	}
}
