package state

import (
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/thrustlabs/thrust-engine/internal/curve"
)

// EngineID is the program identity all record addresses derive from.
var EngineID = solana.MustPublicKeyFromBase58("2mXgSGzgmd4rdDXfgUm4nbJPa4fUrz9jJEuXfgpUT83B")

var (
	mainSeed    = []byte("main_4")
	poolSeed    = []byte("pool")
	reserveSeed = []byte("reserve")
	userSeed    = []byte("user")
)

// MainAddress derives the singleton platform record address.
func MainAddress() (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{mainSeed}, EngineID)
	return addr, err
}

// PoolAddress derives a pool's record address from its token mint. Repeated
// calls for the same mint resolve to the same record.
func PoolAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{poolSeed, mint.Bytes()}, EngineID)
	return addr, err
}

// ReserveAddress derives the pool's liquidity account address from its mint.
func ReserveAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{reserveSeed, mint.Bytes()}, EngineID)
	return addr, err
}

// UserAddress derives a trader's record address from their identity.
func UserAddress(trader solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{userSeed, trader.Bytes()}, EngineID)
	return addr, err
}

// Store keeps all engine records keyed by derived address. Reads hand out
// copies; writers publish whole records back, so a record is never observed
// half-updated. Per-record operation locks serialise work against the same
// pool or user while leaving unrelated records free to proceed.
type Store struct {
	mu    sync.RWMutex
	main  *MainState
	pools map[solana.PublicKey]*curve.Pool
	users map[solana.PublicKey]*User

	locks sync.Map // record address -> *sync.Mutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		pools: make(map[solana.PublicKey]*curve.Pool),
		users: make(map[solana.PublicKey]*User),
	}
}

// Main returns a copy of the platform singleton, or ok=false before init.
func (s *Store) Main() (MainState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.main == nil {
		return MainState{}, false
	}
	return *s.main, true
}

// SetMain publishes the platform singleton.
func (s *Store) SetMain(ms MainState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := ms
	s.main = &cp
}

// Pool returns a copy of the pool at addr, or ok=false.
func (s *Store) Pool(addr solana.PublicKey) (*curve.Pool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[addr]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// PutPool publishes a pool record.
func (s *Store) PutPool(addr solana.PublicKey, p *curve.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[addr] = p.Clone()
}

// User returns a copy of the trader record at addr, creating a fresh record
// for the given trader if none exists yet.
func (s *Store) User(addr, trader solana.PublicKey) *User {
	s.mu.RLock()
	u, ok := s.users[addr]
	s.mu.RUnlock()
	if !ok {
		return &User{Address: trader}
	}
	cp := *u
	return &cp
}

// PutUser publishes a trader record.
func (s *Store) PutUser(addr solana.PublicKey, u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[addr] = &cp
}

// Lock acquires the operation lock for a record address and returns the
// release function. One operation per pool (or user) at a time.
func (s *Store) Lock(addr solana.PublicKey) func() {
	v, _ := s.locks.LoadOrStore(addr, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
