package repair

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wippyai/wasm-repair/wasm"
)

// Signature describes a known defect class.
type Signature struct {
	Name string
	// Marker is the opcode byte that begins a malformed instruction.
	Marker byte
	// Trap is written over every byte of the malformed instruction.
	Trap byte
	// MaxSpan is the largest plausible instruction length in bytes.
	MaxSpan int
}

// SignatureBrTable matches br_table instructions with corrupt immediates
// and replaces them with unreachable.
var SignatureBrTable = Signature{
	Name:    "br_table",
	Marker:  wasm.OpBrTable,
	Trap:    wasm.OpUnreachable,
	MaxSpan: 30,
}

// Check reports whether the signature can be used for repair.
func (s Signature) Check() error {
	if s.Name == "" {
		return fmt.Errorf("signature has no name")
	}
	if s.Marker == s.Trap {
		return fmt.Errorf("signature %s: trap byte 0x%02X equals marker", s.Name, s.Trap)
	}
	if s.MaxSpan < 1 {
		return fmt.Errorf("signature %s: max span %d must be positive", s.Name, s.MaxSpan)
	}
	return nil
}

func (s Signature) String() string {
	return fmt.Sprintf("%s(marker=0x%02X trap=0x%02X max_span=%d)", s.Name, s.Marker, s.Trap, s.MaxSpan)
}

// Registry holds signatures by name.
type Registry struct {
	mu   sync.RWMutex
	sigs map[string]Signature
}

// NewRegistry returns a registry containing the built-in signatures.
func NewRegistry() *Registry {
	r := &Registry{sigs: make(map[string]Signature)}
	r.sigs[SignatureBrTable.Name] = SignatureBrTable
	return r
}

// Register adds or replaces a signature.
func (r *Registry) Register(s Signature) error {
	if err := s.Check(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sigs[s.Name] = s
	return nil
}

// Lookup returns the named signature.
func (r *Registry) Lookup(name string) (Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sigs[name]
	return s, ok
}

// Names returns registered signature names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sigs))
	for name := range r.sigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
