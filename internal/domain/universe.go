package domain

import "fmt"

// StrategyPnL is the cost-adjusted return stream of one strategy.
type StrategyPnL struct {
	Name    string // unique strategy name, e.g. "20D_momentum"
	Family  string // strategy family, e.g. "momentum"
	Returns Series // aligned to the universe index; NaN where undefined
}

// StrategyUniverse is the immutable set of per-strategy PnL series sharing
// one index. Names keep insertion order, which is the tie-break order for
// ranking.
type StrategyUniverse struct {
	index Index
	names []string
	byPos []StrategyPnL
	pos   map[string]int
}

// NewUniverse builds a universe from fully computed strategy PnL series.
// Every series must match the index length and names must be unique.
func NewUniverse(index Index, pnls []StrategyPnL) (*StrategyUniverse, error) {
	if err := index.Validate(); err != nil {
		return nil, err
	}
	u := &StrategyUniverse{
		index: index.Clone(),
		names: make([]string, 0, len(pnls)),
		byPos: make([]StrategyPnL, 0, len(pnls)),
		pos:   make(map[string]int, len(pnls)),
	}
	for _, p := range pnls {
		if len(p.Returns) != len(index) {
			return nil, fmt.Errorf("%w: %s has %d values, index has %d",
				ErrMisalignedSeries, p.Name, len(p.Returns), len(index))
		}
		if _, dup := u.pos[p.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		u.pos[p.Name] = len(u.byPos)
		u.names = append(u.names, p.Name)
		u.byPos = append(u.byPos, StrategyPnL{
			Name:    p.Name,
			Family:  p.Family,
			Returns: p.Returns.Clone(),
		})
	}
	return u, nil
}

// Index returns a copy of the shared date index.
func (u *StrategyUniverse) Index() Index {
	return u.index.Clone()
}

// Dates exposes the shared index without copying. Callers must not modify it.
func (u *StrategyUniverse) Dates() Index {
	return u.index
}

// Names returns strategy names in insertion order.
func (u *StrategyUniverse) Names() []string {
	out := make([]string, len(u.names))
	copy(out, u.names)
	return out
}

// Len returns the number of strategies.
func (u *StrategyUniverse) Len() int {
	return len(u.names)
}

// PnL returns a copy of the named strategy's returns.
func (u *StrategyUniverse) PnL(name string) (Series, error) {
	i, ok := u.pos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return u.byPos[i].Returns.Clone(), nil
}

// At returns the strategy at position i without copying its returns.
// Callers must treat the returned series as read-only.
func (u *StrategyUniverse) At(i int) StrategyPnL {
	return u.byPos[i]
}

// Get returns the named strategy without copying its returns.
// Callers must treat the returned series as read-only.
func (u *StrategyUniverse) Get(name string) (StrategyPnL, bool) {
	i, ok := u.pos[name]
	if !ok {
		return StrategyPnL{}, false
	}
	return u.byPos[i], true
}

// Family returns the family label of the named strategy.
func (u *StrategyUniverse) Family(name string) string {
	if i, ok := u.pos[name]; ok {
		return u.byPos[i].Family
	}
	return ""
}
