package config

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/n3core/node/pkg/config/netmode"
	"github.com/n3core/node/pkg/util"
)

// ProtocolConfiguration is the set of chain-wide parameters the core needs
// to validate blocks, price execution, and size native-contract committees.
type ProtocolConfiguration struct {
	Magic netmode.Magic `yaml:"Magic"`

	// CommitteeHistory maps an activation height to the committee size
	// active from that height on.
	CommitteeHistory map[uint32]uint32 `yaml:"CommitteeHistory"`
	// ValidatorsHistory maps an activation height to the number of
	// consensus validators active from that height on.
	ValidatorsHistory map[uint32]uint32 `yaml:"ValidatorsHistory"`
	ValidatorsCount   uint32            `yaml:"ValidatorsCount"`

	StandbyCommittee []string `yaml:"StandbyCommittee"`

	// Hardforks maps a hardfork name to its activation height.
	Hardforks map[string]uint32 `yaml:"Hardforks"`

	InitialGASSupply util.Fixed8 `yaml:"InitialGASSupply"`

	MaxBlockSize                uint32        `yaml:"MaxBlockSize"`
	MaxBlockSystemFee           int64         `yaml:"MaxBlockSystemFee"`
	MaxTraceableBlocks          uint32        `yaml:"MaxTraceableBlocks"`
	MaxTransactionsPerBlock     uint16        `yaml:"MaxTransactionsPerBlock"`
	MaxValidUntilBlockIncrement uint32        `yaml:"MaxValidUntilBlockIncrement"`
	MemPoolSize                 int           `yaml:"MemPoolSize"`
	TimePerBlock                time.Duration `yaml:"TimePerBlock"`
	VerifyTransactions          bool          `yaml:"VerifyTransactions"`
}

type heightNumber struct {
	h uint32
	n uint32
}

// Validate checks the configuration for internal consistency; other
// methods assume a validated configuration.
func (p *ProtocolConfiguration) Validate() error {
	if p.TimePerBlock%time.Millisecond != 0 {
		return errors.New("TimePerBlock must be an integer number of milliseconds")
	}
	for name := range p.Hardforks {
		if !IsHardforkValid(name) {
			return fmt.Errorf("Hardforks configuration section contains unexpected hardfork: %s", name)
		}
	}
	var prev uint32
	var shouldBeDisabled bool
	for _, cfgHf := range Hardforks {
		h := p.Hardforks[cfgHf.String()]
		if h != 0 && shouldBeDisabled {
			return fmt.Errorf("missing previous hardfork configuration with %s present", cfgHf.String())
		}
		if h != 0 && h < prev {
			return fmt.Errorf("hardfork %s has inconsistent enabling height %d (lower than the previous one)", cfgHf.String(), h)
		}
		if h != 0 {
			prev = h
		} else if prev != 0 {
			shouldBeDisabled = true
		}
	}
	if (p.ValidatorsCount != 0) == (len(p.ValidatorsHistory) != 0) {
		return errors.New("configuration should have either ValidatorsCount or ValidatorsHistory, not both or neither")
	}
	if len(p.StandbyCommittee) == 0 {
		return errors.New("configuration should include StandbyCommittee")
	}
	if len(p.StandbyCommittee) < int(p.ValidatorsCount) {
		return errors.New("validators count can't exceed the size of StandbyCommittee")
	}

	arr := make([]heightNumber, 0, len(p.CommitteeHistory))
	for h, n := range p.CommitteeHistory {
		if n == 0 {
			return fmt.Errorf("invalid CommitteeHistory: bad members count (%d) for height %d", n, h)
		}
		if int(n) > len(p.StandbyCommittee) {
			return fmt.Errorf("too small StandbyCommittee for required number of committee members at %d", h)
		}
		arr = append(arr, heightNumber{h, n})
	}
	if len(arr) != 0 {
		if err := sortCheckZero(arr, "CommitteeHistory"); err != nil {
			return err
		}
		for i, hn := range arr[1:] {
			if int64(hn.h)%int64(hn.n) != 0 || int64(hn.h)%int64(arr[i].n) != 0 {
				return fmt.Errorf("invalid CommitteeHistory: bad %d height for %d and %d committee", hn.h, hn.n, arr[i].n)
			}
		}
	}

	arr = arr[:0]
	for h, n := range p.ValidatorsHistory {
		if n == 0 {
			return fmt.Errorf("invalid ValidatorsHistory: bad members count (%d) for height %d", n, h)
		}
		if int(n) > len(p.StandbyCommittee) {
			return fmt.Errorf("too small StandbyCommittee for required number of validators at %d", h)
		}
		arr = append(arr, heightNumber{h, n})
	}
	if len(arr) != 0 {
		if err := sortCheckZero(arr, "ValidatorsHistory"); err != nil {
			return err
		}
		for _, hn := range arr {
			if int64(hn.n) > int64(p.GetCommitteeSize(hn.h)) {
				return fmt.Errorf("requested number of validators is too big: %d at %d", hn.n, hn.h)
			}
			if int64(hn.h)%int64(p.GetCommitteeSize(hn.h)) != 0 {
				return fmt.Errorf("validators number change is not aligned with committee change at %d", hn.h)
			}
		}
	}
	return nil
}

func sortCheckZero(arr []heightNumber, field string) error {
	slices.SortFunc(arr, func(a, b heightNumber) int { return cmp.Compare(a.h, b.h) })
	if arr[0].h != 0 {
		return fmt.Errorf("invalid %s: no height 0 specified", field)
	}
	return nil
}

// GetCommitteeSize returns the committee size active at height.
func (p *ProtocolConfiguration) GetCommitteeSize(height uint32) int {
	if len(p.CommitteeHistory) == 0 {
		return len(p.StandbyCommittee)
	}
	return int(getBestFromMap(p.CommitteeHistory, height))
}

func getBestFromMap(dict map[uint32]uint32, height uint32) uint32 {
	var res uint32
	var bestH uint32
	for h, n := range dict {
		if h >= bestH && h <= height {
			res = n
			bestH = h
		}
	}
	return res
}

// GetNumOfCNs returns the number of validators active at height.
func (p *ProtocolConfiguration) GetNumOfCNs(height uint32) int {
	if len(p.ValidatorsHistory) == 0 {
		return int(p.ValidatorsCount)
	}
	return int(getBestFromMap(p.ValidatorsHistory, height))
}

// ShouldUpdateCommitteeAt reports whether committee/validator rotation
// happens at height.
func (p *ProtocolConfiguration) ShouldUpdateCommitteeAt(height uint32) bool {
	return height%uint32(p.GetCommitteeSize(height)) == 0
}

// IsHardforkEnabled reports whether hf is active at height. HFDefault is
// always active; a hardfork listed in p.Hardforks is active from its
// configured height on; a hardfork absent from p.Hardforks is disabled.
func (p *ProtocolConfiguration) IsHardforkEnabled(hf Hardfork, height uint32) bool {
	if hf == HFDefault {
		return true
	}
	h, ok := p.Hardforks[hf.String()]
	if !ok {
		return false
	}
	return height >= h
}

// Equals reports whether p and o hold the same configuration.
func (p *ProtocolConfiguration) Equals(o *ProtocolConfiguration) bool {
	if p.InitialGASSupply != o.InitialGASSupply ||
		p.Magic != o.Magic ||
		p.MaxBlockSize != o.MaxBlockSize ||
		p.MaxBlockSystemFee != o.MaxBlockSystemFee ||
		p.MaxTraceableBlocks != o.MaxTraceableBlocks ||
		p.MaxTransactionsPerBlock != o.MaxTransactionsPerBlock ||
		p.MaxValidUntilBlockIncrement != o.MaxValidUntilBlockIncrement ||
		p.MemPoolSize != o.MemPoolSize ||
		p.TimePerBlock != o.TimePerBlock ||
		p.ValidatorsCount != o.ValidatorsCount ||
		p.VerifyTransactions != o.VerifyTransactions ||
		!maps.Equal(p.CommitteeHistory, o.CommitteeHistory) ||
		!maps.Equal(p.Hardforks, o.Hardforks) ||
		!slices.Equal(p.StandbyCommittee, o.StandbyCommittee) ||
		!maps.Equal(p.ValidatorsHistory, o.ValidatorsHistory) {
		return false
	}
	return true
}
