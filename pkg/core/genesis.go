package core

import (
	"sort"

	"github.com/n3core/node/pkg/core/block"
	"github.com/n3core/node/pkg/core/transaction"
	"github.com/n3core/node/pkg/crypto/keys"
	"github.com/n3core/node/pkg/smartcontract"
	"github.com/n3core/node/pkg/util"
	"github.com/n3core/node/pkg/vm/opcode"
)

// Genesis header constants shared by every network: the epoch timestamp
// (milliseconds) and nonce are fixed so block #0 hashes identically for
// identical protocol settings.
const (
	genesisTimestamp uint64 = 1468595301000
	genesisNonce     uint64 = 2083236893
)

// createGenesisBlock assembles block #0 from the standby validator set.
// It carries no transactions; all native-contract state is seeded by the
// genesis persist path instead.
func createGenesisBlock(validators keys.PublicKeys) (*block.Block, error) {
	nextConsensus, err := validatorsScriptHash(validators)
	if err != nil {
		return nil, err
	}
	b := &block.Block{
		Header: block.Header{
			Version:       block.VersionInitial,
			PrevHash:      util.Uint256{},
			Timestamp:     genesisTimestamp,
			Nonce:         genesisNonce,
			Index:         0,
			PrimaryIndex:  0,
			NextConsensus: nextConsensus,
			Script: transaction.Witness{
				InvocationScript:   []byte{},
				VerificationScript: []byte{byte(opcode.PUSH1)},
			},
		},
	}
	b.RebuildMerkleRoot()
	return b, nil
}

// validatorsScriptHash derives the consensus account from a validator set:
// the Hash160 of the BFT-threshold multisig over the sorted keys.
func validatorsScriptHash(validators keys.PublicKeys) (util.Uint160, error) {
	vals := make(keys.PublicKeys, len(validators))
	copy(vals, validators)
	sort.Sort(vals)
	return smartcontract.CreateMultiSigAccount(smartcontract.DefaultCommitteeM(len(vals)), vals)
}
