package keys

import "bytes"

// PublicKeys is a list of public keys, sortable in the byte order the
// reference node uses to break voting ties and to build standby-committee
// multisig scripts deterministically.
type PublicKeys []*PublicKey

func (keys PublicKeys) Len() int      { return len(keys) }
func (keys PublicKeys) Swap(i, j int) { keys[i], keys[j] = keys[j], keys[i] }
func (keys PublicKeys) Less(i, j int) bool {
	return bytes.Compare(keys[i].Bytes(), keys[j].Bytes()) < 0
}
