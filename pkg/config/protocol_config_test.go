package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "02b3622bf4017bdfe317c58aed5f4c753f206b7db896046fa7d774bbc4bf7f8dc2"

func validConfig() ProtocolConfiguration {
	return ProtocolConfiguration{
		Magic:            860833102,
		StandbyCommittee: []string{testKey},
		ValidatorsCount:  1,
		TimePerBlock:     15 * time.Second,
	}
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsFractionalBlockTime(t *testing.T) {
	cfg := validConfig()
	cfg.TimePerBlock = 15*time.Second + 500*time.Microsecond
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyCommittee(t *testing.T) {
	cfg := validConfig()
	cfg.StandbyCommittee = nil
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBothValidatorConfigs(t *testing.T) {
	cfg := validConfig()
	cfg.ValidatorsHistory = map[uint32]uint32{0: 1}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownHardfork(t *testing.T) {
	cfg := validConfig()
	cfg.Hardforks = map[string]uint32{"NotAHardfork": 1}
	require.Error(t, cfg.Validate())
}

func TestValidateHardforkOrder(t *testing.T) {
	cfg := validConfig()
	// Basilisk enabled without Aspidochelone.
	cfg.Hardforks = map[string]uint32{HFBasilisk.String(): 10}
	err := cfg.Validate()
	// Aspidochelone absent (only configured heights are ordered, so this is fine)...
	require.NoError(t, err)
	// ...but a later hardfork below an earlier one's height is not.
	cfg.Hardforks = map[string]uint32{
		HFAspidochelone.String(): 100,
		HFBasilisk.String():      10,
	}
	require.Error(t, cfg.Validate())
}

func TestGetCommitteeSize(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 1, cfg.GetCommitteeSize(0))

	cfg.CommitteeHistory = map[uint32]uint32{0: 1, 100: 4}
	assert.Equal(t, 1, cfg.GetCommitteeSize(99))
	assert.Equal(t, 4, cfg.GetCommitteeSize(100))
	assert.Equal(t, 4, cfg.GetCommitteeSize(500))
}

func TestIsHardforkEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Hardforks = map[string]uint32{HFAspidochelone.String(): 25}
	assert.False(t, cfg.IsHardforkEnabled(HFAspidochelone, 24))
	assert.True(t, cfg.IsHardforkEnabled(HFAspidochelone, 25))
	assert.False(t, cfg.IsHardforkEnabled(HFBasilisk, 1000))
	assert.True(t, cfg.IsHardforkEnabled(HFDefault, 0))
}

func TestHardforkByName(t *testing.T) {
	hf, ok := HardforkByName("Aspidochelone")
	require.True(t, ok)
	assert.Equal(t, HFAspidochelone, hf)
	_, ok = HardforkByName("Unknown")
	assert.False(t, ok)
}

func TestLoadYAML(t *testing.T) {
	data := []byte(`
ProtocolConfiguration:
  Magic: 860833102
  ValidatorsCount: 1
  TimePerBlock: 15s
  StandbyCommittee:
    - ` + testKey + `
`)
	cfg, err := Load(data)
	require.NoError(t, err)
	assert.EqualValues(t, 860833102, cfg.ProtocolConfiguration.Magic)
	assert.Equal(t, 15*time.Second, cfg.ProtocolConfiguration.TimePerBlock)
	require.Len(t, cfg.ProtocolConfiguration.StandbyCommittee, 1)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load([]byte(`ProtocolConfiguration: { Magic: 1 }`))
	require.Error(t, err)
}
