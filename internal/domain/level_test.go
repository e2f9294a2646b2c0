package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Run("Aceita níveis válidos ignorando caixa e espaços", func(t *testing.T) {
		level, err := ParseLevel("  AdSet ")
		assert.NoError(t, err)
		assert.Equal(t, LevelAdset, level)
	})

	t.Run("Rejeita nível desconhecido", func(t *testing.T) {
		_, err := ParseLevel("creative")
		assert.Error(t, err)
	})
}

func TestLevel_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		want   Level
		wantOK bool
	}{
		{name: "ad cai para adset", level: LevelAd, want: LevelAdset, wantOK: true},
		{name: "adset cai para campaign", level: LevelAdset, want: LevelCampaign, wantOK: true},
		{name: "campaign não tem fallback", level: LevelCampaign, wantOK: false},
		{name: "account não participa da cadeia", level: LevelAccount, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := tt.level.Fallback()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, next)
			}
		})
	}
}

func TestPlatform_GlobalID(t *testing.T) {
	assert.Equal(t, "meta:campaign:123456", PlatformMeta.GlobalID(LevelCampaign, "123456"))
	assert.Equal(t, "meta:account:act_789", PlatformMeta.GlobalID(LevelAccount, "act_789"))
}

func TestNormalizeAccountID(t *testing.T) {
	assert.Equal(t, "act_123", NormalizeAccountID("123"))
	assert.Equal(t, "act_123", NormalizeAccountID("act_123"))
}
