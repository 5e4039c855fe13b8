package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Profile names a hosted bot and adjusts its tuning.
type Profile struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	// Cutoff and OfferTimeout override the host tuning when positive.
	Cutoff       int `json:"cutoff"`
	OfferTimeout int `json:"offer_timeout"`
}

var (
	profiles    []Profile
	profilesErr error
	loadOnce    sync.Once
)

// LoadProfiles loads the bot profiles from path once per process.
func LoadProfiles(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			profilesErr = fmt.Errorf("failed to read bot profiles: %w", err)
			return
		}
		var ps []Profile
		if err := json.Unmarshal(data, &ps); err != nil {
			profilesErr = fmt.Errorf("failed to unmarshal bot profiles: %w", err)
			return
		}
		profiles = ps
	})
	return profilesErr
}

// ProfileFor returns a profile by index (mod pool size).
func ProfileFor(index int) Profile {
	if len(profiles) == 0 {
		return Profile{
			Name:        fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	return profiles[index%len(profiles)]
}

// Apply overlays the profile on t.
func (p Profile) Apply(t Tuning) Tuning {
	if p.Cutoff > 0 {
		t.Cutoff = p.Cutoff
	}
	if p.OfferTimeout > 0 {
		t.OfferTimeout = p.OfferTimeout
	}
	return t
}
