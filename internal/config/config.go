package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// WinRewardBase is the gold paid for any finished win.
	WinRewardBase int64 `json:"win_reward_base"`
	// WinRewardMoveBonus is paid per move saved under WinRewardParMoves.
	WinRewardMoveBonus int64 `json:"win_reward_move_bonus"`
	WinRewardParMoves  int   `json:"win_reward_par_moves"`

	WelcomeBonusGold int64 `json:"welcome_bonus_gold"`
	DailyBonusGold   int64 `json:"daily_bonus_gold"`

	// HintAdvisorLevel selects the advisor strategy: "greedy" or "scored".
	HintAdvisorLevel string `json:"hint_advisor_level"`
	// HintCooldownSeconds throttles hint requests per match.
	HintCooldownSeconds int `json:"hint_cooldown_seconds"`

	// MaxMovesPerGame ends runaway matches and simulations.
	MaxMovesPerGame int `json:"max_moves_per_game"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetWinReward computes the gold for a win that took the given number
// of moves. Finishing under par earns a per-move bonus.
func GetWinReward(moves int) int64 {
	base := int64(500) // Safe default
	perMove := int64(5)
	par := 120

	if cfg != nil {
		if cfg.WinRewardBase > 0 {
			base = cfg.WinRewardBase
		}
		if cfg.WinRewardMoveBonus > 0 {
			perMove = cfg.WinRewardMoveBonus
		}
		if cfg.WinRewardParMoves > 0 {
			par = cfg.WinRewardParMoves
		}
	}

	reward := base
	if moves > 0 && moves < par {
		reward += perMove * int64(par-moves)
	}
	return reward
}

// GetWelcomeBonus returns the first-login gold grant.
func GetWelcomeBonus() int64 {
	if cfg == nil || cfg.WelcomeBonusGold <= 0 {
		return 5000 // Safe default
	}
	return cfg.WelcomeBonusGold
}

// GetDailyBonus returns the gold for finishing the daily challenge.
func GetDailyBonus() int64 {
	if cfg == nil || cfg.DailyBonusGold <= 0 {
		return 1000 // Safe default
	}
	return cfg.DailyBonusGold
}

// GetHintAdvisorLevel returns the configured advisor strategy name.
func GetHintAdvisorLevel() string {
	if cfg == nil || cfg.HintAdvisorLevel == "" {
		return "scored" // Safe default
	}
	return cfg.HintAdvisorLevel
}

// GetHintCooldownSeconds returns the per-match hint throttle.
func GetHintCooldownSeconds() int {
	if cfg == nil || cfg.HintCooldownSeconds <= 0 {
		return 10 // Safe default
	}
	return cfg.HintCooldownSeconds
}

// GetMaxMovesPerGame returns the runaway-game ceiling.
func GetMaxMovesPerGame() int {
	if cfg == nil || cfg.MaxMovesPerGame <= 0 {
		return 600 // Safe default
	}
	return cfg.MaxMovesPerGame
}
