package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	MaxPlayers               int
	RoundSeconds             int
	PointsPerWord            int
	PointsPerWordSolo        int
	EarlyStopPenalty         int
	EndGameResponseSeconds   int
	VoteResolveSeconds       int
	CoSubmitWaitSeconds      int
	AutoSubmitGraceMillis    int
	OpponentPollMillis       int
	BarrierPollMillis        int
	ReadyBarrierSeconds      int
	RoomMaxAgeMinutes        int
	CleanupIntervalMinutes   int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	PublicBaseURL            string
}

func Default() Config {
	return Config{
		MaxPlayers:               2,
		RoundSeconds:             120,
		PointsPerWord:            2,
		PointsPerWordSolo:        10,
		EarlyStopPenalty:         3,
		EndGameResponseSeconds:   30,
		VoteResolveSeconds:       60,
		CoSubmitWaitSeconds:      60,
		AutoSubmitGraceMillis:    1000,
		OpponentPollMillis:       500,
		BarrierPollMillis:        1000,
		ReadyBarrierSeconds:      60,
		RoomMaxAgeMinutes:        30,
		CleanupIntervalMinutes:   5,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		PublicBaseURL:            "http://localhost:8080",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 2 {
			cfg.MaxPlayers = value
		}
	}
	if raw := os.Getenv("ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoundSeconds = value
		}
	}
	if raw := os.Getenv("POINTS_PER_WORD"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PointsPerWord = value
		}
	}
	if raw := os.Getenv("POINTS_PER_WORD_SOLO"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PointsPerWordSolo = value
		}
	}
	if raw := os.Getenv("EARLY_STOP_PENALTY"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.EarlyStopPenalty = value
		}
	}
	if raw := os.Getenv("ENDGAME_RESPONSE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.EndGameResponseSeconds = value
		}
	}
	if raw := os.Getenv("VOTE_RESOLVE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.VoteResolveSeconds = value
		}
	}
	if raw := os.Getenv("CO_SUBMIT_WAIT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CoSubmitWaitSeconds = value
		}
	}
	if raw := os.Getenv("AUTO_SUBMIT_GRACE_MILLIS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.AutoSubmitGraceMillis = value
		}
	}
	if raw := os.Getenv("OPPONENT_POLL_MILLIS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.OpponentPollMillis = value
		}
	}
	if raw := os.Getenv("BARRIER_POLL_MILLIS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BarrierPollMillis = value
		}
	}
	if raw := os.Getenv("READY_BARRIER_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ReadyBarrierSeconds = value
		}
	}
	if raw := os.Getenv("ROOM_MAX_AGE_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoomMaxAgeMinutes = value
		}
	}
	if raw := os.Getenv("CLEANUP_INTERVAL_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CleanupIntervalMinutes = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("PUBLIC_BASE_URL"); raw != "" {
		cfg.PublicBaseURL = raw
	}
	return cfg
}
