package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"medcontrol-backend/internal/repository"
)

// EntityStats summarises the procedures attached to a doctor, patient or procedure type.
type EntityStats struct {
	TotalProcedures int64      `json:"totalProcedures"`
	LastActivity    *time.Time `json:"lastActivity"`
}

func procedureStats(ctx context.Context, procedures *repository.ProcedureRepository, owner repository.Owner, id uint) (EntityStats, error) {
	total, err := procedures.CountByOwner(ctx, owner, id)
	if err != nil {
		return EntityStats{}, errors.Wrap(err, "count procedures")
	}
	last, err := procedures.LatestDateByOwner(ctx, owner, id)
	if err != nil {
		return EntityStats{}, errors.Wrap(err, "latest procedure")
	}
	return EntityStats{TotalProcedures: total, LastActivity: last}, nil
}

// optionalString trims s and maps blank values to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
