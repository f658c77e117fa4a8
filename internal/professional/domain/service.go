package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Professional, error)
	// GenerateRentalBillings materializes the rent installments due on dueDate
	// and issues the gateway charges. Safe to re-run for the same date: at most
	// one billing per (professional, due date), at most one charge per billing.
	GenerateRentalBillings(ctx context.Context, dueDate time.Time) error
}
