package customer

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// UpsertByID writes customer under its explicit id. created is false when a row was updated.
	UpsertByID(ctx context.Context, customer *Customer) (created bool, err error)

	// UpsertByPhone matches on the unique phone number and fills customer.ID.
	UpsertByPhone(ctx context.Context, customer *Customer) (created bool, err error)

	// SyncIDSequence moves the id sequence past the largest stored id.
	SyncIDSequence(ctx context.Context) error
}
