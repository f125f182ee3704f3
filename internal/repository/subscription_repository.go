package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/becaslatam/becas-api/internal/models"
)

// SubscriptionRepository handles persistence of email subscriptions.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs the repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create persists a new subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.EmailSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now().UTC()
	}
	const query = `INSERT INTO email_subscriptions (id, email, institucion_slug, subscribed_at, converted)
        VALUES (:id, :email, :institucion_slug, :subscribed_at, :converted)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// FindByEmail returns the subscription for an address.
func (r *SubscriptionRepository) FindByEmail(ctx context.Context, email string) (*models.EmailSubscription, error) {
	const query = `SELECT id, email, institucion_slug, subscribed_at, converted FROM email_subscriptions WHERE email = $1`
	var sub models.EmailSubscription
	if err := r.db.GetContext(ctx, &sub, query, email); err != nil {
		return nil, err
	}
	return &sub, nil
}

// MarkConverted flips a subscription once its address completes an enrollment.
// Missing subscriptions are not an error.
func (r *SubscriptionRepository) MarkConverted(ctx context.Context, email string) error {
	const query = `UPDATE email_subscriptions SET converted = TRUE WHERE email = $1`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("mark subscription converted: %w", err)
	}
	return nil
}
