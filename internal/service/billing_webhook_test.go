package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"emojify-be/internal/entity"
	"emojify-be/internal/repository/contract"
	"emojify-be/internal/repository/specification"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v76"
)

// In-memory doubles for the webhook dispatch path. FindOne matches the same
// specifications the real gorm repository applies, so the three-way user
// resolution (subscription id, metadata, customer id) is exercised for real.

type stubUserRepo struct {
	users   []*entity.User
	updated map[uuid.UUID]*entity.Subscription
}

func newStubUserRepo(users ...*entity.User) *stubUserRepo {
	return &stubUserRepo{users: users, updated: map[uuid.UUID]*entity.Subscription{}}
}

func (r *stubUserRepo) matches(u *entity.User, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return u.Id == s.ID
	case specification.ByEmail:
		return u.Email == s.Email
	case specification.ByStripeSubscriptionId:
		return u.Subscription != nil && u.Subscription.StripeSubscriptionId != nil &&
			*u.Subscription.StripeSubscriptionId == s.SubscriptionId
	case specification.ByStripeCustomerId:
		return u.Subscription != nil && u.Subscription.StripeCustomerId != nil &&
			*u.Subscription.StripeCustomerId == s.CustomerId
	default:
		return false
	}
}

func (r *stubUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		all := true
		for _, spec := range specs {
			if !r.matches(u, spec) {
				all = false
				break
			}
		}
		if all {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

func (r *stubUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, nil
}

func (r *stubUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *stubUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string, bio, avatarURL *string) error {
	return nil
}

func (r *stubUserRepo) UpdateSubscription(ctx context.Context, userId uuid.UUID, sub *entity.Subscription) error {
	r.updated[userId] = sub
	return nil
}

func (r *stubUserRepo) RecordGeneration(ctx context.Context, userId uuid.UUID) (bool, error) {
	return true, nil
}

func (r *stubUserRepo) ReleaseGeneration(ctx context.Context, userId uuid.UUID) error { return nil }

func (r *stubUserRepo) ResetUsageIfDue(ctx context.Context, userId uuid.UUID, periodStart time.Time) error {
	return nil
}

func (r *stubUserRepo) BulkResetFreeUsage(ctx context.Context, periodStart time.Time) (int64, error) {
	return 0, nil
}

func (r *stubUserRepo) CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error {
	return nil
}

func (r *stubUserRepo) FindRefreshToken(ctx context.Context, tokenHash string) (*entity.UserRefreshToken, error) {
	return nil, nil
}

func (r *stubUserRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error { return nil }

func (r *stubUserRepo) SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error {
	return nil
}

type stubUnitOfWork struct {
	users *stubUserRepo
}

func (u *stubUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error                   { return nil }
func (u *stubUnitOfWork) Rollback() error                 { return nil }

func (u *stubUnitOfWork) UserRepository() contract.UserRepository                 { return u.users }
func (u *stubUnitOfWork) EmojiRepository() contract.EmojiRepository               { return nil }
func (u *stubUnitOfWork) ActivityRepository() contract.ActivityRepository         { return nil }
func (u *stubUnitOfWork) WebhookEventRepository() contract.WebhookEventRepository { return nil }

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type noopMailer struct{}

func (noopMailer) SendWelcome(toEmail, displayName string) error { return nil }
func (noopMailer) SendPremiumActivated(toEmail string) error     { return nil }

func newWebhookTestService() *billingService {
	return &billingService{
		emailService: noopMailer{},
		logger:       noopLogger{},
	}
}

// stripeEvent builds the event the way HandleWebhook receives it: parsed
// from a JSON body with the object payload under data.
func stripeEvent(t *testing.T, eventType, payload string) *stripe.Event {
	t.Helper()

	body := fmt.Sprintf(`{"id": %q, "type": %q, "data": {"object": %s}}`,
		"evt_"+uuid.NewString(), eventType, payload)

	var event stripe.Event
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		t.Fatalf("building event: %v", err)
	}
	return &event
}

func TestProcessEventCheckoutCompletedUpgrades(t *testing.T) {
	s := newWebhookTestService()
	user := &entity.User{Id: uuid.New(), Email: "buyer@example.com"}
	repo := newStubUserRepo(user)

	payload := fmt.Sprintf(`{
		"id": "cs_1",
		"payment_status": "paid",
		"metadata": {"user_id": %q, "frequency": "annual"},
		"customer": {"id": "cus_1"},
		"subscription": {"id": "sub_1"}
	}`, user.Id)

	err := s.processEvent(context.Background(), &stubUnitOfWork{users: repo}, stripeEvent(t, "checkout.session.completed", payload))
	if err != nil {
		t.Fatalf("processEvent: %v", err)
	}

	sub := repo.updated[user.Id]
	if sub == nil {
		t.Fatal("subscription not updated")
	}
	if sub.PlanType != entity.PlanPremium {
		t.Errorf("plan_type = %s, want premium", sub.PlanType)
	}
	if sub.Status != entity.SubscriptionStatusActive {
		t.Errorf("status = %s, want active", sub.Status)
	}
	if sub.BillingFrequency != entity.BillingFrequencyAnnual {
		t.Errorf("billing_frequency = %s, want annual", sub.BillingFrequency)
	}
	if sub.StripeCustomerId == nil || *sub.StripeCustomerId != "cus_1" {
		t.Errorf("stripe_customer_id = %v, want cus_1", sub.StripeCustomerId)
	}
	if sub.StripeSubscriptionId == nil || *sub.StripeSubscriptionId != "sub_1" {
		t.Errorf("stripe_subscription_id = %v, want sub_1", sub.StripeSubscriptionId)
	}
}

func TestProcessEventCheckoutUnpaidDoesNotUpgrade(t *testing.T) {
	s := newWebhookTestService()
	user := &entity.User{Id: uuid.New(), Email: "buyer@example.com"}
	repo := newStubUserRepo(user)

	// Delayed payment methods complete the session before the payment
	// settles; no upgrade until a paid status arrives.
	payload := fmt.Sprintf(`{
		"id": "cs_1",
		"payment_status": "unpaid",
		"metadata": {"user_id": %q}
	}`, user.Id)

	err := s.processEvent(context.Background(), &stubUnitOfWork{users: repo}, stripeEvent(t, "checkout.session.completed", payload))
	if err != nil {
		t.Fatalf("processEvent: %v", err)
	}
	if len(repo.updated) != 0 {
		t.Errorf("unpaid checkout mutated a subscription: %v", repo.updated)
	}
}

func TestProcessEventSubscriptionDeletedDowngrades(t *testing.T) {
	s := newWebhookTestService()
	customerId := "cus_1"
	subscriptionId := "sub_1"
	user := &entity.User{
		Id:    uuid.New(),
		Email: "premium@example.com",
		Subscription: &entity.Subscription{
			PlanType:             entity.PlanPremium,
			Status:               entity.SubscriptionStatusActive,
			StripeCustomerId:     &customerId,
			StripeSubscriptionId: &subscriptionId,
			UsageLimit:           999999,
		},
	}
	repo := newStubUserRepo(user)

	payload := `{"id": "sub_1", "status": "canceled", "customer": {"id": "cus_1"}}`

	err := s.processEvent(context.Background(), &stubUnitOfWork{users: repo}, stripeEvent(t, "customer.subscription.deleted", payload))
	if err != nil {
		t.Fatalf("processEvent: %v", err)
	}

	sub := repo.updated[user.Id]
	if sub == nil {
		t.Fatal("subscription not updated")
	}
	if sub.PlanType != entity.PlanFree {
		t.Errorf("plan_type = %s, want free", sub.PlanType)
	}
	if sub.Status != entity.SubscriptionStatusInactive {
		t.Errorf("status = %s, want inactive", sub.Status)
	}
	// The customer join key survives for a later re-upgrade; the dead
	// subscription key does not.
	if sub.StripeCustomerId == nil || *sub.StripeCustomerId != "cus_1" {
		t.Errorf("stripe_customer_id = %v, want cus_1", sub.StripeCustomerId)
	}
	if sub.StripeSubscriptionId != nil {
		t.Errorf("stripe_subscription_id = %v, want nil", sub.StripeSubscriptionId)
	}
}

func TestProcessEventSubscriptionUpdatedByCustomerId(t *testing.T) {
	s := newWebhookTestService()
	customerId := "cus_1"
	user := &entity.User{
		Id:    uuid.New(),
		Email: "premium@example.com",
		Subscription: &entity.Subscription{
			PlanType:         entity.PlanPremium,
			Status:           entity.SubscriptionStatusActive,
			StripeCustomerId: &customerId,
			UsageLimit:       999999,
		},
	}
	repo := newStubUserRepo(user)

	// No stored subscription id and no metadata: resolution falls through
	// to the customer id.
	payload := `{
		"id": "sub_new",
		"status": "past_due",
		"customer": {"id": "cus_1"},
		"cancel_at_period_end": true,
		"items": {"data": [{"price": {"id": "price_y", "recurring": {"interval": "year"}}}]}
	}`

	err := s.processEvent(context.Background(), &stubUnitOfWork{users: repo}, stripeEvent(t, "customer.subscription.updated", payload))
	if err != nil {
		t.Fatalf("processEvent: %v", err)
	}

	sub := repo.updated[user.Id]
	if sub == nil {
		t.Fatal("subscription not updated")
	}
	if sub.Status != entity.SubscriptionStatusPastDue {
		t.Errorf("status = %s, want past_due", sub.Status)
	}
	if sub.StripeSubscriptionId == nil || *sub.StripeSubscriptionId != "sub_new" {
		t.Errorf("stripe_subscription_id = %v, want sub_new", sub.StripeSubscriptionId)
	}
	if !sub.CancelAtPeriodEnd {
		t.Error("cancel_at_period_end not carried over")
	}
	if sub.BillingFrequency != entity.BillingFrequencyAnnual {
		t.Errorf("billing_frequency = %s, want annual", sub.BillingFrequency)
	}
	if sub.StripePriceId == nil || *sub.StripePriceId != "price_y" {
		t.Errorf("stripe_price_id = %v, want price_y", sub.StripePriceId)
	}
}

func TestProcessEventUnknownUserIsIgnored(t *testing.T) {
	s := newWebhookTestService()
	repo := newStubUserRepo()

	payload := `{"id": "sub_ghost", "status": "active", "customer": {"id": "cus_ghost"}}`

	err := s.processEvent(context.Background(), &stubUnitOfWork{users: repo}, stripeEvent(t, "customer.subscription.updated", payload))
	if err != nil {
		t.Fatalf("processEvent: %v", err)
	}
	if len(repo.updated) != 0 {
		t.Errorf("unexpected update: %v", repo.updated)
	}
}

func TestProcessEventUnhandledTypeIsIgnored(t *testing.T) {
	s := newWebhookTestService()
	repo := newStubUserRepo()

	err := s.processEvent(context.Background(), &stubUnitOfWork{users: repo}, stripeEvent(t, "charge.refunded", `{}`))
	if err != nil {
		t.Fatalf("processEvent: %v", err)
	}
	if len(repo.updated) != 0 {
		t.Errorf("unexpected update: %v", repo.updated)
	}
}
