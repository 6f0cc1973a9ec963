package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"emojify-be/internal/config"
	"emojify-be/internal/dto"
	"emojify-be/internal/entity"
	"emojify-be/internal/pkg/logger"
	"emojify-be/internal/pkg/mailer"
	"emojify-be/internal/pkg/serverutils"
	"emojify-be/internal/repository/specification"
	"emojify-be/internal/repository/unitofwork"
	"emojify-be/pkg/events"
	pktNats "emojify-be/pkg/nats"
	"emojify-be/pkg/quota"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	stripe "github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

type IBillingService interface {
	GetPlans() []dto.PlanResponse
	CreateCheckoutSession(ctx context.Context, userId *uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	CreateBillingPortal(ctx context.Context, userId uuid.UUID) (*dto.BillingPortalResponse, error)
	SelectFreePlan(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type billingService struct {
	uowFactory        unitofwork.RepositoryFactory
	cfg               config.StripeConfig
	clientURL         string
	emailService      mailer.IEmailService
	eventPublisher    *pktNats.Publisher
	activityPublisher IActivityPublisher
	logger            logger.ILogger

	// Fast duplicate filter in front of the processed-events table. The
	// table is the durable record; this only skips the DB round trip on
	// immediate redeliveries.
	seenEvents *gocache.Cache
}

func NewBillingService(
	uowFactory unitofwork.RepositoryFactory,
	cfg config.StripeConfig,
	clientURL string,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	activityPublisher IActivityPublisher,
	log logger.ILogger,
) IBillingService {
	stripe.Key = cfg.SecretKey

	return &billingService{
		uowFactory:        uowFactory,
		cfg:               cfg,
		clientURL:         clientURL,
		emailService:      emailService,
		eventPublisher:    eventPublisher,
		activityPublisher: activityPublisher,
		logger:            log,
		seenEvents:        gocache.New(24*time.Hour, time.Hour),
	}
}

func (s *billingService) GetPlans() []dto.PlanResponse {
	return []dto.PlanResponse{
		{
			PlanType:        string(entity.PlanFree),
			Name:            "Free",
			MonthlyPriceUsd: 0,
			AnnualPriceUsd:  0,
			GenerationLimit: quota.FreeUsageLimit,
			Features: []string{
				fmt.Sprintf("%d emoji generations per month", quota.FreeUsageLimit),
				"Save emojis to your library",
			},
		},
		{
			PlanType:        string(entity.PlanPremium),
			Name:            "Premium",
			MonthlyPriceUsd: 9.99,
			AnnualPriceUsd:  99.99,
			GenerationLimit: quota.UnlimitedUsageLimit,
			Unlimited:       true,
			Features: []string{
				"Unlimited emoji generations",
				"Save emojis to your library",
				"Priority generation queue",
			},
		},
	}
}

func (s *billingService) priceFor(frequency string) string {
	if frequency == string(entity.BillingFrequencyAnnual) {
		return s.cfg.PremiumAnnualPrice
	}
	return s.cfg.PremiumMonthlyPrice
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, userId *uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if s.cfg.SecretKey == "" {
		return nil, serverutils.ConfigurationError("billing credentials are not set")
	}
	priceId := s.priceFor(req.Frequency)
	if priceId == "" {
		return nil, serverutils.ConfigurationError("billing price ids are not set")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	var user *entity.User
	var err error

	if userId != nil {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: *userId})
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, serverutils.UserNotFound()
		}
	} else {
		// Guest checkout. The purchaser gets an account keyed by email; it
		// stays passwordless until they register with the same address.
		if req.Email == "" {
			return nil, serverutils.ValidationError(map[string]interface{}{"email": "required when not signed in"})
		}
		user, err = s.findOrCreateByEmail(ctx, uow, req.Email)
		if err != nil {
			return nil, err
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceId),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.clientURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.clientURL + "/billing/cancelled"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id": user.Id.String(),
			},
		},
	}

	eff := quota.Effective(user.Subscription, time.Now())
	if eff.StripeCustomerId != nil && *eff.StripeCustomerId != "" {
		params.Customer = stripe.String(*eff.StripeCustomerId)
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}

	params.AddMetadata("user_id", user.Id.String())
	params.AddMetadata("frequency", req.Frequency)

	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error("BillingService", "Failed to create checkout session", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &dto.CheckoutResponse{
		SessionId:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

func (s *billingService) CreateBillingPortal(ctx context.Context, userId uuid.UUID) (*dto.BillingPortalResponse, error) {
	if s.cfg.SecretKey == "" {
		return nil, serverutils.ConfigurationError("billing credentials are not set")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.UserNotFound()
	}

	eff := quota.Effective(user.Subscription, time.Now())
	if eff.StripeCustomerId == nil || *eff.StripeCustomerId == "" {
		return nil, errors.New("no billing profile for this account")
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*eff.StripeCustomerId),
		ReturnURL: stripe.String(s.clientURL + "/settings/billing"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create billing portal session: %w", err)
	}

	return &dto.BillingPortalResponse{PortalURL: sess.URL}, nil
}

// SelectFreePlan is the explicit plan choice, distinct from the monthly
// reset: re-selecting FREE always starts the counter fresh.
func (s *billingService) SelectFreePlan(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.UserNotFound()
	}

	now := time.Now()
	newSub := quota.FreePlan(now)

	// Keep the billing join key so a later upgrade reuses the customer.
	eff := quota.Effective(user.Subscription, now)
	newSub.StripeCustomerId = eff.StripeCustomerId

	if err := uow.UserRepository().UpdateSubscription(ctx, user.Id, &newSub); err != nil {
		return nil, err
	}

	user.Subscription = &newSub
	resp := presentUser(user, now)
	return &resp, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		return serverutils.ConfigurationError("webhook signing secret is not set")
	}

	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		s.logger.Warn("BillingService", "Webhook signature verification failed", map[string]interface{}{"error": err.Error()})
		return serverutils.WebhookSignatureInvalid()
	}

	if _, seen := s.seenEvents.Get(event.ID); seen {
		s.logger.Info("BillingService", "Skipping cached duplicate webhook event", map[string]interface{}{"event_id": event.ID})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// The idempotency record commits in the same transaction as the state
	// change, so a failure rolls both back and the redelivery retries cleanly.
	fresh, err := uow.WebhookEventRepository().MarkProcessed(ctx, event.ID, string(event.Type))
	if err != nil {
		return err
	}
	if !fresh {
		if err := uow.Commit(); err != nil {
			return err
		}
		s.seenEvents.Set(event.ID, true, gocache.DefaultExpiration)
		s.logger.Info("BillingService", "Skipping already processed webhook event", map[string]interface{}{"event_id": event.ID})
		return nil
	}

	if err := s.processEvent(ctx, uow, &event); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.seenEvents.Set(event.ID, true, gocache.DefaultExpiration)
	return nil
}

func (s *billingService) processEvent(ctx context.Context, uow unitofwork.UnitOfWork, event *stripe.Event) error {
	now := time.Now()

	switch string(event.Type) {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to parse checkout session payload: %w", err)
		}
		return s.handleCheckoutCompleted(ctx, uow, &sess, now)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription payload: %w", err)
		}
		return s.handleSubscriptionUpdated(ctx, uow, &sub, now)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription payload: %w", err)
		}
		return s.handleSubscriptionDeleted(ctx, uow, &sub, now)

	case "invoice.payment_succeeded", "invoice.payment_failed":
		s.logger.Info("BillingService", "Invoice event received", map[string]interface{}{"type": string(event.Type), "event_id": event.ID})
		return nil

	default:
		s.logger.Debug("BillingService", "Ignoring unhandled webhook event type", map[string]interface{}{"type": string(event.Type)})
		return nil
	}
}

func (s *billingService) handleCheckoutCompleted(ctx context.Context, uow unitofwork.UnitOfWork, sess *stripe.CheckoutSession, now time.Time) error {
	// Delayed payment methods fire checkout.session.completed before the
	// payment settles; the upgrade waits for the paid status (trials come
	// through as no_payment_required).
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		s.logger.Info("BillingService", "Checkout completed without confirmed payment", map[string]interface{}{
			"session_id":     sess.ID,
			"payment_status": string(sess.PaymentStatus),
		})
		return nil
	}

	user, err := s.resolveCheckoutUser(ctx, uow, sess)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Warn("BillingService", "Checkout completed for unknown user", map[string]interface{}{"session_id": sess.ID})
		return nil
	}

	freq := entity.BillingFrequencyMonthly
	if sess.Metadata["frequency"] == string(entity.BillingFrequencyAnnual) {
		freq = entity.BillingFrequencyAnnual
	}

	link := quota.BillingLinkage{SessionId: sess.ID}
	if sess.Customer != nil {
		link.CustomerId = sess.Customer.ID
	}
	if sess.Subscription != nil {
		link.SubscriptionId = sess.Subscription.ID
	}

	prev := quota.Effective(user.Subscription, now)
	newSub := quota.PremiumPlan(prev, freq, link, now)

	if err := uow.UserRepository().UpdateSubscription(ctx, user.Id, &newSub); err != nil {
		return err
	}

	s.announcePlanChange(ctx, user, string(entity.PlanPremium), string(newSub.Status))

	email := user.Email
	go func() {
		if mailErr := s.emailService.SendPremiumActivated(email); mailErr != nil {
			s.logger.Warn("BillingService", "Failed to send premium activation email", map[string]interface{}{"error": mailErr.Error()})
		}
	}()

	return nil
}

func (s *billingService) handleSubscriptionUpdated(ctx context.Context, uow unitofwork.UnitOfWork, sub *stripe.Subscription, now time.Time) error {
	user, err := s.resolveSubscriptionUser(ctx, uow, sub)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Warn("BillingService", "Subscription event for unknown user", map[string]interface{}{"subscription_id": sub.ID})
		return nil
	}

	if sub.Status == stripe.SubscriptionStatusCanceled {
		return s.applyDowngrade(ctx, uow, user, now)
	}

	updated := quota.Effective(user.Subscription, now)
	updated.PlanType = entity.PlanPremium
	updated.Status = mapSubscriptionStatus(sub.Status)
	updated.UsageLimit = quota.UnlimitedUsageLimit
	updated.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
	updated.UpdatedAt = now

	updated.StripeSubscriptionId = &sub.ID
	if sub.Customer != nil {
		updated.StripeCustomerId = &sub.Customer.ID
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		updated.StripePriceId = &price.ID
		if price.Recurring != nil && price.Recurring.Interval == stripe.PriceRecurringIntervalYear {
			updated.BillingFrequency = entity.BillingFrequencyAnnual
		} else {
			updated.BillingFrequency = entity.BillingFrequencyMonthly
		}
	}

	if sub.CurrentPeriodStart > 0 {
		start := time.Unix(sub.CurrentPeriodStart, 0)
		updated.CurrentPeriodStart = &start
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0)
		updated.CurrentPeriodEnd = &end
	}

	return uow.UserRepository().UpdateSubscription(ctx, user.Id, &updated)
}

func (s *billingService) handleSubscriptionDeleted(ctx context.Context, uow unitofwork.UnitOfWork, sub *stripe.Subscription, now time.Time) error {
	user, err := s.resolveSubscriptionUser(ctx, uow, sub)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Warn("BillingService", "Subscription deletion for unknown user", map[string]interface{}{"subscription_id": sub.ID})
		return nil
	}
	return s.applyDowngrade(ctx, uow, user, now)
}

func (s *billingService) applyDowngrade(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, now time.Time) error {
	prev := quota.Effective(user.Subscription, now)
	newSub := quota.Downgraded(prev, now)

	if err := uow.UserRepository().UpdateSubscription(ctx, user.Id, &newSub); err != nil {
		return err
	}

	s.announcePlanChange(ctx, user, string(entity.PlanFree), string(newSub.Status))
	return nil
}

// resolveCheckoutUser prefers the user id planted in session metadata and
// falls back to the purchaser email, creating the account when the purchase
// came from a guest.
func (s *billingService) resolveCheckoutUser(ctx context.Context, uow unitofwork.UnitOfWork, sess *stripe.CheckoutSession) (*entity.User, error) {
	if idStr, ok := sess.Metadata["user_id"]; ok {
		if id, err := uuid.Parse(idStr); err == nil {
			user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
			if err != nil {
				return nil, err
			}
			if user != nil {
				return user, nil
			}
		}
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	if email == "" {
		return nil, nil
	}

	return s.findOrCreateByEmail(ctx, uow, email)
}

func (s *billingService) resolveSubscriptionUser(ctx context.Context, uow unitofwork.UnitOfWork, sub *stripe.Subscription) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByStripeSubscriptionId{SubscriptionId: sub.ID})
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	if idStr, ok := sub.Metadata["user_id"]; ok {
		if id, perr := uuid.Parse(idStr); perr == nil {
			user, err = uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
			if err != nil {
				return nil, err
			}
			if user != nil {
				return user, nil
			}
		}
	}

	if sub.Customer != nil && sub.Customer.ID != "" {
		return uow.UserRepository().FindOne(ctx, specification.ByStripeCustomerId{CustomerId: sub.Customer.ID})
	}
	return nil, nil
}

func (s *billingService) findOrCreateByEmail(ctx context.Context, uow unitofwork.UnitOfWork, email string) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	displayName := email
	if at := strings.Index(email, "@"); at > 0 {
		displayName = email[:at]
	}

	user = &entity.User{
		Id:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *billingService) announcePlanChange(ctx context.Context, user *entity.User, planType, status string) {
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewPlanChanged(user.Id.String(), planType, status)); err != nil {
			s.logger.Warn("BillingService", "Failed to publish plan change event", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.activityPublisher != nil {
		s.activityPublisher.PublishActivity(user.Id, entity.ActivityPlanChanged, map[string]interface{}{
			"plan_type": planType,
			"status":    status,
		})
	}
}

func mapSubscriptionStatus(status stripe.SubscriptionStatus) entity.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return entity.SubscriptionStatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return entity.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusCanceled:
		return entity.SubscriptionStatusCancelled
	default:
		return entity.SubscriptionStatusInactive
	}
}
