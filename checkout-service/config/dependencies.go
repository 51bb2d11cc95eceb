package config

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/commercium/checkout-system/checkout-service/application"
	"github.com/commercium/checkout-system/checkout-service/handlers"
	"github.com/commercium/checkout-system/checkout-service/infrastructure"
	"github.com/commercium/checkout-system/shared/auth"
	"github.com/commercium/checkout-system/shared/events"
	sharedinfra "github.com/commercium/checkout-system/shared/infrastructure"
	"github.com/commercium/checkout-system/shared/saga"
	"github.com/commercium/checkout-system/shared/telemetry"
)

// CallerIdentity is the name this service acts as when calling downstreams.
const CallerIdentity = "checkout-service"

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Saga runtime
	SagaStore    *infrastructure.PostgresSagaStore
	Capabilities *saga.CapabilityRegistry
	Orchestrator *saga.Orchestrator

	// Trust layer
	IdentityRegistry *auth.IdentityRegistry
	TokenManager     *auth.TokenManager
	ServiceClient    *auth.Client

	// Use Cases
	BeginCheckout  *application.BeginCheckout
	GetSaga        *application.GetSaga
	ListSagas      *application.ListSagas
	ListSagaEvents *application.ListSagaEvents
	ResumeSaga     *application.ResumeSaga
	RotateToken    *application.RotateServiceToken

	// HTTP Handlers
	CheckoutHandlers *handlers.CheckoutHandlers

	// Event Handlers
	CheckoutEventHandlers *handlers.CheckoutEventHandlers

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	AuditTrail      events.EventStore
	EventSubscriber *sharedinfra.SQSSubscriberAdapter

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config, logger zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize telemetry first
	telConfig := telemetry.Config{
		ServiceName:    config.ServiceName,
		ServiceVersion: "1.0.0",
		OTLPEndpoint:   config.Telemetry.OTLPEndpoint,
	}
	tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize telemetry, continuing without it")
	} else {
		deps.Telemetry = tel
		deps.TelemetryShutdown = telemetryShutdown
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	deps.DB = db

	if err := infrastructure.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize the trust layer
	identityRegistry, err := buildIdentityRegistry(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity registry: %w", err)
	}
	deps.IdentityRegistry = identityRegistry

	tokenManager, err := auth.NewTokenManager(identityRegistry, []byte(config.Auth.SigningSecret),
		auth.NewMemoryTokenCache(),
		auth.WithDefaultTTL(config.Auth.TokenTTL),
		auth.WithRefreshMargin(config.Auth.RefreshMargin),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}
	deps.TokenManager = tokenManager
	deps.ServiceClient = auth.NewClient(tokenManager, CallerIdentity)

	// Initialize AWS infrastructure and the audit trail
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	deps.AuditTrail = sharedinfra.NewPostgresEventStore(db)
	auditingPublisher := sharedinfra.NewAuditingPublisher(deps.AuditTrail, eventPublisher, logger)

	eventSubscriber, err := sharedinfra.NewSQSSubscriberAdapter(config.AWS.SQSQueueURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.EventSubscriber = eventSubscriber

	// Initialize the saga runtime
	deps.SagaStore = infrastructure.NewPostgresSagaStore(db)

	capabilities := saga.NewCapabilityRegistry()
	if err := infrastructure.RegisterCheckoutCapabilities(capabilities, deps.ServiceClient, infrastructure.DownstreamServices{
		InventoryURL:    config.Downstream.InventoryURL,
		PaymentURL:      config.Downstream.PaymentURL,
		OrderURL:        config.Downstream.OrderURL,
		NotificationURL: config.Downstream.NotificationURL,
	}); err != nil {
		return nil, fmt.Errorf("failed to register capabilities: %w", err)
	}
	deps.Capabilities = capabilities

	definition := infrastructure.NewCheckoutDefinition(infrastructure.StepTuning{
		MaxAttempts: config.Saga.MaxAttempts,
		Timeout:     config.Saga.StepTimeout,
		Backoff: saga.BackoffPolicy{
			InitialInterval: config.Saga.BackoffInitial,
			Multiplier:      config.Saga.BackoffMultiple,
			MaxInterval:     config.Saga.BackoffMax,
		},
	})

	orchestrator, err := saga.NewOrchestrator(deps.SagaStore, capabilities, auditingPublisher, logger, definition)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	deps.Orchestrator = orchestrator

	// Initialize use cases
	deps.BeginCheckout = application.NewBeginCheckout(orchestrator)
	deps.GetSaga = application.NewGetSaga(deps.SagaStore)
	deps.ListSagas = application.NewListSagas(deps.SagaStore)
	deps.ListSagaEvents = application.NewListSagaEvents(deps.AuditTrail)
	deps.ResumeSaga = application.NewResumeSaga(orchestrator)
	deps.RotateToken = application.NewRotateServiceToken(tokenManager, auditingPublisher)

	// Initialize handlers
	deps.CheckoutHandlers = handlers.NewCheckoutHandlers(
		deps.BeginCheckout, deps.GetSaga, deps.ListSagas, deps.ListSagaEvents, deps.ResumeSaga, deps.RotateToken)
	deps.CheckoutEventHandlers = handlers.NewCheckoutEventHandlers(deps.ResumeSaga, logger)

	return deps, nil
}

func buildIdentityRegistry(config *Config) (*auth.IdentityRegistry, error) {
	knownScopes, err := auth.ParseScopes(config.Auth.KnownScopes)
	if err != nil {
		return nil, err
	}

	identities := make([]*auth.ServiceIdentity, len(config.Auth.Identities))
	for i, identity := range config.Auth.Identities {
		scopes, err := auth.ParseScopes(identity.Scopes)
		if err != nil {
			return nil, fmt.Errorf("identity %s: %w", identity.Name, err)
		}
		identities[i] = &auth.ServiceIdentity{Name: identity.Name, AllowedScopes: scopes}
	}

	return auth.NewIdentityRegistry(identities, knownScopes)
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
